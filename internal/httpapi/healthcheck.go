package httpapi

import (
	"database/sql"
	"log/slog"
	"net/http"

	"stationwatch/internal/utils"
)

// RelayStatus reports whether the message relay connection is up.
type RelayStatus interface {
	IsConnected() bool
}

type healthchecker interface {
	handleHealthz(w http.ResponseWriter, r *http.Request)
}

type healthcheckerImpl struct {
	db    *sql.DB
	relay RelayStatus
}

func NewHealthchecker(db *sql.DB, relay RelayStatus) healthchecker {
	return &healthcheckerImpl{db: db, relay: relay}
}

// handleHealthz fails only on the database; a relay outage is reported
// in the body.
func (h *healthcheckerImpl) handleHealthz(w http.ResponseWriter, r *http.Request) {
	var ok int
	if err := h.db.QueryRowContext(r.Context(), `SELECT 1`).Scan(&ok); err != nil {
		slog.Error("failed to check database connectivity", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to check database connectivity")
		return
	}

	body := map[string]string{"status": "ok"}
	if h.relay != nil {
		body["mqtt"] = "disconnected"
		if h.relay.IsConnected() {
			body["mqtt"] = "connected"
		}
	}
	utils.WriteJSON(w, http.StatusOK, body)
}

func registerHealthcheck(mux *http.ServeMux, db *sql.DB, relay RelayStatus) {
	healthchecker := NewHealthchecker(db, relay)
	mux.HandleFunc("GET /healthz", healthchecker.handleHealthz)
}
