package httpapi

import (
	"database/sql"
	"net/http"

	"stationwatch/internal/metrics"
)

// NewMux serves /healthz and /metrics. relay may be nil.
func NewMux(db *sql.DB, relay RelayStatus, m *metrics.Metrics) *http.ServeMux {
	mux := http.NewServeMux()
	registerHealthcheck(mux, db, relay)
	mux.Handle("GET /metrics", m.Handler())
	return mux
}
