package controller

import (
	"log/slog"
	"net/http"

	"stationwatch/internal/modules/telemetry/service"
)

type TelemetryController interface {
	RegisterRoutes(mux *http.ServeMux)
}

type telemetryControllerImpl struct {
	service *service.Service
	logger  *slog.Logger
}

func NewTelemetryController(svc *service.Service, logger *slog.Logger) TelemetryController {
	if logger == nil {
		logger = slog.Default()
	}
	return &telemetryControllerImpl{service: svc, logger: logger}
}

func (c *telemetryControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/stations", c.handleStations)
	mux.HandleFunc("GET /api/v1/stations/{id}/sensors", c.handleSensors)
	mux.HandleFunc("GET /api/v1/stations/{id}/series", c.handleSeries)

	mux.HandleFunc("GET /api/v1/comparisons", c.handleListComparisons)
	mux.HandleFunc("POST /api/v1/comparisons", c.handleCreateComparison)
	mux.HandleFunc("GET /api/v1/comparisons/{id}", c.handleGetComparison)
	mux.HandleFunc("PUT /api/v1/comparisons/{id}", c.handleUpdateComparison)
	mux.HandleFunc("DELETE /api/v1/comparisons/{id}", c.handleDeleteComparison)
	mux.HandleFunc("GET /api/v1/comparisons/{id}/series", c.handleComparisonSeries)

	mux.HandleFunc("POST /api/v1/compare", c.handleCompare)
}
