package telemetry

import (
	"database/sql"
	"log/slog"
	"net/http"

	"stationwatch/internal/metrics"
	"stationwatch/internal/modules/telemetry/controller"
	"stationwatch/internal/modules/telemetry/repository"
	"stationwatch/internal/modules/telemetry/service"
	"stationwatch/internal/mqtt"
)

func RegisterFeature(mux *http.ServeMux, db *sql.DB, subscriber mqtt.MQTTSubscriber, m *metrics.Metrics, logger *slog.Logger) {
	telemetryRepository := repository.NewRepository(db)
	telemetryService := service.NewService(telemetryRepository, m, logger)
	telemetryService.Register(subscriber)
	telemetryController := controller.NewTelemetryController(telemetryService, logger)
	telemetryController.RegisterRoutes(mux)
}
