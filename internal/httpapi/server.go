package httpapi

import (
	"log/slog"
	"net/http"
	"time"

	"stationwatch/internal/config"
	"stationwatch/internal/metrics"
)

func NewServer(cfg config.Config, mux *http.ServeMux, logger *slog.Logger, m *metrics.Metrics) *http.Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           requestLogger(mux, logger, m),
		ReadHeaderTimeout: 10 * time.Second,
	}
}
