package service

import (
	"context"
	"fmt"
	"time"

	"stationwatch/internal/modules/telemetry/outlier"
	"stationwatch/internal/mqtt"
)

const ingestTimeout = 5 * time.Second

// registerMQTTHandler sets up the telemetry module's MQTT message handler
func registerMQTTHandler(subscriber mqtt.MQTTSubscriber, s *Service) {
	subscriber.SetMessageHandler(func(telemetry mqtt.Telemetry) error {
		ctx, cancel := context.WithTimeout(context.Background(), ingestTimeout)
		defer cancel()
		return s.Ingest(ctx, telemetry)
	})
}

// Ingest stores every reading of a validated message, creating the station
// on first sight.
func (s *Service) Ingest(ctx context.Context, telemetry mqtt.Telemetry) error {
	s.logger.Debug("processing telemetry message",
		"station_id", telemetry.StationID,
		"timestamp", telemetry.Timestamp,
	)

	if err := s.repository.EnsureStation(ctx, telemetry.StationID); err != nil {
		s.logger.Error("failed to ensure station",
			"station_id", telemetry.StationID,
			"error", err,
		)
		return fmt.Errorf("ensure station %s: %w", telemetry.StationID, err)
	}

	for _, v := range telemetry.Values() {
		sensor := outlier.SensorIdentity{
			StationKey:  telemetry.StationID,
			SensorType:  v.SensorType,
			SensorModel: v.SensorModel,
		}
		if err := s.repository.InsertReading(ctx, sensor, telemetry.Timestamp, v.Value); err != nil {
			s.logger.Error("failed to insert reading",
				"station_id", telemetry.StationID,
				"sensor", sensor.Key(),
				"error", err,
			)
			return fmt.Errorf("insert reading %s: %w", sensor.Key(), err)
		}
		s.metrics.ReadingIngested(v.SensorType)
	}

	s.logger.Debug("successfully stored telemetry",
		"station_id", telemetry.StationID,
	)
	return nil
}
