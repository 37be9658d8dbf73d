package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"stationwatch/internal/metrics"
	"stationwatch/internal/modules/telemetry/outlier"
	"stationwatch/internal/modules/telemetry/repository"
	"stationwatch/internal/modules/telemetry/types"
	"stationwatch/internal/mqtt"
)

// ErrInvalidComparison is returned for comparisons without a name or sensors.
var ErrInvalidComparison = errors.New("invalid comparison")

type Service struct {
	repository repository.TelemetryRepository
	metrics    *metrics.Metrics
	logger     *slog.Logger

	now   func() time.Time
	newID func() string
}

func NewService(repo repository.TelemetryRepository, m *metrics.Metrics, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repository: repo,
		metrics:    m,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
		newID:      uuid.NewString,
	}
}

// Register attaches the ingest handler to the subscriber. It must run before
// the subscriber connects.
func (s *Service) Register(subscriber mqtt.MQTTSubscriber) {
	registerMQTTHandler(subscriber, s)
}

func (s *Service) Stations(ctx context.Context) ([]types.Station, error) {
	return s.repository.GetStations(ctx)
}

// Sensors lists the sensors of a station, or repository.ErrNotFound.
func (s *Service) Sensors(ctx context.Context, stationKey string) ([]types.Sensor, error) {
	if _, err := s.repository.GetStation(ctx, stationKey); err != nil {
		return nil, err
	}
	return s.repository.GetSensors(ctx, stationKey)
}

// SeriesResult is one filtered sensor sequence.
type SeriesResult struct {
	Sensor   outlier.SensorIdentity
	Readings []outlier.Reading
	Outliers []outlier.Record
}

// Series loads one sequence and removes its outliers. It returns
// repository.ErrNotFound when the station does not exist.
func (s *Service) Series(ctx context.Context, sensor outlier.SensorIdentity, q types.SeriesQuery) (SeriesResult, error) {
	if _, err := s.repository.GetStation(ctx, sensor.StationKey); err != nil {
		return SeriesResult{}, err
	}
	readings, err := s.repository.GetSeries(ctx, sensor, q)
	if err != nil {
		return SeriesResult{}, fmt.Errorf("load series %s: %w", sensor.Key(), err)
	}
	labels, err := s.repository.GetStationLabels(ctx)
	if err != nil {
		return SeriesResult{}, fmt.Errorf("load station labels: %w", err)
	}

	label, ok := labels[sensor.Key()]
	if !ok {
		label = outlier.UnknownStationLabel
	}
	res := outlier.Filter(readings, label)
	s.record(res.Outliers, 1)

	return SeriesResult{Sensor: sensor, Readings: res.Valid, Outliers: res.Outliers}, nil
}

// Compare filters every sensor of a saved comparison.
func (s *Service) Compare(ctx context.Context, id string, q types.SeriesQuery) (types.Comparison, outlier.FanOutResult, error) {
	c, err := s.repository.GetComparison(ctx, id)
	if err != nil {
		return types.Comparison{}, outlier.FanOutResult{}, err
	}
	res, err := s.CompareAdHoc(ctx, c.Sensors, q)
	if err != nil {
		return types.Comparison{}, outlier.FanOutResult{}, err
	}
	return c, res, nil
}

// CompareAdHoc filters the given sensors without saving them. Sensors of
// unknown stations yield empty sequences.
func (s *Service) CompareAdHoc(ctx context.Context, sensors []outlier.SensorIdentity, q types.SeriesQuery) (outlier.FanOutResult, error) {
	entries := make([]outlier.Entry, 0, len(sensors))
	for _, sensor := range sensors {
		readings, err := s.repository.GetSeries(ctx, sensor, q)
		if err != nil {
			return outlier.FanOutResult{}, fmt.Errorf("load series %s: %w", sensor.Key(), err)
		}
		entries = append(entries, outlier.Entry{Sensor: sensor, Readings: readings})
	}

	labels, err := s.repository.GetStationLabels(ctx)
	if err != nil {
		return outlier.FanOutResult{}, fmt.Errorf("load station labels: %w", err)
	}

	res := outlier.FilterAll(entries, labels)
	s.record(res.Outliers, len(entries))
	return res, nil
}

func (s *Service) record(outliers []outlier.Record, sequences int) {
	for i := 0; i < sequences; i++ {
		s.metrics.SeriesFiltered()
	}
	for _, o := range outliers {
		s.metrics.OutlierRemoved(o.SensorType)
		s.logger.Debug("outlier removed",
			"station", o.StationLabel,
			"sensor_type", o.SensorType,
			"sensor_model", o.SensorModel,
			"timestamp", o.Timestamp,
			"value", o.Value,
			"previous_value", o.PreviousValue,
			"percent_change", o.PercentChange,
		)
	}
}

func (s *Service) ListComparisons(ctx context.Context) ([]types.Comparison, error) {
	return s.repository.ListComparisons(ctx)
}

func (s *Service) GetComparison(ctx context.Context, id string) (types.Comparison, error) {
	return s.repository.GetComparison(ctx, id)
}

func (s *Service) CreateComparison(ctx context.Context, name string, sensors []outlier.SensorIdentity) (types.Comparison, error) {
	name, sensors, err := normalizeComparison(name, sensors)
	if err != nil {
		return types.Comparison{}, err
	}
	now := s.now()
	c := types.Comparison{
		ID:        s.newID(),
		Name:      name,
		Sensors:   sensors,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repository.CreateComparison(ctx, c); err != nil {
		return types.Comparison{}, err
	}
	s.logger.Info("comparison created", "id", c.ID, "name", c.Name, "sensors", len(c.Sensors))
	return c, nil
}

func (s *Service) UpdateComparison(ctx context.Context, id, name string, sensors []outlier.SensorIdentity) (types.Comparison, error) {
	name, sensors, err := normalizeComparison(name, sensors)
	if err != nil {
		return types.Comparison{}, err
	}
	c, err := s.repository.GetComparison(ctx, id)
	if err != nil {
		return types.Comparison{}, err
	}
	c.Name = name
	c.Sensors = sensors
	c.UpdatedAt = s.now()
	if err := s.repository.UpdateComparison(ctx, c); err != nil {
		return types.Comparison{}, err
	}
	return c, nil
}

func (s *Service) DeleteComparison(ctx context.Context, id string) error {
	if err := s.repository.DeleteComparison(ctx, id); err != nil {
		return err
	}
	s.logger.Info("comparison deleted", "id", id)
	return nil
}

// ValidateSensors rejects sensors with a blank station, type or model.
func ValidateSensors(sensors []outlier.SensorIdentity) ([]outlier.SensorIdentity, error) {
	if len(sensors) == 0 {
		return nil, fmt.Errorf("%w: at least one sensor is required", ErrInvalidComparison)
	}
	out := make([]outlier.SensorIdentity, len(sensors))
	for i, sensor := range sensors {
		sensor.StationKey = strings.TrimSpace(sensor.StationKey)
		sensor.SensorType = strings.TrimSpace(sensor.SensorType)
		sensor.SensorModel = strings.TrimSpace(sensor.SensorModel)
		if sensor.StationKey == "" || sensor.SensorType == "" || sensor.SensorModel == "" {
			return nil, fmt.Errorf("%w: sensor %d needs stationKey, sensorType and sensorModel", ErrInvalidComparison, i)
		}
		out[i] = sensor
	}
	return out, nil
}

func normalizeComparison(name string, sensors []outlier.SensorIdentity) (string, []outlier.SensorIdentity, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil, fmt.Errorf("%w: name is required", ErrInvalidComparison)
	}
	sensors, err := ValidateSensors(sensors)
	if err != nil {
		return "", nil, err
	}
	return name, sensors, nil
}
