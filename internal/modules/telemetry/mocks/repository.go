package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"stationwatch/internal/modules/telemetry/outlier"
	"stationwatch/internal/modules/telemetry/types"
)

type TelemetryRepository struct {
	mock.Mock
}

func (r *TelemetryRepository) GetStations(ctx context.Context) ([]types.Station, error) {
	args := r.Called(ctx)
	stations, _ := args.Get(0).([]types.Station)
	return stations, args.Error(1)
}

func (r *TelemetryRepository) GetStation(ctx context.Context, key string) (types.Station, error) {
	args := r.Called(ctx, key)
	return args.Get(0).(types.Station), args.Error(1)
}

func (r *TelemetryRepository) EnsureStation(ctx context.Context, key string) error {
	args := r.Called(ctx, key)
	return args.Error(0)
}

func (r *TelemetryRepository) GetSensors(ctx context.Context, stationKey string) ([]types.Sensor, error) {
	args := r.Called(ctx, stationKey)
	sensors, _ := args.Get(0).([]types.Sensor)
	return sensors, args.Error(1)
}

func (r *TelemetryRepository) GetSeries(ctx context.Context, sensor outlier.SensorIdentity, q types.SeriesQuery) ([]outlier.Reading, error) {
	args := r.Called(ctx, sensor, q)
	readings, _ := args.Get(0).([]outlier.Reading)
	return readings, args.Error(1)
}

func (r *TelemetryRepository) InsertReading(ctx context.Context, sensor outlier.SensorIdentity, ts time.Time, value float64) error {
	args := r.Called(ctx, sensor, ts, value)
	return args.Error(0)
}

func (r *TelemetryRepository) GetStationLabels(ctx context.Context) (map[string]string, error) {
	args := r.Called(ctx)
	labels, _ := args.Get(0).(map[string]string)
	return labels, args.Error(1)
}

func (r *TelemetryRepository) ListComparisons(ctx context.Context) ([]types.Comparison, error) {
	args := r.Called(ctx)
	list, _ := args.Get(0).([]types.Comparison)
	return list, args.Error(1)
}

func (r *TelemetryRepository) GetComparison(ctx context.Context, id string) (types.Comparison, error) {
	args := r.Called(ctx, id)
	return args.Get(0).(types.Comparison), args.Error(1)
}

func (r *TelemetryRepository) CreateComparison(ctx context.Context, c types.Comparison) error {
	args := r.Called(ctx, c)
	return args.Error(0)
}

func (r *TelemetryRepository) UpdateComparison(ctx context.Context, c types.Comparison) error {
	args := r.Called(ctx, c)
	return args.Error(0)
}

func (r *TelemetryRepository) DeleteComparison(ctx context.Context, id string) error {
	args := r.Called(ctx, id)
	return args.Error(0)
}
