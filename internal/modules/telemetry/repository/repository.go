package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"stationwatch/internal/modules/telemetry/outlier"
	"stationwatch/internal/modules/telemetry/types"
)

//go:embed sql/get-stations.sql
var getStationsSQL string

//go:embed sql/get-station.sql
var getStationSQL string

//go:embed sql/ensure-station.sql
var ensureStationSQL string

//go:embed sql/get-sensors.sql
var getSensorsSQL string

//go:embed sql/get-series.sql
var getSeriesSQL string

//go:embed sql/insert-reading.sql
var insertReadingSQL string

//go:embed sql/get-station-labels.sql
var getStationLabelsSQL string

// ErrNotFound is returned when a station or comparison does not exist.
var ErrNotFound = errors.New("not found")

type TelemetryRepository interface {
	GetStations(ctx context.Context) ([]types.Station, error)
	GetStation(ctx context.Context, key string) (types.Station, error)
	EnsureStation(ctx context.Context, key string) error
	GetSensors(ctx context.Context, stationKey string) ([]types.Sensor, error)
	GetSeries(ctx context.Context, sensor outlier.SensorIdentity, q types.SeriesQuery) ([]outlier.Reading, error)
	InsertReading(ctx context.Context, sensor outlier.SensorIdentity, ts time.Time, value float64) error
	GetStationLabels(ctx context.Context) (map[string]string, error)
	ComparisonRepository
}

type repositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) TelemetryRepository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) GetStations(ctx context.Context) ([]types.Station, error) {
	rows, err := r.db.QueryContext(ctx, getStationsSQL)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close stations rows", "error", err)
		}
	}()
	out := []types.Station{}
	for rows.Next() {
		var s types.Station
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *repositoryImpl) GetStation(ctx context.Context, key string) (types.Station, error) {
	var s types.Station
	err := r.db.QueryRowContext(ctx, getStationSQL, key).Scan(&s.ID, &s.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return types.Station{}, fmt.Errorf("station %q: %w", key, ErrNotFound)
	}
	if err != nil {
		return types.Station{}, fmt.Errorf("get station %q: %w", key, err)
	}
	return s, nil
}

// EnsureStation creates the station on first sight, named after its key.
func (r *repositoryImpl) EnsureStation(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, ensureStationSQL, key, key); err != nil {
		return fmt.Errorf("ensure station %q: %w", key, err)
	}
	return nil
}

func (r *repositoryImpl) GetSensors(ctx context.Context, stationKey string) ([]types.Sensor, error) {
	rows, err := r.db.QueryContext(ctx, getSensorsSQL, stationKey)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close sensors rows", "error", err)
		}
	}()
	out := []types.Sensor{}
	for rows.Next() {
		var s types.Sensor
		var last int64
		if err := rows.Scan(&s.Type, &s.Model, &s.Count, &last); err != nil {
			return nil, err
		}
		s.LastSeen = time.Unix(last, 0).UTC()
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetSeries returns the newest q.Limit readings of the sensor inside the
// window, oldest first.
func (r *repositoryImpl) GetSeries(ctx context.Context, sensor outlier.SensorIdentity, q types.SeriesQuery) ([]outlier.Reading, error) {
	rows, err := r.db.QueryContext(ctx, getSeriesSQL,
		sql.Named("station", sensor.StationKey),
		sql.Named("type", sensor.SensorType),
		sql.Named("model", sensor.SensorModel),
		sql.Named("from", zeroAsNullUnix(q.From)),
		sql.Named("to", zeroAsNullUnix(q.To)),
		sql.Named("limit", q.Limit),
	)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close series rows", "error", err)
		}
	}()
	out := []outlier.Reading{}
	for rows.Next() {
		var rd outlier.Reading
		if err := rows.Scan(&rd.Timestamp, &rd.Value, &rd.SensorType, &rd.SensorModel); err != nil {
			return nil, err
		}
		out = append(out, rd)
	}
	return out, rows.Err()
}

// InsertReading stores one value, replacing any value already stored for the
// same sensor and second. The station must exist.
func (r *repositoryImpl) InsertReading(ctx context.Context, sensor outlier.SensorIdentity, ts time.Time, value float64) error {
	res, err := r.db.ExecContext(ctx, insertReadingSQL,
		sql.Named("station", sensor.StationKey),
		sql.Named("type", sensor.SensorType),
		sql.Named("model", sensor.SensorModel),
		sql.Named("ts", ts.Unix()),
		sql.Named("value", value),
	)
	if err != nil {
		return fmt.Errorf("insert reading: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert reading: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("station %q: %w", sensor.StationKey, ErrNotFound)
	}
	return nil
}

// GetStationLabels maps every stored sensor's composite key to its station
// name.
func (r *repositoryImpl) GetStationLabels(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx, getStationLabelsSQL)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close station labels rows", "error", err)
		}
	}()
	out := make(map[string]string)
	for rows.Next() {
		var id outlier.SensorIdentity
		var name string
		if err := rows.Scan(&id.StationKey, &name, &id.SensorType, &id.SensorModel); err != nil {
			return nil, err
		}
		out[id.Key()] = name
	}
	return out, rows.Err()
}

func zeroAsNullUnix(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.Unix()
}
