package service

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"stationwatch/internal/metrics"
	"stationwatch/internal/modules/telemetry/mocks"
	"stationwatch/internal/modules/telemetry/outlier"
	"stationwatch/internal/modules/telemetry/repository"
	"stationwatch/internal/modules/telemetry/types"
	"stationwatch/internal/mqtt"
)

var (
	alphaTemp = outlier.SensorIdentity{StationKey: "alpha", SensorType: "temperature", SensorModel: "BME280"}
	betaTemp  = outlier.SensorIdentity{StationKey: "beta", SensorType: "temperature", SensorModel: "DS18B20"}
	fixedNow  = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
)

func newTestService(repo *mocks.TelemetryRepository) *Service {
	s := NewService(repo, metrics.New(), nil)
	s.now = func() time.Time { return fixedNow }
	s.newID = func() string { return "cmp-1" }
	return s
}

func series(sensor outlier.SensorIdentity, vals ...float64) []outlier.Reading {
	out := make([]outlier.Reading, len(vals))
	for i, v := range vals {
		out[i] = outlier.Reading{
			Timestamp:   int64(i+1) * 1000,
			Value:       v,
			SensorType:  sensor.SensorType,
			SensorModel: sensor.SensorModel,
		}
	}
	return out
}

func TestSeries(t *testing.T) {
	ctx := context.Background()
	q := types.SeriesQuery{Limit: 100}
	repo := &mocks.TelemetryRepository{}
	repo.On("GetStation", ctx, "alpha").Return(types.Station{ID: "alpha", Name: "Alpha Hill"}, nil)
	repo.On("GetSeries", ctx, alphaTemp, q).Return(series(alphaTemp, 10, 11, 50, 12), nil)
	repo.On("GetStationLabels", ctx).Return(map[string]string{alphaTemp.Key(): "Alpha Hill"}, nil)

	res, err := newTestService(repo).Series(ctx, alphaTemp, q)

	assert.NoError(t, err)
	assert.Equal(t, alphaTemp, res.Sensor)
	assert.Len(t, res.Readings, 3)
	if assert.Len(t, res.Outliers, 1) {
		assert.Equal(t, 50.0, res.Outliers[0].Value)
		assert.Equal(t, "Alpha Hill", res.Outliers[0].StationLabel)
	}
	repo.AssertExpectations(t)
}

func TestSeries_UnknownStation(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.TelemetryRepository{}
	repo.On("GetStation", ctx, "alpha").Return(types.Station{}, repository.ErrNotFound)

	_, err := newTestService(repo).Series(ctx, alphaTemp, types.SeriesQuery{Limit: 10})

	assert.ErrorIs(t, err, repository.ErrNotFound)
	repo.AssertNotCalled(t, "GetSeries", mock.Anything, mock.Anything, mock.Anything)
}

func TestCompareAdHoc(t *testing.T) {
	ctx := context.Background()
	q := types.SeriesQuery{Limit: 100}
	repo := &mocks.TelemetryRepository{}
	repo.On("GetSeries", ctx, alphaTemp, q).Return(series(alphaTemp, 10, 11, 50, 12), nil)
	repo.On("GetSeries", ctx, betaTemp, q).Return(series(betaTemp, 1, 100, 2), nil)
	repo.On("GetStationLabels", ctx).Return(map[string]string{alphaTemp.Key(): "Alpha Hill"}, nil)

	s := newTestService(repo)
	res, err := s.CompareAdHoc(ctx, []outlier.SensorIdentity{alphaTemp, betaTemp}, q)

	assert.NoError(t, err)
	if assert.Len(t, res.Entries, 2) {
		assert.Equal(t, alphaTemp, res.Entries[0].Sensor)
		assert.Len(t, res.Entries[0].Valid, 3)
		assert.Equal(t, betaTemp, res.Entries[1].Sensor)
		assert.Len(t, res.Entries[1].Valid, 2)
	}
	if assert.Len(t, res.Outliers, 2) {
		assert.Equal(t, "Alpha Hill", res.Outliers[0].StationLabel)
		assert.Equal(t, outlier.UnknownStationLabel, res.Outliers[1].StationLabel)
	}
	repo.AssertExpectations(t)
}

func TestCompareAdHoc_RepositoryError(t *testing.T) {
	ctx := context.Background()
	q := types.SeriesQuery{Limit: 10}
	repo := &mocks.TelemetryRepository{}
	repo.On("GetSeries", ctx, alphaTemp, q).Return(nil, errors.New("disk on fire"))

	_, err := newTestService(repo).CompareAdHoc(ctx, []outlier.SensorIdentity{alphaTemp}, q)

	assert.ErrorContains(t, err, "disk on fire")
}

func TestCompare(t *testing.T) {
	ctx := context.Background()
	q := types.SeriesQuery{Limit: 100}
	saved := types.Comparison{ID: "cmp-1", Name: "Valley", Sensors: []outlier.SensorIdentity{alphaTemp}}
	repo := &mocks.TelemetryRepository{}
	repo.On("GetComparison", ctx, "cmp-1").Return(saved, nil)
	repo.On("GetSeries", ctx, alphaTemp, q).Return(series(alphaTemp, 0, 5), nil)
	repo.On("GetStationLabels", ctx).Return(map[string]string{}, nil)

	c, res, err := newTestService(repo).Compare(ctx, "cmp-1", q)

	assert.NoError(t, err)
	assert.Equal(t, saved, c)
	if assert.Len(t, res.Outliers, 1) {
		assert.True(t, math.IsInf(res.Outliers[0].PercentChange, 1))
	}
}

func TestCompare_Missing(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.TelemetryRepository{}
	repo.On("GetComparison", ctx, "ghost").Return(types.Comparison{}, repository.ErrNotFound)

	_, _, err := newTestService(repo).Compare(ctx, "ghost", types.SeriesQuery{Limit: 10})

	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCreateComparison(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.TelemetryRepository{}
	want := types.Comparison{
		ID:        "cmp-1",
		Name:      "Valley",
		Sensors:   []outlier.SensorIdentity{alphaTemp},
		CreatedAt: fixedNow,
		UpdatedAt: fixedNow,
	}
	repo.On("CreateComparison", ctx, want).Return(nil)

	got, err := newTestService(repo).CreateComparison(ctx, "  Valley ", []outlier.SensorIdentity{
		{StationKey: " alpha", SensorType: "temperature ", SensorModel: "BME280"},
	})

	assert.NoError(t, err)
	assert.Equal(t, want, got)
	repo.AssertExpectations(t)
}

func TestCreateComparison_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		cname   string
		sensors []outlier.SensorIdentity
	}{
		{name: "blank name", cname: " ", sensors: []outlier.SensorIdentity{alphaTemp}},
		{name: "no sensors", cname: "x"},
		{name: "blank model", cname: "x", sensors: []outlier.SensorIdentity{{StationKey: "a", SensorType: "t"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mocks.TelemetryRepository{}
			_, err := newTestService(repo).CreateComparison(context.Background(), tt.cname, tt.sensors)
			assert.ErrorIs(t, err, ErrInvalidComparison)
			repo.AssertNotCalled(t, "CreateComparison", mock.Anything, mock.Anything)
		})
	}
}

func TestUpdateComparison(t *testing.T) {
	ctx := context.Background()
	created := fixedNow.Add(-time.Hour)
	repo := &mocks.TelemetryRepository{}
	repo.On("GetComparison", ctx, "cmp-1").Return(types.Comparison{
		ID: "cmp-1", Name: "Old", Sensors: []outlier.SensorIdentity{alphaTemp}, CreatedAt: created, UpdatedAt: created,
	}, nil)
	repo.On("UpdateComparison", ctx, mock.MatchedBy(func(c types.Comparison) bool {
		return c.Name == "New" && len(c.Sensors) == 2 && c.CreatedAt.Equal(created) && c.UpdatedAt.Equal(fixedNow)
	})).Return(nil)

	got, err := newTestService(repo).UpdateComparison(ctx, "cmp-1", "New", []outlier.SensorIdentity{alphaTemp, betaTemp})

	assert.NoError(t, err)
	assert.Equal(t, "New", got.Name)
	repo.AssertExpectations(t)
}

func TestIngest(t *testing.T) {
	ctx := context.Background()
	ts := time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC)
	humidity := 55.0
	tel := mqtt.Telemetry{
		StationID: "alpha",
		Timestamp: ts,
		Readings:  []mqtt.SensorValue{{SensorType: "temperature", SensorModel: "BME280", Value: 21}},
		Humidity:  &humidity,
	}

	repo := &mocks.TelemetryRepository{}
	repo.On("EnsureStation", ctx, "alpha").Return(nil)
	repo.On("InsertReading", ctx, alphaTemp, ts, 21.0).Return(nil)
	repo.On("InsertReading", ctx, outlier.SensorIdentity{StationKey: "alpha", SensorType: "humidity", SensorModel: "default"}, ts, 55.0).Return(nil)

	err := newTestService(repo).Ingest(ctx, tel)

	assert.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestIngest_EnsureStationFails(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.TelemetryRepository{}
	repo.On("EnsureStation", ctx, "alpha").Return(errors.New("locked"))

	err := newTestService(repo).Ingest(ctx, mqtt.Telemetry{StationID: "alpha", Timestamp: fixedNow})

	assert.ErrorContains(t, err, "locked")
	repo.AssertNotCalled(t, "InsertReading", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

type fakeSubscriber struct {
	handler mqtt.TelemetryHandler
}

func (f *fakeSubscriber) SetMessageHandler(h mqtt.TelemetryHandler) { f.handler = h }

func TestRegister(t *testing.T) {
	repo := &mocks.TelemetryRepository{}
	repo.On("EnsureStation", mock.Anything, "alpha").Return(nil)
	repo.On("InsertReading", mock.Anything, mock.Anything, fixedNow, 1.5).Return(nil)

	sub := &fakeSubscriber{}
	newTestService(repo).Register(sub)

	if assert.NotNil(t, sub.handler) {
		v := 1.5
		assert.NoError(t, sub.handler(mqtt.Telemetry{StationID: "alpha", Timestamp: fixedNow, Temperature: &v}))
	}
	repo.AssertExpectations(t)
}
