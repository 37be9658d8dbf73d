package controller

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"stationwatch/internal/modules/telemetry/outlier"
	"stationwatch/internal/modules/telemetry/types"
	"stationwatch/internal/mqtt"
)

const (
	defaultSeriesLimit = 1000
	maxSeriesLimit     = 5000
)

func parseSeriesQuery(r *http.Request) (types.SeriesQuery, error) {
	q := r.URL.Query()
	var out types.SeriesQuery
	var err error

	if s := q.Get("from"); s != "" {
		out.From, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return types.SeriesQuery{}, errors.New("invalid 'from' (expected RFC3339)")
		}
	}
	if s := q.Get("to"); s != "" {
		out.To, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return types.SeriesQuery{}, errors.New("invalid 'to' (expected RFC3339)")
		}
	}
	if !out.From.IsZero() && !out.To.IsZero() && out.From.After(out.To) {
		return types.SeriesQuery{}, errors.New("'from' must be <= 'to'")
	}

	out.Limit = defaultSeriesLimit
	if s := q.Get("limit"); s != "" {
		n, convErr := strconv.Atoi(s)
		if convErr != nil {
			return types.SeriesQuery{}, errors.New("invalid 'limit' (expected integer)")
		}
		if n <= 0 {
			return types.SeriesQuery{}, errors.New("'limit' must be > 0")
		}
		if n > maxSeriesLimit {
			return types.SeriesQuery{}, fmt.Errorf("'limit' must be <= %d", maxSeriesLimit)
		}
		out.Limit = n
	}

	return out, nil
}

// parseSensor reads sensor_type (required) and sensor_model for a station.
// A missing model selects the one legacy messages are stored under.
func parseSensor(r *http.Request, stationKey string) (outlier.SensorIdentity, error) {
	q := r.URL.Query()
	sensorType := strings.TrimSpace(q.Get("sensor_type"))
	if sensorType == "" {
		return outlier.SensorIdentity{}, errors.New("missing 'sensor_type'")
	}
	model := strings.TrimSpace(q.Get("sensor_model"))
	if model == "" {
		model = mqtt.DefaultSensorModel
	}
	return outlier.SensorIdentity{StationKey: stationKey, SensorType: sensorType, SensorModel: model}, nil
}
