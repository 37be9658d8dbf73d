package mqtt

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

// DefaultSensorModel is assigned to readings sent in the flat legacy fields.
const DefaultSensorModel = "default"

// Telemetry is one message published by a station on the relay.
type Telemetry struct {
	StationID string        `json:"station_id"`
	Timestamp time.Time     `json:"timestamp"`
	Readings  []SensorValue `json:"readings,omitempty"`

	// Flat fields of older firmware.
	Temperature *float64 `json:"temperature_c,omitempty"`
	Humidity    *float64 `json:"humidity_pct,omitempty"`
	Pressure    *float64 `json:"pressure_hpa,omitempty"`
}

// SensorValue is a single measurement inside a Telemetry message.
type SensorValue struct {
	SensorType  string  `json:"sensor_type"`
	SensorModel string  `json:"sensor_model"`
	Value       float64 `json:"value"`
}

// Values returns the explicit readings followed by the legacy fields, with
// blank models replaced by DefaultSensorModel.
func (t Telemetry) Values() []SensorValue {
	out := make([]SensorValue, 0, len(t.Readings)+3)
	for _, r := range t.Readings {
		r.SensorType = strings.TrimSpace(r.SensorType)
		r.SensorModel = strings.TrimSpace(r.SensorModel)
		if r.SensorModel == "" {
			r.SensorModel = DefaultSensorModel
		}
		out = append(out, r)
	}
	legacy := []struct {
		kind string
		v    *float64
	}{
		{"temperature", t.Temperature},
		{"humidity", t.Humidity},
		{"pressure", t.Pressure},
	}
	for _, l := range legacy {
		if l.v != nil {
			out = append(out, SensorValue{SensorType: l.kind, SensorModel: DefaultSensorModel, Value: *l.v})
		}
	}
	return out
}

func (t Telemetry) Validate() error {
	if strings.TrimSpace(t.StationID) == "" {
		return errors.New("station_id is required")
	}
	if t.Timestamp.IsZero() {
		return errors.New("timestamp is required")
	}
	values := t.Values()
	if len(values) == 0 {
		return errors.New("at least one sensor reading is required")
	}
	for i, v := range values {
		if v.SensorType == "" {
			return fmt.Errorf("reading %d: sensor_type is required", i)
		}
		if math.IsNaN(v.Value) || math.IsInf(v.Value, 0) {
			return fmt.Errorf("reading %d (%s): value must be finite", i, v.SensorType)
		}
	}
	return nil
}
