package controller

import (
	"math"

	"stationwatch/internal/modules/telemetry/outlier"
	"stationwatch/internal/modules/telemetry/types"
)

type comparisonRequest struct {
	Name    string                   `json:"name"`
	Sensors []outlier.SensorIdentity `json:"sensors"`
}

type compareRequest struct {
	Sensors []outlier.SensorIdentity `json:"sensors"`
}

// outlierResponse carries PercentChange as null when it is not finite,
// which happens after a zero reference value.
type outlierResponse struct {
	Timestamp     int64    `json:"timestamp"`
	Value         float64  `json:"value"`
	PreviousValue float64  `json:"previousValue"`
	PercentChange *float64 `json:"percentChange"`
	SensorType    string   `json:"sensorType"`
	SensorModel   string   `json:"sensorModel"`
	StationLabel  string   `json:"stationLabel"`
}

type seriesResponse struct {
	Sensor   outlier.SensorIdentity `json:"sensor"`
	Readings []outlier.Reading      `json:"readings"`
	Outliers []outlierResponse      `json:"outliers"`
}

type fanOutResponse struct {
	Comparison *types.Comparison `json:"comparison,omitempty"`
	Series     []seriesEntry     `json:"series"`
	Outliers   []outlierResponse `json:"outliers"`
}

type seriesEntry struct {
	Sensor   outlier.SensorIdentity `json:"sensor"`
	Readings []outlier.Reading      `json:"readings"`
}

func toOutlierResponses(records []outlier.Record) []outlierResponse {
	out := make([]outlierResponse, 0, len(records))
	for _, r := range records {
		resp := outlierResponse{
			Timestamp:     r.Timestamp,
			Value:         r.Value,
			PreviousValue: r.PreviousValue,
			SensorType:    r.SensorType,
			SensorModel:   r.SensorModel,
			StationLabel:  r.StationLabel,
		}
		if !math.IsInf(r.PercentChange, 0) && !math.IsNaN(r.PercentChange) {
			pct := r.PercentChange
			resp.PercentChange = &pct
		}
		out = append(out, resp)
	}
	return out
}

func toFanOutResponse(c *types.Comparison, res outlier.FanOutResult) fanOutResponse {
	series := make([]seriesEntry, 0, len(res.Entries))
	for _, e := range res.Entries {
		readings := e.Valid
		if readings == nil {
			readings = []outlier.Reading{}
		}
		series = append(series, seriesEntry{Sensor: e.Sensor, Readings: readings})
	}
	return fanOutResponse{
		Comparison: c,
		Series:     series,
		Outliers:   toOutlierResponses(res.Outliers),
	}
}
