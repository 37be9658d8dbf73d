package types

import (
	"time"

	"stationwatch/internal/modules/telemetry/outlier"
)

type Station struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Sensor summarises the readings stored for one type/model pair of a station.
type Sensor struct {
	Type     string    `json:"sensorType"`
	Model    string    `json:"sensorModel"`
	Count    int       `json:"count"`
	LastSeen time.Time `json:"lastSeen"`
}

// Comparison is a saved set of sensors charted side by side.
type Comparison struct {
	ID        string                   `json:"id"`
	Name      string                   `json:"name"`
	Sensors   []outlier.SensorIdentity `json:"sensors"`
	CreatedAt time.Time                `json:"createdAt"`
	UpdatedAt time.Time                `json:"updatedAt"`
}

// SeriesQuery bounds a series lookup. Zero From/To leave that side open.
type SeriesQuery struct {
	From  time.Time
	To    time.Time
	Limit int
}
