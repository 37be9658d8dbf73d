// Package outlier splits time-ordered sensor readings into plausible values
// and spikes. A reading is a spike when it moves more than ThresholdPct
// percent away from the last accepted reading of the same sequence.
package outlier

import "math"

// ThresholdPct is the largest accepted change, in percent, between a reading
// and the reference value. The comparison is strict: exactly 300 % passes.
const ThresholdPct = 300.0

// Reading is one timestamped measurement. Timestamp is in unix seconds.
type Reading struct {
	Timestamp   int64   `json:"timestamp"`
	Value       float64 `json:"value"`
	SensorType  string  `json:"sensorType"`
	SensorModel string  `json:"sensorModel"`
}

// Record describes a rejected reading. PreviousValue is the reference the
// reading was measured against, which is the last accepted value and not
// necessarily the raw previous element.
type Record struct {
	Timestamp     int64
	Value         float64
	PreviousValue float64
	PercentChange float64
	SensorType    string
	SensorModel   string
	StationLabel  string
}

// Result is the outcome of filtering one sequence.
// len(Valid)+len(Outliers) always equals the input length.
type Result struct {
	Valid    []Reading
	Outliers []Record
}

// Filter walks readings once, in order. The first reading is always kept and
// becomes the reference; every later reading is compared against the
// reference and either kept (moving the reference) or reported as an outlier
// (leaving the reference untouched).
//
// The caller must pass readings sorted by timestamp; Filter does not sort or
// check order. The arithmetic is plain float64: a zero reference followed by
// a non-zero value gives +Inf and is rejected, while 0 followed by 0 gives NaN
// and is kept because NaN > ThresholdPct is false.
func Filter(readings []Reading, stationLabel string) Result {
	if len(readings) == 0 {
		return Result{Valid: []Reading{}, Outliers: []Record{}}
	}

	valid := make([]Reading, 0, len(readings))
	outliers := []Record{}

	valid = append(valid, readings[0])
	reference := readings[0].Value

	for _, r := range readings[1:] {
		pct := PercentChange(reference, r.Value)
		if pct > ThresholdPct {
			outliers = append(outliers, Record{
				Timestamp:     r.Timestamp,
				Value:         r.Value,
				PreviousValue: reference,
				PercentChange: pct,
				SensorType:    r.SensorType,
				SensorModel:   r.SensorModel,
				StationLabel:  stationLabel,
			})
			continue
		}
		valid = append(valid, r)
		reference = r.Value
	}

	return Result{Valid: valid, Outliers: outliers}
}

// PercentChange returns |value-reference| / reference * 100 without guarding
// the division.
func PercentChange(reference, value float64) float64 {
	return math.Abs(value-reference) / reference * 100
}
