package outlier

// UnknownStationLabel is used for sensors missing from the label table.
const UnknownStationLabel = "Unknown"

// SensorIdentity names one physical reading source.
type SensorIdentity struct {
	StationKey  string `json:"stationKey"`
	SensorType  string `json:"sensorType"`
	SensorModel string `json:"sensorModel"`
}

// Key returns the composite "station-type-model" key used by label tables.
func (s SensorIdentity) Key() string {
	return s.StationKey + "-" + s.SensorType + "-" + s.SensorModel
}

// Entry pairs a sensor with its chronologically ordered readings.
type Entry struct {
	Sensor   SensorIdentity
	Readings []Reading
}

// FilteredEntry is an Entry after outlier removal.
type FilteredEntry struct {
	Sensor SensorIdentity
	Valid  []Reading
}

// FanOutResult holds per-entry valid readings, in entry order, and every
// outlier found across all entries.
type FanOutResult struct {
	Entries  []FilteredEntry
	Outliers []Record
}

// FilterAll runs Filter on each entry independently. Outliers are
// concatenated in entry order and, within an entry, in reading order.
// Labels are looked up by SensorIdentity.Key; a missing key yields
// UnknownStationLabel.
func FilterAll(entries []Entry, labels map[string]string) FanOutResult {
	out := FanOutResult{
		Entries:  make([]FilteredEntry, 0, len(entries)),
		Outliers: []Record{},
	}
	for _, e := range entries {
		label, ok := labels[e.Sensor.Key()]
		if !ok {
			label = UnknownStationLabel
		}
		res := Filter(e.Readings, label)
		out.Entries = append(out.Entries, FilteredEntry{Sensor: e.Sensor, Valid: res.Valid})
		out.Outliers = append(out.Outliers, res.Outliers...)
	}
	return out
}
