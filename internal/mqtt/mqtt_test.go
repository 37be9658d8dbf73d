package mqtt

import (
	"errors"
	"testing"


	"stationwatch/internal/config"
	"stationwatch/internal/metrics"
)

func newTestSubscriber(t *testing.T) (*Subscriber, *metrics.Metrics) {
	t.Helper()
	m := metrics.New()
	cfg := config.Config{
		MQTTBroker:   "localhost",
		MQTTPort:     1883,
		MQTTTopic:    "stations/+/telemetry",
		MQTTClientID: "test",
	}
	return NewSubscriber(cfg, nil, m), m
}

func rejected(t *testing.T, m *metrics.Metrics, reason string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, f := range families {
		if f.GetName() != "stationwatch_messages_rejected_total" {
			continue
		}
		for _, metric := range f.GetMetric() {
			for _, l := range metric.GetLabel() {
				if l.GetName() == "reason" && l.GetValue() == reason {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestSubscriber_handleMessage(t *testing.T) {
	t.Run("valid message reaches handler", func(t *testing.T) {
		s, m := newTestSubscriber(t)
		var got []Telemetry
		s.SetMessageHandler(func(tel Telemetry) error {
			got = append(got, tel)
			return nil
		})

		s.handleMessage("stations/alpha/telemetry", []byte(`{"station_id":"alpha","timestamp":"2025-02-01T12:00:00Z","readings":[{"sensor_type":"temperature","sensor_model":"BME280","value":21}]}`))

		if len(got) != 1 || got[0].StationID != "alpha" {
			t.Fatalf("handler calls = %+v; want one for alpha", got)
		}
		if n := rejected(t, m, "invalid") + rejected(t, m, "malformed"); n != 0 {
			t.Errorf("rejections = %v; want 0", n)
		}
	})

	t.Run("malformed JSON is rejected", func(t *testing.T) {
		s, m := newTestSubscriber(t)
		called := false
		s.SetMessageHandler(func(Telemetry) error { called = true; return nil })

		s.handleMessage("stations/alpha/telemetry", []byte(`{not json`))

		if called {
			t.Error("handler called for malformed payload")
		}
		if n := rejected(t, m, "malformed"); n != 1 {
			t.Errorf("malformed rejections = %v; want 1", n)
		}
	})

	t.Run("invalid telemetry is rejected", func(t *testing.T) {
		s, m := newTestSubscriber(t)
		called := false
		s.SetMessageHandler(func(Telemetry) error { called = true; return nil })

		s.handleMessage("stations/alpha/telemetry", []byte(`{"station_id":"alpha","timestamp":"2025-02-01T12:00:00Z"}`))

		if called {
			t.Error("handler called for invalid telemetry")
		}
		if n := rejected(t, m, "invalid"); n != 1 {
			t.Errorf("invalid rejections = %v; want 1", n)
		}
	})

	t.Run("handler failure is counted", func(t *testing.T) {
		s, m := newTestSubscriber(t)
		s.SetMessageHandler(func(Telemetry) error { return errors.New("db down") })

		s.handleMessage("stations/alpha/telemetry", []byte(`{"station_id":"alpha","timestamp":"2025-02-01T12:00:00Z","temperature_c":20}`))

		if n := rejected(t, m, "handler"); n != 1 {
			t.Errorf("handler rejections = %v; want 1", n)
		}
	})

	t.Run("no handler is a no-op", func(t *testing.T) {
		s, _ := newTestSubscriber(t)
		s.handleMessage("stations/alpha/telemetry", []byte(`{"station_id":"alpha","timestamp":"2025-02-01T12:00:00Z","temperature_c":20}`))
	})
}

func TestSubscriber_DisconnectIdempotent(t *testing.T) {
	s, _ := newTestSubscriber(t)
	s.Disconnect()
	s.Disconnect()
	if s.IsConnected() {
		t.Error("IsConnected() = true after Disconnect")
	}
	if err := s.Connect(t.Context()); err == nil {
		t.Error("Connect() after Disconnect = nil; want error")
	}
}
