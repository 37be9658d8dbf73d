package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.ReadingIngested("temperature")
	m.ReadingIngested("temperature")
	m.ReadingIngested("humidity")
	m.OutlierRemoved("temperature")
	m.MessageRejected("invalid")
	m.SeriesFiltered()

	if got := testutil.ToFloat64(m.readingsIngested.WithLabelValues("temperature")); got != 2 {
		t.Errorf("readings_ingested_total{temperature} = %v; want 2", got)
	}
	if got := testutil.ToFloat64(m.outliersRemoved.WithLabelValues("temperature")); got != 1 {
		t.Errorf("outliers_removed_total{temperature} = %v; want 1", got)
	}
	if got := testutil.ToFloat64(m.messagesRejected.WithLabelValues("invalid")); got != 1 {
		t.Errorf("messages_rejected_total{invalid} = %v; want 1", got)
	}
	if got := testutil.ToFloat64(m.seriesFiltered); got != 1 {
		t.Errorf("series_filtered_total = %v; want 1", got)
	}
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.ObserveHTTP(http.MethodGet, http.StatusOK, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `stationwatch_http_requests_total{method="GET",status="200"} 1`) {
		t.Errorf("exposition missing request counter:\n%s", body)
	}
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.ReadingIngested("temperature")
	m.OutlierRemoved("temperature")
	m.MessageRejected("invalid")
	m.SeriesFiltered()
	m.ObserveHTTP(http.MethodGet, http.StatusOK, time.Millisecond)
	if m.Registry() != nil {
		t.Error("Registry() of nil Metrics should be nil")
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d; want 404", rec.Code)
	}
}
