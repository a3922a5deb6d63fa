package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		t.Fatalf("failed to read counter: %v", err)
	}
	return m.GetCounter().GetValue()
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	m := &dto.Metric{}
	if err := g.Write(m); err != nil {
		t.Fatalf("failed to read gauge: %v", err)
	}
	return m.GetGauge().GetValue()
}

func TestMetricsMiddlewareUsesRoutePattern(t *testing.T) {
	router := chi.NewRouter()
	router.Use(Metrics)
	router.Get("/v1/medicines/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	counter := HTTPRequestTotals.WithLabelValues("GET", "/v1/medicines/{id}", "404")
	before := counterValue(t, counter)

	req := httptest.NewRequest(http.MethodGet, "/v1/medicines/abc", nil)
	router.ServeHTTP(httptest.NewRecorder(), req)

	if after := counterValue(t, counter); after != before+1 {
		t.Errorf("expected counter to increase by 1, got %v -> %v", before, after)
	}

	if got := gaugeValue(t, HTTPRequestInFlight); got != 0 {
		t.Errorf("expected no in-flight requests after completion, got %v", got)
	}
}

func TestMetricsMiddlewareUnmatchedRoute(t *testing.T) {
	router := chi.NewRouter()
	router.Use(Metrics)
	router.Get("/known", func(w http.ResponseWriter, r *http.Request) {})

	counter := HTTPRequestTotals.WithLabelValues("GET", "unmatched", "404")
	before := counterValue(t, counter)

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nope/123", nil))

	if after := counterValue(t, counter); after != before+1 {
		t.Errorf("expected unmatched counter to increase by 1, got %v -> %v", before, after)
	}
}
