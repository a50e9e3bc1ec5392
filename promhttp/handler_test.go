package promhttp

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prometheus/client_metrics_core/expfmt"
	"github.com/prometheus/client_metrics_core/metrics"
	"github.com/prometheus/client_metrics_core/model"
)

func TestHandlerDefaultsToPrometheusText(t *testing.T) {
	reg := metrics.NewRegistry()
	reg.MustRegister(NewFixtureCounter())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	Handler(reg, HandlerOpts{}).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, expfmt.PrometheusContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "hits_total 1")
	assert.NotContains(t, rec.Body.String(), "# EOF")
}

func TestHandlerNegotiatesOpenMetricsFromAcceptHeader(t *testing.T) {
	reg := metrics.NewRegistry()
	reg.MustRegister(NewFixtureCounter())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.Header.Set("Accept", "application/openmetrics-text; version=1.0.0")
	rec := httptest.NewRecorder()
	Handler(reg, HandlerOpts{}).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, expfmt.OpenMetricsContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "# EOF")
}

func TestHandlerLogsCollectorFailuresButStillServes(t *testing.T) {
	reg := metrics.NewRegistry()
	require.NoError(t, reg.Register("broken", brokenCollector{}))

	var logged []any
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	Handler(reg, HandlerOpts{ErrorLog: func(v ...any) { logged = append(logged, v...) }}).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, logged)
}

func TestHandlerStampsTimestampWhenNowProvided(t *testing.T) {
	reg := metrics.NewRegistry()
	reg.MustRegister(NewFixtureCounter())

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.Header.Set("Accept", "application/openmetrics-text")
	rec := httptest.NewRecorder()
	Handler(reg, HandlerOpts{Now: func() int64 { return 1000 }}).ServeHTTP(rec, req)

	assert.Contains(t, rec.Body.String(), "1.000")
}

func NewFixtureCounter() *metrics.Counter {
	c := metrics.NewCounter(metrics.CounterOpts{Name: "hits"})
	c.Inc()
	return c
}

type brokenCollector struct{}

func (brokenCollector) Collect(out *[]model.MetricSnapshot) { panic("boom") }
