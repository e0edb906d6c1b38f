package prometheus

import (
	"net/http/httptest"
	"testing"

	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsRegisterAndCount(t *testing.T) {
	m := NewMetrics()

	m.GeoQueryRequests.WithLabelValues("zoning", "ok").Inc()
	m.GeoQueryRequests.WithLabelValues("zoning", "ok").Inc()
	m.GeoCacheHits.Inc()
	m.AnalysesTotal.WithLabelValues("NSW", "ok").Inc()
	m.SalesSearches.Inc()
	m.ValuationsTotal.WithLabelValues("estimated").Inc()

	assert.Equal(t, 2.0, promtestutil.ToFloat64(m.GeoQueryRequests.WithLabelValues("zoning", "ok")))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(m.GeoCacheHits))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(m.AnalysesTotal.WithLabelValues("NSW", "ok")))
	assert.Equal(t, 0.0, promtestutil.ToFloat64(m.AnalysesTotal.WithLabelValues("NSW", "error")))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(m.ValuationsTotal.WithLabelValues("estimated")))
}

func TestIndependentRegistries(t *testing.T) {
	a := NewMetrics()
	b := NewMetrics()

	a.SalesSearches.Inc()
	assert.Equal(t, 1.0, promtestutil.ToFloat64(a.SalesSearches))
	assert.Equal(t, 0.0, promtestutil.ToFloat64(b.SalesSearches))
}

func TestRegistryServesExposition(t *testing.T) {
	m := NewMetrics()
	m.GeoQueryRequests.WithLabelValues("zoning", "ok").Inc()

	handler := promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{})
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "landgauge_geoquery_requests_total")
}
