// Package prometheus registers and exposes the engine's metrics.
package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "landgauge"

// Metrics holds every collector the engine emits.  Construct one per process
// with NewMetrics and share it across components.
type Metrics struct {
	registry *prometheus.Registry

	// Geo query layer.
	GeoQueryRequests *prometheus.CounterVec
	GeoQueryDuration *prometheus.HistogramVec
	GeoCacheHits     prometheus.Counter
	GeoCacheMisses   prometheus.Counter

	// Analysis pipeline.
	AnalysesTotal    *prometheus.CounterVec
	AnalysisDuration *prometheus.HistogramVec

	// Sales pipeline.
	SalesSearches     prometheus.Counter
	ComparableQueries prometheus.Counter
	ValuationsTotal   *prometheus.CounterVec
}

// NewMetrics creates and registers the full metric set on a fresh registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,

		GeoQueryRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "geoquery",
			Name:      "requests_total",
			Help:      "Upstream spatial layer queries by layer and status.",
		}, []string{"layer", "status"}),

		GeoQueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "geoquery",
			Name:      "request_duration_seconds",
			Help:      "Upstream spatial layer query latency.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"layer"}),

		GeoCacheHits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "geoquery",
			Name:      "cache_hits_total",
			Help:      "Spatial query results served from cache.",
		}),

		GeoCacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "geoquery",
			Name:      "cache_misses_total",
			Help:      "Spatial queries that reached the upstream service.",
		}),

		AnalysesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "total",
			Help:      "Property analyses by jurisdiction and status.",
		}, []string{"state", "status"}),

		AnalysisDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "analysis",
			Name:      "duration_seconds",
			Help:      "End to end property analysis latency.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"state"}),

		SalesSearches: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sales",
			Name:      "searches_total",
			Help:      "Sales corpus searches.",
		}),

		ComparableQueries: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sales",
			Name:      "comparable_queries_total",
			Help:      "Comparable sales analyses.",
		}),

		ValuationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sales",
			Name:      "valuations_total",
			Help:      "Valuation outcomes by result.",
		}, []string{"result"}),
	}
}

// Registry exposes the underlying registry for HTTP handlers and tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
