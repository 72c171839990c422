package handlers

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics are the render counters exported on /metrics
type Metrics struct {
	renders   *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	cacheHits prometheus.Counter
}

// NewMetrics registers the render metrics on reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		renders: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "seriesplot_renders_total",
				Help: "Total render requests, labeled by output format and status code.",
			},
			[]string{"format", "code"},
		),
		duration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "seriesplot_render_duration_seconds",
				Help:    "Duration of uncached renders.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"format"},
		),
		cacheHits: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "seriesplot_render_cache_hits_total",
				Help: "Render requests served from the render cache.",
			},
		),
	}
}
