package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/rshade/ecotrack/internal/carbon"
)

const metricsNamespace = "ecotrack"

// Estimate outcomes recorded in the estimates_total counter.
const (
	OutcomeOK      = "ok"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
)

// Side effects counted in side_effect_failures_total.
const (
	SideEffectStore   = "store"
	SideEffectPublish = "publish"
)

// Metrics are the service's Prometheus collectors.
type Metrics struct {
	Estimates          *prometheus.CounterVec
	Duration           prometheus.Histogram
	CategoryKg         *prometheus.HistogramVec
	SideEffectFailures *prometheus.CounterVec
}

// NewMetrics registers the collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Estimates: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "estimates_total",
			Help:      "Footprint estimates by outcome.",
		}, []string{"outcome"}),
		Duration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "estimate_duration_seconds",
			Help:      "Time to compute one estimate including persistence and publication.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		CategoryKg: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "category_kg_co2e",
			Help:      "Monthly kg CO2e per category of successful estimates.",
			Buckets:   []float64{10, 25, 50, 100, 150, 250, 500, 1000, 2500},
		}, []string{"category"}),
		SideEffectFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "side_effect_failures_total",
			Help:      "Best-effort persistence and publication failures.",
		}, []string{"target"}),
	}
}

func (m *Metrics) observeBreakdown(b carbon.Breakdown) {
	for _, c := range carbon.Categories() {
		m.CategoryKg.WithLabelValues(string(c)).Observe(b.Category(c))
	}
}
