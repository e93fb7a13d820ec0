package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	sourceCalls  *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
	latency      *prometheus.HistogramVec
	cacheLookups *prometheus.CounterVec
	coverage     *prometheus.GaugeVec
}

// New creates a recorder registered on the default registry.
func New() *Recorder {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

// NewWithRegistry creates a recorder registered on reg.
func NewWithRegistry(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		sourceCalls: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpull_source_calls_total",
				Help: "Physical calls made to the quote provider",
			},
			[]string{"dataset", "result"},
		),
		errorsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpull_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stockpull_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		cacheLookups: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockpull_calendar_cache_lookups_total",
				Help: "Calendar cache lookups by result",
			},
			[]string{"result"},
		),
		coverage: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stockpull_overlay_coverage_percent",
				Help: "Overlay coverage of the last aggregation",
			},
			[]string{"overlay"},
		),
	}
}

// RecordSourceCall counts one provider call; result is ok, network or upstream.
func (r *Recorder) RecordSourceCall(dataset, result string) {
	r.sourceCalls.WithLabelValues(dataset, result).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// RecordCacheLookup counts a calendar cache lookup; result is hit, l2_hit, miss or refresh.
func (r *Recorder) RecordCacheLookup(result string) {
	r.cacheLookups.WithLabelValues(result).Inc()
}

func (r *Recorder) RecordCoverage(overlay string, pct int) {
	r.coverage.WithLabelValues(overlay).Set(float64(pct))
}

// Noop discards everything.
type Noop struct{}

func (Noop) RecordSourceCall(string, string) {}
func (Noop) RecordError(string)              {}
func (Noop) RecordLatency(string, float64)   {}
func (Noop) RecordCacheLookup(string)        {}
func (Noop) RecordCoverage(string, int)      {}
