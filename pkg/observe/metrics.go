// Package observe provides Prometheus metrics and OpenTelemetry tracing
// for the flare reactive runtime.
//
// Metrics attaches a flare.Recorder backed by Prometheus collectors:
//
//	rec := observe.Metrics(
//	    observe.WithNamespace("myapp"),
//	)
//	flare.SetRecorder(rec)
//
// Tracing wraps transactions in spans; see SpanTx.
package observe

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/flare-dev/flare/pkg/flare"
)

// MetricsConfig configures the Prometheus recorder.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "flare").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for effect run duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// FlushBuckets are the histogram buckets for batch flush size.
	FlushBuckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus recorder.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the effect duration histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithFlushBuckets sets the batch flush size histogram buckets.
func WithFlushBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.FlushBuckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

// defaultMetricsConfig returns the default metrics configuration.
func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace:    "flare",
		Subsystem:    "",
		ConstLabels:  nil,
		Buckets:      prometheus.DefBuckets,
		FlushBuckets: []float64{1, 2, 5, 10, 25, 50, 100, 250},
		Registry:     prometheus.DefaultRegisterer,
	}
}

// PromRecorder is a flare.Recorder backed by Prometheus collectors.
type PromRecorder struct {
	signalWrites   prometheus.Counter
	effectRuns     prometheus.Counter
	effectDuration prometheus.Histogram
	batchFlushSize prometheus.Histogram
	cycleAborts    prometheus.Counter
	watchFires     prometheus.Counter
}

// Metrics creates a Prometheus-backed recorder and registers its
// collectors with the configured registry.
//
// Metrics collected:
//   - flare_signal_writes_total: Counter of signal writes that passed the equality check
//   - flare_effect_runs_total: Counter of effect executions
//   - flare_effect_duration_seconds: Histogram of effect run duration
//   - flare_batch_flush_size: Histogram of distinct signals notified per batch flush
//   - flare_cycle_aborts_total: Counter of propagations aborted by the cycle guard
//   - flare_watch_fires_total: Counter of watcher callback deliveries
func Metrics(opts ...MetricsOption) *PromRecorder {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(config.Registry)

	return &PromRecorder{
		signalWrites: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "signal_writes_total",
			Help:        "Total number of signal writes that changed the stored value",
			ConstLabels: config.ConstLabels,
		}),

		effectRuns: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "effect_runs_total",
			Help:        "Total number of effect executions",
			ConstLabels: config.ConstLabels,
		}),

		effectDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "effect_duration_seconds",
			Help:        "Effect execution duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		batchFlushSize: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "batch_flush_size",
			Help:        "Number of distinct signals notified per batch flush",
			ConstLabels: config.ConstLabels,
			Buckets:     config.FlushBuckets,
		}),

		cycleAborts: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "cycle_aborts_total",
			Help:        "Total number of propagations aborted by the cycle guard",
			ConstLabels: config.ConstLabels,
		}),

		watchFires: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "watch_fires_total",
			Help:        "Total number of watcher callback deliveries",
			ConstLabels: config.ConstLabels,
		}),
	}
}

var _ flare.Recorder = (*PromRecorder)(nil)

// SignalWrite records a signal write.
func (r *PromRecorder) SignalWrite() {
	r.signalWrites.Inc()
}

// EffectRun records an effect execution and its duration.
func (r *PromRecorder) EffectRun(d time.Duration) {
	r.effectRuns.Inc()
	r.effectDuration.Observe(d.Seconds())
}

// BatchFlush records the number of distinct signals notified by a flush.
func (r *PromRecorder) BatchFlush(size int) {
	r.batchFlushSize.Observe(float64(size))
}

// CycleAborted records a propagation aborted by the cycle guard.
func (r *PromRecorder) CycleAborted() {
	r.cycleAborts.Inc()
}

// WatchFire records a watcher callback delivery.
func (r *PromRecorder) WatchFire() {
	r.watchFires.Inc()
}
