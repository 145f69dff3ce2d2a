// Package metrics exports workflow telemetry to Prometheus.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Observer receives timings for each stage of the upload workflow.
type Observer interface {
	// RecordAttempt tracks a single storage target attempt.
	RecordAttempt(op, bucket string, duration time.Duration, err error)
	// RecordStage tracks a workflow stage such as negotiate or record.
	RecordStage(stage string, duration time.Duration, err error)
	RecordFallback(op string)
}

type PrometheusObserver struct {
	attemptDuration *prometheus.HistogramVec
	attemptErrors   *prometheus.CounterVec
	stageDuration   *prometheus.HistogramVec
	stageErrors     *prometheus.CounterVec
	fallbacks       *prometheus.CounterVec
}

func NewPrometheusObserver(namespace string, reg prometheus.Registerer) (*PrometheusObserver, error) {
	if namespace == "" {
		namespace = "asset_api"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	o := &PrometheusObserver{
		attemptDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "storage_attempt_duration_seconds",
			Help:      "Latency of a single storage target attempt.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation", "bucket"}),
		attemptErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_attempt_errors_total",
			Help:      "Count of rejected storage target attempts.",
		}, []string{"operation", "bucket"}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Latency of upload workflow stages.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),
		stageErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_errors_total",
			Help:      "Count of failed upload workflow stages.",
		}, []string{"stage"}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_fallbacks_total",
			Help:      "Count of operations served by a secondary storage target.",
		}, []string{"operation"}),
	}

	var err error
	if o.attemptDuration, err = register(reg, o.attemptDuration); err != nil {
		return nil, err
	}
	if o.attemptErrors, err = register(reg, o.attemptErrors); err != nil {
		return nil, err
	}
	if o.stageDuration, err = register(reg, o.stageDuration); err != nil {
		return nil, err
	}
	if o.stageErrors, err = register(reg, o.stageErrors); err != nil {
		return nil, err
	}
	if o.fallbacks, err = register(reg, o.fallbacks); err != nil {
		return nil, err
	}

	return o, nil
}

// register adds c to reg, reusing an identical collector registered earlier.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}

		return c, fmt.Errorf("register metric: %w", err)
	}

	return c, nil
}

func (o *PrometheusObserver) RecordAttempt(op, bucket string, duration time.Duration, err error) {
	if o == nil {
		return
	}

	o.attemptDuration.WithLabelValues(op, bucket).Observe(duration.Seconds())
	if err != nil {
		o.attemptErrors.WithLabelValues(op, bucket).Inc()
	}
}

func (o *PrometheusObserver) RecordStage(stage string, duration time.Duration, err error) {
	if o == nil {
		return
	}

	o.stageDuration.WithLabelValues(stage).Observe(duration.Seconds())
	if err != nil {
		o.stageErrors.WithLabelValues(stage).Inc()
	}
}

func (o *PrometheusObserver) RecordFallback(op string) {
	if o == nil {
		return
	}

	o.fallbacks.WithLabelValues(op).Inc()
}

type nopObserver struct{}

// Nop returns an Observer that discards everything.
func Nop() Observer { return nopObserver{} }

func (nopObserver) RecordAttempt(string, string, time.Duration, error) {}
func (nopObserver) RecordStage(string, time.Duration, error)          {}
func (nopObserver) RecordFallback(string)                             {}

var _ Observer = (*PrometheusObserver)(nil)
