package metrics

import (
	"errors"
	"net/http"
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Package-level Prometheus collectors. They are registered via Register.
var (
	regOK atomic.Bool

	subjectCreates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "statewatch",
			Subsystem: "observer",
			Name:      "subject_creates_total",
			Help:      "Number of subject create hooks received.",
		}, []string{"subject"},
	)
	eventsRecorded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "statewatch",
			Subsystem: "observer",
			Name:      "events_total",
			Help:      "Number of event records appended.",
		}, []string{"subject"},
	)
	stateChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "statewatch",
			Subsystem: "observer",
			Name:      "state_changes_total",
			Help:      "Number of state transition records appended.",
		}, []string{"subject"},
	)
	errorsRecorded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "statewatch",
			Subsystem: "observer",
			Name:      "errors_total",
			Help:      "Number of error hooks recorded.",
		}, []string{"subject"},
	)
	evictions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "statewatch",
			Subsystem: "observer",
			Name:      "evictions_total",
			Help:      "Records evicted from full per-subject logs.",
		}, []string{"subject", "kind"},
	)
	listenerFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "statewatch",
			Subsystem: "observer",
			Name:      "listener_failures_total",
			Help:      "Listener callbacks that panicked during notification.",
		},
	)
	describeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "statewatch",
			Subsystem: "observer",
			Name:      "describe_duration_seconds",
			Help:      "Time spent deriving record descriptions.",
			Buckets:   prometheus.ExponentialBuckets(1e-6, 10, 6),
		},
	)
	activeSubjects = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "statewatch",
			Subsystem: "observer",
			Name:      "active_subjects",
			Help:      "Subjects currently in the active set.",
		},
	)
)

// Register registers all metrics with the provided registerer.
// It is safe to call multiple times; subsequent calls after success are no-ops.
func Register(r prometheus.Registerer) error {
	if regOK.Load() {
		return nil
	}
	cs := []prometheus.Collector{subjectCreates, eventsRecorded, stateChanges, errorsRecorded, evictions, listenerFailures, describeDuration, activeSubjects}
	for _, c := range cs {
		if err := r.Register(c); err != nil {
			// If already registered, ignore (allows double Register with default registry)
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	regOK.Store(true)
	return nil
}

// Handler returns an http.Handler that serves Prometheus metrics for the DefaultGatherer.
// The caller is responsible for starting an HTTP server and wiring the route.
func Handler() http.Handler { return promhttp.Handler() }

// Below are lightweight helpers used by the observer to record metrics.
// They no-op if Register hasn't been called.

func IncCreate(subject string) {
	if regOK.Load() {
		subjectCreates.WithLabelValues(subject).Inc()
	}
}

func IncEvent(subject string) {
	if regOK.Load() {
		eventsRecorded.WithLabelValues(subject).Inc()
	}
}

func IncStateChange(subject string) {
	if regOK.Load() {
		stateChanges.WithLabelValues(subject).Inc()
	}
}

func IncError(subject string) {
	if regOK.Load() {
		errorsRecorded.WithLabelValues(subject).Inc()
	}
}

func IncEviction(subject, kind string) {
	if regOK.Load() {
		evictions.WithLabelValues(subject, kind).Inc()
	}
}

func IncListenerFailure() {
	if regOK.Load() {
		listenerFailures.Inc()
	}
}

func ObserveDescribeDuration(seconds float64) {
	if regOK.Load() {
		describeDuration.Observe(seconds)
	}
}

func SetActiveSubjects(n int) {
	if regOK.Load() {
		activeSubjects.Set(float64(n))
	}
}
