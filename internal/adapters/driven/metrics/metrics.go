// Package metrics records backend calls as Prometheus metrics.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/grasp/internal/core/domain"
	"github.com/custodia-labs/grasp/internal/core/ports/driven"
)

// Ensure Observer implements the interface.
var _ driven.BackendObserver = (*Observer)(nil)

// Call outcomes.
const (
	OutcomeOK        = "ok"
	OutcomeError     = "error"
	OutcomeTimeout   = "timeout"
	OutcomeCancelled = "cancelled"
)

// Observer counts backend calls and their latency on its own registry.
type Observer struct {
	registry *prometheus.Registry
	calls    *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewObserver creates an observer with a fresh registry that also carries
// the Go runtime and process collectors.
func NewObserver() *Observer {
	reg := prometheus.NewRegistry()
	o := &Observer{
		registry: reg,
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "grasp",
			Name:      "backend_calls_total",
			Help:      "Backend calls by operation, backend and outcome.",
		}, []string{"operation", "backend", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "grasp",
			Name:      "backend_call_duration_seconds",
			Help:      "Backend call latency by operation and backend.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"operation", "backend"}),
	}
	reg.MustRegister(
		o.calls,
		o.latency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return o
}

// ObserveCall records one backend call.
func (o *Observer) ObserveCall(operation, backend string, elapsed time.Duration, err error) {
	o.calls.WithLabelValues(operation, backend, Outcome(err)).Inc()
	o.latency.WithLabelValues(operation, backend).Observe(elapsed.Seconds())
}

// Registry returns the registry the metrics live on.
func (o *Observer) Registry() *prometheus.Registry {
	return o.registry
}

// Handler serves the metrics in the Prometheus text format.
func (o *Observer) Handler() http.Handler {
	return promhttp.HandlerFor(o.registry, promhttp.HandlerOpts{})
}

// Outcome labels a call error.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, context.Canceled):
		return OutcomeCancelled
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, domain.ErrBackendTimeout):
		return OutcomeTimeout
	default:
		return OutcomeError
	}
}
