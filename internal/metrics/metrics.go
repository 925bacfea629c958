// Package metrics exposes Prometheus instrumentation for the execution
// engine: outcome counts, execution latency, and dispatcher saturation.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ExecutionsTotal counts finished executions by outcome status.
	ExecutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sandbox",
		Name:      "executions_total",
		Help:      "Number of code executions by outcome status.",
	}, []string{"status"})

	// ExecutionDuration observes wall-clock execution time in seconds.
	ExecutionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "sandbox",
		Name:      "execution_duration_seconds",
		Help:      "Wall-clock duration of code executions.",
		Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
	})

	// QueueDepth tracks requests waiting for a worker slot.
	QueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "sandbox",
		Name:      "queue_depth",
		Help:      "Number of execution requests queued for a worker.",
	})

	// BusyWorkers tracks workers currently running a submission.
	BusyWorkers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "sandbox",
		Name:      "busy_workers",
		Help:      "Number of dispatcher workers executing code.",
	})

	// RejectedTotal counts submissions refused because the queue was full.
	RejectedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "sandbox",
		Name:      "rejected_total",
		Help:      "Number of submissions rejected with busy status.",
	})
)

// Handler returns the HTTP handler serving the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
