// Package metrics registers the pipeline's Prometheus metrics: counters
// and gauges over fetch/backoff/proof/submit activity, mirroring the
// teacher's promauto.NewCounterVec/NewGauge registration pattern.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Fetcher ────────────────────────────────────────────────────────────────

// TasksFetched tracks tasks pulled from the orchestrator.
var TasksFetched = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "proverd",
	Name:      "tasks_fetched_total",
	Help:      "Total tasks fetched from the orchestrator.",
})

// FetcherBackoffSeconds tracks the fetcher's current backoff duration in seconds.
var FetcherBackoffSeconds = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "proverd",
	Name:      "fetcher_backoff_seconds",
	Help:      "Current fetcher backoff duration in seconds.",
})

// QueueDepth tracks the shared task queue's current length.
var QueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "proverd",
	Name:      "task_queue_depth",
	Help:      "Current length of the shared task queue.",
})

// ─── Prover ─────────────────────────────────────────────────────────────────

// ProofsComputed tracks proofs completed by a worker, by outcome.
var ProofsComputed = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "proverd",
	Name:      "proofs_computed_total",
	Help:      "Total proofs computed by outcome (ok, error).",
}, []string{"outcome"})

// ProofLatency tracks proving duration in seconds.
var ProofLatency = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "proverd",
	Name:      "proof_latency_seconds",
	Help:      "Time to compute one proof.",
	Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
})

// ProofErrorsByKind tracks proving errors by classified kind.
var ProofErrorsByKind = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "proverd",
	Name:      "proof_errors_total",
	Help:      "Total proving errors by error kind.",
}, []string{"kind"})

// ─── Submitter ──────────────────────────────────────────────────────────────

// ProofsAccepted tracks orchestrator-accepted submissions.
var ProofsAccepted = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "proverd",
	Name:      "proofs_accepted_total",
	Help:      "Total proof submissions accepted by the orchestrator.",
})

// SubmitErrorsByKind tracks submission errors by classified kind.
var SubmitErrorsByKind = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "proverd",
	Name:      "submit_errors_total",
	Help:      "Total submission errors by error kind.",
}, []string{"kind"})

// SubmitLatency tracks round-trip submission latency in seconds.
var SubmitLatency = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "proverd",
	Name:      "submit_latency_seconds",
	Help:      "Round-trip latency of a proof submission call.",
	Buckets:   prometheus.DefBuckets,
})

// ─── Worker pool ────────────────────────────────────────────────────────────

// WorkersActive tracks the configured worker count.
var WorkersActive = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "proverd",
	Name:      "workers_active",
	Help:      "Number of running prover workers.",
})
