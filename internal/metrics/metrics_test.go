package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestFetcherMetrics_Registered(t *testing.T) {
	TasksFetched.Add(3)
	FetcherBackoffSeconds.Set(30)
	QueueDepth.Set(12)

	names := gatheredNames(t)
	for _, want := range []string{"proverd_tasks_fetched_total", "proverd_fetcher_backoff_seconds", "proverd_task_queue_depth"} {
		if !names[want] {
			t.Errorf("metric %q not found", want)
		}
	}
}

func TestProverMetrics_Registered(t *testing.T) {
	ProofsComputed.WithLabelValues("ok").Inc()
	ProofLatency.Observe(0.02)
	ProofErrorsByKind.WithLabelValues("malformed_task").Inc()

	names := gatheredNames(t)
	for _, want := range []string{"proverd_proofs_computed_total", "proverd_proof_latency_seconds", "proverd_proof_errors_total"} {
		if !names[want] {
			t.Errorf("metric %q not found", want)
		}
	}
}

func TestSubmitterMetrics_Registered(t *testing.T) {
	ProofsAccepted.Inc()
	SubmitErrorsByKind.WithLabelValues("rate_limited").Inc()
	SubmitLatency.Observe(0.1)
	WorkersActive.Set(4)

	names := gatheredNames(t)
	for _, want := range []string{"proverd_proofs_accepted_total", "proverd_submit_errors_total", "proverd_submit_latency_seconds", "proverd_workers_active"} {
		if !names[want] {
			t.Errorf("metric %q not found", want)
		}
	}
}

func gatheredNames(t *testing.T) map[string]bool {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	names := make(map[string]bool, len(families))
	for _, f := range families {
		names[f.GetName()] = true
	}
	return names
}
