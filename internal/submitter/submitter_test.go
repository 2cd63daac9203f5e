package submitter

import (
	"context"
	"testing"
	"time"

	"github.com/tutu-network/proverd/internal/cache"
	"github.com/tutu-network/proverd/internal/domain"
	"github.com/tutu-network/proverd/internal/geoip"
	"github.com/tutu-network/proverd/internal/orchestrator"
	"github.com/tutu-network/proverd/internal/security"
	"github.com/tutu-network/proverd/internal/telemetry"
	"github.com/tutu-network/proverd/internal/workerpool"
)

func newTestSubmitter(t *testing.T, mock *orchestrator.MockClient) (*Submitter, chan workerpool.Result, chan domain.Event) {
	t.Helper()
	kp, err := security.GenerateKeypair()
	if err != nil {
		t.Fatalf("GenerateKeypair: %v", err)
	}
	results := make(chan workerpool.Result, 10)
	events := make(chan domain.Event, 10)
	sampler := telemetry.New(geoip.StaticProvider{Code: "US"}, 1)
	s := New(mock, cache.New(time.Minute, 500), security.NewNodeIdentity(kp, "node-1"), sampler, results, events)
	return s, results, events
}

func mustProve(t *testing.T, taskID string) (domain.Task, domain.Proof) {
	t.Helper()
	task := domain.Task{ID: taskID, Program: domain.ProgramFibInitial, PublicInputs: domain.EncodeFibInitial(domain.FibInitialInput{N: 9, A: 1, B: 1})}
	proof := domain.Proof{Program: domain.ProgramFibInitial, Output: []byte{55, 0, 0, 0, 0, 0, 0, 0}}
	return task, proof
}

func TestSubmitter_HappyPath(t *testing.T) {
	mock := orchestrator.NewMockClient()
	s, results, events := newTestSubmitter(t, mock)
	task, proof := mustProve(t, "T1")

	s.handle(context.Background(), make(chan struct{}), workerpool.Result{Task: task, Proof: proof})
	_ = results

	select {
	case e := <-events:
		if e.Kind != domain.EventProofAccepted || e.TaskID != "T1" {
			t.Fatalf("got event %+v, want ProofAccepted for T1", e)
		}
	default:
		t.Fatal("expected a ProofAccepted event")
	}
	if mock.SubmitCallCount() != 1 {
		t.Errorf("SubmitProof called %d times, want 1", mock.SubmitCallCount())
	}
}

func TestSubmitter_SignatureOverPayload(t *testing.T) {
	mock := orchestrator.NewMockClient()
	s, _, _ := newTestSubmitter(t, mock)
	task, proof := mustProve(t, "T1")

	s.handle(context.Background(), make(chan struct{}), workerpool.Result{Task: task, Proof: proof})

	if len(mock.Submissions) != 1 {
		t.Fatalf("got %d submissions, want 1", len(mock.Submissions))
	}
	sub := mock.Submissions[0]
	payload := domain.SignaturePayload(sub.TaskID, sub.ProofHash)
	if !security.Verify(payload, sub.Signature, sub.PublicKey) {
		t.Error("submission signature does not verify over the expected payload")
	}
}

func TestSubmitter_DuplicateSuppression(t *testing.T) {
	mock := orchestrator.NewMockClient()
	s, _, _ := newTestSubmitter(t, mock)
	task, proof := mustProve(t, "T1")
	shutdown := make(chan struct{})

	s.handle(context.Background(), shutdown, workerpool.Result{Task: task, Proof: proof})
	s.handle(context.Background(), shutdown, workerpool.Result{Task: task, Proof: proof})

	if mock.SubmitCallCount() != 1 {
		t.Errorf("SubmitProof called %d times, want exactly 1 across two identical submissions", mock.SubmitCallCount())
	}
}

func TestSubmitter_RetriesThenGivesUp(t *testing.T) {
	mock := orchestrator.NewMockClient()
	mock.SubmitErr = domain.ErrServer5xx
	mock.SubmitErrN = RetryBudget + 1
	s, _, events := newTestSubmitter(t, mock)
	s.backoff.Duration = time.Millisecond // keep the test fast
	task, proof := mustProve(t, "T1")

	s.handle(context.Background(), make(chan struct{}), workerpool.Result{Task: task, Proof: proof})

	select {
	case e := <-events:
		if e.Kind != domain.EventSubmitError {
			t.Fatalf("got event kind %v, want EventSubmitError", e.Kind)
		}
	default:
		t.Fatal("expected a SubmitError event after exhausting the retry budget")
	}
}
