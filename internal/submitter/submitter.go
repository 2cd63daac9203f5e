// Package submitter consumes (task, proof) pairs off the result channel,
// signs and hashes each proof, submits it to the orchestrator, and records
// success in a dedup cache (spec §4.7).
//
// Grounded on the teacher's internal/security/crypto.go signing primitive
// (generalized from signing gossip messages to signing submission
// payloads) and internal/infra/scheduler/retry_queue.go's exponential
// backoff loop, reused here as the submit-side retry budget.
package submitter

import (
	"context"
	"encoding/hex"
	"sync/atomic"
	"time"

	"golang.org/x/crypto/sha3"

	"github.com/tutu-network/proverd/internal/cache"
	"github.com/tutu-network/proverd/internal/domain"
	"github.com/tutu-network/proverd/internal/errclass"
	"github.com/tutu-network/proverd/internal/metrics"
	"github.com/tutu-network/proverd/internal/orchestrator"
	"github.com/tutu-network/proverd/internal/security"
	"github.com/tutu-network/proverd/internal/telemetry"
	"github.com/tutu-network/proverd/internal/workerpool"
)

// Cadence and retry constants (spec §4.7, §5).
const (
	StatsInterval = 30 * time.Second
	RetryBudget   = 3
)

// Submitter is the single consumer of the result channel.
type Submitter struct {
	orch     orchestrator.Client
	success  *cache.TTLSet
	identity *security.NodeIdentity
	sampler  *telemetry.Sampler
	results  <-chan workerpool.Result
	events   chan<- domain.Event

	// backoff is the submitter's own instance of the shared backoff
	// algorithm (spec §4.7: "the same backoff policy as the fetcher, shared
	// helper") — a separate instance because submit-side and fetch-side
	// failures are independent signals, not shared mutable state.
	backoff *errclass.BackoffPolicy

	accepted       int64 // cumulative, for the lifetime of the process
	acceptedAtLast int64 // snapshot of accepted at the previous Stats tick
}

// New builds a Submitter reading from results and emitting onto events.
// identity supplies the signing key submissions are signed with.
func New(orch orchestrator.Client, success *cache.TTLSet, identity *security.NodeIdentity, sampler *telemetry.Sampler, results <-chan workerpool.Result, events chan<- domain.Event) *Submitter {
	return &Submitter{
		orch:     orch,
		success:  success,
		identity: identity,
		sampler:  sampler,
		results:  results,
		events:   events,
		backoff:  errclass.NewBackoffPolicy(),
	}
}

// Run drains results until it is closed or shutdown fires, emitting a Stats
// event on a fixed cadence in the meantime.
func (s *Submitter) Run(ctx context.Context, shutdown <-chan struct{}) {
	ticker := time.NewTicker(StatsInterval)
	defer ticker.Stop()
	windowStart := time.Now()

	for {
		select {
		case <-shutdown:
			return
		case <-ticker.C:
			s.emitStats(windowStart)
			windowStart = time.Now()
		case res, ok := <-s.results:
			if !ok {
				return
			}
			s.handle(ctx, shutdown, res)
		}
	}
}

// handle implements the per-item pipeline of spec §4.7.
func (s *Submitter) handle(ctx context.Context, shutdown <-chan struct{}, res workerpool.Result) {
	if s.success.Contains(res.Task.ID) {
		return // idempotent duplicate
	}

	proofBytes, err := res.Proof.Serialize()
	if err != nil {
		metrics.SubmitErrorsByKind.WithLabelValues(errclass.ErrorKind(err)).Inc()
		s.emit(domain.Event{Kind: domain.EventSubmitError, TaskID: res.Task.ID, ErrorKind: errclass.ErrorKind(err)}, shutdown)
		return
	}

	digest := sha3.NewLegacyKeccak256()
	digest.Write(proofBytes)
	proofHash := hex.EncodeToString(digest.Sum(nil))

	submission := domain.ProofSubmission{
		TaskID:     res.Task.ID,
		ProofHash:  proofHash,
		ProofBytes: proofBytes,
		Signature:  s.identity.SignSubmission(res.Task.ID, proofHash),
		PublicKey:  []byte(s.identity.Public),
		Telemetry:  s.sampler.Sample(ctx),
	}

	var lastErr error
	for attempt := 0; attempt <= RetryBudget; attempt++ {
		start := time.Now()
		lastErr = s.orch.SubmitProof(ctx, submission)
		metrics.SubmitLatency.Observe(time.Since(start).Seconds())
		if lastErr == nil {
			s.backoff.OnSuccess()
			s.success.Insert(res.Task.ID)
			atomic.AddInt64(&s.accepted, 1)
			metrics.ProofsAccepted.Inc()
			s.emit(domain.Event{Kind: domain.EventProofAccepted, TaskID: res.Task.ID}, shutdown)
			return
		}

		sev := errclass.Classify(lastErr)
		errclass.LogClassified("submitter", lastErr, sev)
		if !sev.IsRetryable() {
			break
		}
		d := s.backoff.OnFailure(sev)
		select {
		case <-time.After(d):
		case <-shutdown:
			return
		}
	}

	metrics.SubmitErrorsByKind.WithLabelValues(errclass.ErrorKind(lastErr)).Inc()
	s.emit(domain.Event{Kind: domain.EventSubmitError, TaskID: res.Task.ID, ErrorKind: errclass.ErrorKind(lastErr)}, shutdown)
}

// emitStats reports the cumulative accepted count and the rolling
// acceptance rate over the window since the previous tick.
func (s *Submitter) emitStats(windowStart time.Time) {
	accepted := atomic.LoadInt64(&s.accepted)
	delta := accepted - s.acceptedAtLast
	s.acceptedAtLast = accepted

	elapsedMin := time.Since(windowStart).Minutes()
	rate := 0.0
	if elapsedMin > 0 {
		rate = float64(delta) / elapsedMin
	}
	select {
	case s.events <- domain.Event{Kind: domain.EventStats, At: time.Now(), Accepted: accepted, RatePerMin: rate}:
	default:
	}
}

func (s *Submitter) emit(e domain.Event, shutdown <-chan struct{}) {
	e.At = time.Now()
	select {
	case s.events <- e:
	case <-shutdown:
	}
}
