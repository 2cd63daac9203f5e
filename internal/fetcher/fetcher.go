// Package fetcher implements the demand-driven online task fetcher
// (spec §4.4): keep the shared task queue non-empty without over-fetching,
// deduping against a cache and backing off under the shared error
// classifier's policy.
//
// Grounded on internal/infra/network/fabric.go's heartbeatLoop and
// internal/health.Checker.Run — both a time.Ticker + select on ctx.Done()
// loop with a tagged logger — generalized from a fixed-interval heartbeat
// to the backoff-gated fetch tick described below.
package fetcher

import (
	"context"
	"log"
	"time"

	"github.com/tutu-network/proverd/internal/cache"
	"github.com/tutu-network/proverd/internal/domain"
	"github.com/tutu-network/proverd/internal/errclass"
	"github.com/tutu-network/proverd/internal/metrics"
	"github.com/tutu-network/proverd/internal/orchestrator"
	"github.com/tutu-network/proverd/internal/security"
)

// Algorithm constants (spec §5).
const (
	LowWaterMark     = 25
	BatchSize        = 10
	Tick             = 500 * time.Millisecond
	QueueLogInterval = 10 * time.Second
)

// Fetcher owns FetchState exclusively (spec §3 Ownership) and is the only
// component that calls Orchestrator.FetchTasks.
type Fetcher struct {
	orch     orchestrator.Client
	seen     *cache.TTLSet
	backoff  *errclass.BackoffPolicy
	identity *security.NodeIdentity
	queue    chan domain.Task
	events   chan<- domain.Event

	lastFetch    time.Time
	lastQueueLog time.Time
}

// New builds a Fetcher writing into queue and emitting onto events. identity
// supplies the node_id and verifying key FetchTasks advertises to the
// orchestrator.
func New(orch orchestrator.Client, seen *cache.TTLSet, identity *security.NodeIdentity, queue chan domain.Task, events chan<- domain.Event) *Fetcher {
	return &Fetcher{
		orch:     orch,
		seen:     seen,
		backoff:  errclass.NewBackoffPolicy(),
		identity: identity,
		queue:    queue,
		events:   events,
	}
}

// Run ticks at Tick cadence until ctx is cancelled or shutdown is closed.
func (f *Fetcher) Run(ctx context.Context, shutdown <-chan struct{}) {
	ticker := time.NewTicker(Tick)
	defer ticker.Stop()
	for {
		select {
		case <-shutdown:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			f.tick(ctx, shutdown)
		}
	}
}

// tick runs one iteration of the algorithm in spec §4.4.
func (f *Fetcher) tick(ctx context.Context, shutdown <-chan struct{}) {
	select {
	case <-shutdown:
		return
	default:
	}

	if time.Since(f.lastFetch) < f.backoff.Duration {
		return
	}

	f.logQueueLevel()
	if len(f.queue) >= LowWaterMark {
		return
	}

	tasks, err := f.orch.FetchTasks(ctx, f.identity.NodeID, []byte(f.identity.Public), BatchSize)
	f.lastFetch = time.Now()
	if err != nil {
		sev := errclass.Classify(err)
		d := f.backoff.OnFailure(sev)
		metrics.FetcherBackoffSeconds.Set(d.Seconds())
		errclass.LogClassified("fetcher", err, sev)
		f.emit(domain.Event{Kind: domain.EventFetcherBackoff, BackoffReason: sev.String(), BackoffDuration: d}, shutdown)
		return
	}

	if len(tasks) == 0 {
		d := f.backoff.OnFailure(errclass.SeverityRetryEmpty404)
		metrics.FetcherBackoffSeconds.Set(d.Seconds())
		f.emit(domain.Event{Kind: domain.EventFetcherBackoff, BackoffReason: "empty_404", BackoffDuration: d}, shutdown)
		return
	}
	f.backoff.OnSuccess()
	metrics.FetcherBackoffSeconds.Set(f.backoff.Duration.Seconds())

	for _, task := range tasks {
		if f.seen.ContainsOrInsert(task.ID) {
			continue
		}
		metrics.TasksFetched.Inc()
		select {
		case f.queue <- task:
		case <-shutdown:
			return
		case <-ctx.Done():
			return
		}
	}
}

// logQueueLevel emits a throttled QueueLevel event, at most once per
// QueueLogInterval (spec §4.4).
func (f *Fetcher) logQueueLevel() {
	if time.Since(f.lastQueueLog) < QueueLogInterval {
		return
	}
	f.lastQueueLog = time.Now()
	metrics.QueueDepth.Set(float64(len(f.queue)))
	select {
	case f.events <- domain.Event{Kind: domain.EventQueueLevel, At: time.Now(), QueueLen: len(f.queue), QueueCap: cap(f.queue)}:
	default:
		log.Printf("[fetcher] queue_level=%d/%d (event queue full, dropped)", len(f.queue), cap(f.queue))
	}
}

func (f *Fetcher) emit(e domain.Event, shutdown <-chan struct{}) {
	e.At = time.Now()
	select {
	case f.events <- e:
	case <-shutdown:
	}
}
