// Package runtime wires the fetcher, dispatcher, worker pool, and
// submitter into the two entry points the embedder calls (spec §4.8):
// StartAuthenticated and StartAnonymous. It exclusively owns the channels,
// the shutdown broadcast, and the task cache (spec §3 Ownership).
//
// Grounded on the teacher's daemon.Daemon.Serve signal-channel-then-
// context-cancel shutdown sequence, generalized from OS-signal-triggered
// shutdown to an embedder-supplied <-chan struct{}. The event stream has
// no direct teacher analogue; it follows the corpus-wide "one chan per
// concern, closed on shutdown" idiom used for gossip/health, generalized
// into a single tagged-union event bus (compare domain.Event).
package runtime

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tutu-network/proverd/internal/cache"
	"github.com/tutu-network/proverd/internal/dispatcher"
	"github.com/tutu-network/proverd/internal/domain"
	"github.com/tutu-network/proverd/internal/fetcher"
	"github.com/tutu-network/proverd/internal/geoip"
	"github.com/tutu-network/proverd/internal/orchestrator"
	"github.com/tutu-network/proverd/internal/prover"
	"github.com/tutu-network/proverd/internal/security"
	"github.com/tutu-network/proverd/internal/submitter"
	"github.com/tutu-network/proverd/internal/telemetry"
	"github.com/tutu-network/proverd/internal/workerpool"
)

// Channel sizing constants (spec §5).
const (
	TaskQueueSize     = 100
	WorkerInboxSize   = 8
	ResultQueueSize   = 50
	EventQueueSize    = 100
	MaxCompletedTasks = 500
)

// Cache retention windows. Not named in spec §5's constant table (which
// covers queue/backoff sizing only); chosen so the fetch-side dedup cache
// comfortably outlives one LOW_WATER_MARK refill cycle and the success
// cache comfortably outlives a submit retry budget's worth of backoff.
const (
	fetchCacheTTL   = 5 * time.Minute
	successCacheTTL = 24 * time.Hour
)

// EventStream is what both entry points return: a single channel
// multiplexing fetcher, worker, and submitter events, drained by the
// embedder until it is closed.
type EventStream <-chan domain.Event

// StartAuthenticated wires the full pipeline: Fetcher -> TaskQueue ->
// Dispatcher -> WorkerInbox[i] -> Worker[i] -> ResultQueue -> Submitter ->
// Orchestrator. numWorkers is clamped per spec §4.6/§8. geoDBPath selects
// the telemetry country-lookup strategy (spec §6/§9): a local GeoLite2
// database when set, the networked lookup provider when empty. Everything
// spawned here exits once shutdown is closed; the returned EventStream is
// closed only after every spawned goroutine has exited, so a
// drain-to-completion read never blocks forever.
func StartAuthenticated(identity *security.NodeIdentity, orch orchestrator.Client, numWorkers int, geoDBPath string, shutdown <-chan struct{}) (EventStream, error) {
	numWorkers = workerpool.ClampWorkerCount(numWorkers)

	country, err := geoip.Resolve(context.Background(), geoDBPath)
	if err != nil {
		return nil, fmt.Errorf("resolve country provider: %w", err)
	}

	taskQueue := make(chan domain.Task, TaskQueueSize)
	resultQueue := make(chan workerpool.Result, ResultQueueSize)
	events := make(chan domain.Event, EventQueueSize)

	fetchCache := cache.New(fetchCacheTTL, TaskQueueSize*2)
	successCache := cache.New(successCacheTTL, MaxCompletedTasks)

	inboxes := make([]chan domain.Task, numWorkers)
	for i := range inboxes {
		inboxes[i] = make(chan domain.Task, WorkerInboxSize)
	}

	f := fetcher.New(orch, fetchCache, identity, taskQueue, events)
	d := dispatcher.New(taskQueue, inboxes)
	p := prover.New(prover.NewReferenceRunner())
	sampler := telemetry.New(country, numWorkers)
	sub := submitter.New(orch, successCache, identity, sampler, resultQueue, events)

	ctx, cancel := context.WithCancel(context.Background())

	var wg sync.WaitGroup
	wg.Add(3)
	go func() { defer wg.Done(); f.Run(ctx, shutdown) }()
	go func() { defer wg.Done(); d.Run(shutdown) }()
	go func() { defer wg.Done(); sub.Run(ctx, shutdown) }()

	var workersWG sync.WaitGroup
	workerpool.StartAuthenticated(p, inboxes, resultQueue, events, shutdown, &workersWG)

	go func() {
		<-shutdown
		cancel()
	}()

	go func() {
		wg.Wait()
		workersWG.Wait()
		if closer, ok := country.(interface{ Close() error }); ok {
			closer.Close()
		}
		close(events)
	}()

	return events, nil
}

// StartAnonymous wires the collapsed anonymous pipeline: Timer ->
// Worker[i] -> EventBus, with no coordinator, no queue, and no submission.
func StartAnonymous(numWorkers int, shutdown <-chan struct{}) EventStream {
	numWorkers = workerpool.ClampWorkerCount(numWorkers)
	events := make(chan domain.Event, EventQueueSize)

	p := prover.New(prover.NewReferenceRunner())
	var wg sync.WaitGroup
	workerpool.StartAnonymous(p, numWorkers, events, shutdown, &wg)

	go func() {
		wg.Wait()
		close(events)
	}()

	return events
}
