// Package workerpool implements the offline worker pool (spec §4.6): a
// fixed number of CPU-bound proving workers, either inbox-driven
// (authenticated mode) or timer-driven against a fixed input (anonymous
// mode).
//
// Grounded on the teacher's engine.Pool worker lifecycle conventions
// ("N goroutines, each owning its receive end, clean shutdown") and on
// other_examples/EBal0vGG-worker-pool__types.go and
// other_examples/Consensys-gkr-mimc__worker.go for the CPU-bound
// worker/job-channel idiom.
package workerpool

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tutu-network/proverd/internal/domain"
	"github.com/tutu-network/proverd/internal/errclass"
	"github.com/tutu-network/proverd/internal/metrics"
	"github.com/tutu-network/proverd/internal/prover"
)

// Boundary constants (spec §5, §8).
const (
	MinWorkers   = 1
	MaxWorkers   = 8
	AnonInterval = 300 * time.Millisecond
)

// ClampWorkerCount enforces 1 ≤ n ≤ 8, warning when a caller-supplied count
// falls outside the range (spec §4.6, §8).
func ClampWorkerCount(n int) int {
	if n < MinWorkers {
		log.Printf("[workerpool] num_workers=%d below minimum, clamped to %d", n, MinWorkers)
		return MinWorkers
	}
	if n > MaxWorkers {
		log.Printf("[workerpool] num_workers=%d above maximum, clamped to %d", n, MaxWorkers)
		return MaxWorkers
	}
	return n
}

// Result pairs a completed proof with the task it answers, ready for the
// submitter.
type Result struct {
	Task  domain.Task
	Proof domain.Proof
}

// StartAuthenticated spawns one worker per inbox. Each worker consumes its
// own inbox exclusively (spec §3 Ownership) until it closes or shutdown
// fires, wg.Done is called on exit so the runtime can await full drain.
func StartAuthenticated(p *prover.Prover, inboxes []chan domain.Task, results chan<- Result, events chan<- domain.Event, shutdown <-chan struct{}, wg *sync.WaitGroup) {
	metrics.WorkersActive.Set(float64(len(inboxes)))
	for id, inbox := range inboxes {
		wg.Add(1)
		go authenticatedWorker(id, p, inbox, results, events, shutdown, wg)
	}
}

func authenticatedWorker(id int, p *prover.Prover, inbox <-chan domain.Task, results chan<- Result, events chan<- domain.Event, shutdown <-chan struct{}, wg *sync.WaitGroup) {
	defer wg.Done()
	tag := fmt.Sprintf("worker-%d", id)
	for {
		select {
		case <-shutdown:
			return
		case task, ok := <-inbox:
			if !ok {
				return
			}
			start := time.Now()
			proof, err := p.ProveAuthenticated(task)
			metrics.ProofLatency.Observe(time.Since(start).Seconds())
			if err != nil {
				sev := errclass.Classify(err)
				errclass.LogClassified(tag, err, sev)
				metrics.ProofsComputed.WithLabelValues("error").Inc()
				metrics.ProofErrorsByKind.WithLabelValues(errclass.ErrorKind(err)).Inc()
				emit(events, domain.Event{Kind: domain.EventProofError, WorkerID: id, TaskID: task.ID, ErrorKind: errclass.ErrorKind(err)}, shutdown)
				continue
			}
			metrics.ProofsComputed.WithLabelValues("ok").Inc()
			emit(events, domain.Event{Kind: domain.EventProofComputed, WorkerID: id, TaskID: task.ID, Elapsed: time.Since(start)}, shutdown)
			select {
			case results <- Result{Task: task, Proof: proof}:
			case <-shutdown:
				return
			}
		}
	}
}

// StartAnonymous spawns numWorkers timer-driven workers, each proving the
// fixed anonymous input on a fixed cadence with no inbox and no submission
// (spec §4.6 "Anonymous mode variant").
func StartAnonymous(p *prover.Prover, numWorkers int, events chan<- domain.Event, shutdown <-chan struct{}, wg *sync.WaitGroup) {
	for id := 0; id < numWorkers; id++ {
		wg.Add(1)
		go anonymousWorker(id, p, events, shutdown, wg)
	}
}

func anonymousWorker(id int, p *prover.Prover, events chan<- domain.Event, shutdown <-chan struct{}, wg *sync.WaitGroup) {
	defer wg.Done()
	tag := fmt.Sprintf("worker-%d", id)
	ticker := time.NewTicker(AnonInterval)
	defer ticker.Stop()
	for {
		select {
		case <-shutdown:
			return
		case <-ticker.C:
			// Anonymous mode has no task_id; a locally generated correlation
			// id lets the embedder tell successive proofs in the event
			// stream apart without involving a coordinator.
			correlationID := uuid.NewString()
			start := time.Now()
			_, err := p.ProveAnonymous()
			if err != nil {
				sev := errclass.Classify(err)
				errclass.LogClassified(tag, err, sev)
				emit(events, domain.Event{Kind: domain.EventProofError, WorkerID: id, TaskID: correlationID, ErrorKind: errclass.ErrorKind(err)}, shutdown)
				continue
			}
			emit(events, domain.Event{Kind: domain.EventProofComputed, WorkerID: id, TaskID: correlationID, Elapsed: time.Since(start)}, shutdown)
		}
	}
}

func emit(events chan<- domain.Event, e domain.Event, shutdown <-chan struct{}) {
	e.At = time.Now()
	select {
	case events <- e:
	case <-shutdown:
	}
}
