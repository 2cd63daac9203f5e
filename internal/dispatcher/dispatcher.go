// Package dispatcher fans a shared task queue out to per-worker inboxes in
// strict round-robin order (spec §4.5).
//
// Grounded on internal/infra/scheduler/scheduler.go's Enqueue/Dequeue
// dispatch shape (a single mutex-guarded loop moving items between
// bounded queues), simplified to the spec's required single round-robin
// counter — the teacher's weighted/priority scheduling is out of scope
// here and is not carried forward as behavior, only as the "bounded
// queue with explicit backpressure" idiom.
package dispatcher

import "github.com/tutu-network/proverd/internal/domain"

// Dispatcher reads from queue and writes to inboxes round-robin.
type Dispatcher struct {
	queue   <-chan domain.Task
	inboxes []chan domain.Task
}

// New builds a Dispatcher over the given worker inboxes, in worker-id order.
func New(queue <-chan domain.Task, inboxes []chan domain.Task) *Dispatcher {
	return &Dispatcher{queue: queue, inboxes: inboxes}
}

// Run drains queue into inboxes until shutdown is closed or queue itself is
// closed. On exit it closes every inbox so workers can observe shutdown via
// a closed receive rather than needing to also select on shutdown.
func (d *Dispatcher) Run(shutdown <-chan struct{}) {
	defer d.closeInboxes()

	next := 0
	for {
		select {
		case <-shutdown:
			return
		case task, ok := <-d.queue:
			if !ok {
				return
			}
			inbox := d.inboxes[next]
			select {
			case inbox <- task:
			case <-shutdown:
				return
			}
			next = (next + 1) % len(d.inboxes)
		}
	}
}

func (d *Dispatcher) closeInboxes() {
	for _, inbox := range d.inboxes {
		close(inbox)
	}
}
