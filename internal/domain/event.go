package domain

import "time"

// EventKind tags an Event's payload. Go has no tagged-union sum type, so the
// pipeline follows the same convention as TaskStatus/PeerState in the
// teacher: a string-enum discriminant plus per-kind fields left zero when
// unused.
type EventKind string

const (
	EventFetcherBackoff EventKind = "FETCHER_BACKOFF"
	EventQueueLevel     EventKind = "QUEUE_LEVEL"
	EventProofComputed  EventKind = "PROOF_COMPUTED"
	EventProofAccepted  EventKind = "PROOF_ACCEPTED"
	EventProofError     EventKind = "PROOF_ERROR"
	EventSubmitError    EventKind = "SUBMIT_ERROR"
	EventStats          EventKind = "STATS"
	EventShutdown       EventKind = "SHUTDOWN"
)

// Event is the single type flowing through the runtime's event bus.
type Event struct {
	Kind EventKind
	At   time.Time

	// EventFetcherBackoff
	BackoffReason   string
	BackoffDuration time.Duration

	// EventQueueLevel
	QueueLen int
	QueueCap int

	// EventProofComputed
	WorkerID int
	TaskID   string
	Elapsed  time.Duration

	// EventProofError / EventSubmitError
	ErrorKind string

	// EventStats
	Accepted   int64
	RatePerMin float64
}
