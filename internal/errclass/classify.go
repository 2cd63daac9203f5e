// Package errclass implements the pipeline's error taxonomy: a pure mapping
// from a failure value to a severity class and a backoff hint, feeding both
// the log level and the fetcher/submitter's shared backoff policy.
//
// Grounded on the teacher's internal/infra/scheduler/retry_queue.go
// exponential-backoff loop (doubling with a cap) and its
// BackPressureLevel enum/String() pattern.
package errclass

import (
	"errors"
	"log"
	"time"

	"github.com/tutu-network/proverd/internal/domain"
)

// Severity is the outcome of classifying a failure.
type Severity int

const (
	SeverityFatal Severity = iota
	SeverityRetryRateLimited
	SeverityRetryNetwork
	SeverityRetryServer5xx
	SeverityRetryEmpty404
	SeverityNonRetryable
)

// String returns a human-readable severity label.
func (s Severity) String() string {
	switch s {
	case SeverityFatal:
		return "fatal"
	case SeverityRetryRateLimited:
		return "retry(rate_limited)"
	case SeverityRetryNetwork:
		return "retry(network)"
	case SeverityRetryServer5xx:
		return "retry(server_5xx)"
	case SeverityRetryEmpty404:
		return "retry(empty_404)"
	case SeverityNonRetryable:
		return "non_retryable"
	default:
		return "unknown"
	}
}

// LogLevel returns the log level this severity should be emitted at.
func (s Severity) LogLevel() string {
	switch s {
	case SeverityFatal:
		return "error"
	case SeverityNonRetryable:
		return "info"
	default:
		return "warn"
	}
}

// IsRetryable reports whether the classified failure should be retried
// under backoff.
func (s Severity) IsRetryable() bool {
	switch s {
	case SeverityRetryRateLimited, SeverityRetryNetwork, SeverityRetryServer5xx, SeverityRetryEmpty404:
		return true
	}
	return false
}

// Classify maps an error (or HTTP status code via HTTPStatus) to a
// Severity.
func Classify(err error) Severity {
	switch {
	case err == nil:
		return SeverityNonRetryable
	case errors.Is(err, domain.ErrRateLimited):
		return SeverityRetryRateLimited
	case errors.Is(err, domain.ErrServer5xx):
		return SeverityRetryServer5xx
	case errors.Is(err, domain.ErrEmpty404):
		return SeverityRetryEmpty404
	case errors.Is(err, domain.ErrNetwork):
		return SeverityRetryNetwork
	case errors.Is(err, domain.ErrNonRetryable4xx):
		return SeverityNonRetryable
	default:
		return SeverityNonRetryable
	}
}

// HTTPStatus classifies an HTTP status code per spec §6's status table.
func HTTPStatus(code int) Severity {
	switch {
	case code == 200 || code == 204:
		return SeverityNonRetryable // success is not an error path
	case code == 404:
		return SeverityRetryEmpty404
	case code == 429:
		return SeverityRetryRateLimited
	case code >= 500:
		return SeverityRetryServer5xx
	case code >= 400:
		return SeverityNonRetryable
	default:
		return SeverityNonRetryable
	}
}

// Backoff constants (spec §5).
const (
	MinBackoff = 30 * time.Second
	MaxBackoff = 60 * time.Second
	Max404sBeforeGivingUp = 3
)

// BackoffPolicy tracks the adaptive inter-request delay shared by the
// fetcher and the submitter's retry helper.
type BackoffPolicy struct {
	Duration     time.Duration
	Consecutive404s int
}

// NewBackoffPolicy returns a policy starting at MinBackoff.
func NewBackoffPolicy() *BackoffPolicy {
	return &BackoffPolicy{Duration: MinBackoff}
}

// OnSuccess resets backoff and the 404 counter (spec §4.2: "success resets
// backoff and the counter").
func (b *BackoffPolicy) OnSuccess() {
	b.Duration = MinBackoff
	b.Consecutive404s = 0
}

// OnFailure applies the backoff adjustment for the classified severity and
// returns it for logging. Empty404 increments the counter and, after
// Max404sBeforeGivingUp consecutive occurrences, pauses at MaxBackoff and
// resets the counter (spec §4.2).
func (b *BackoffPolicy) OnFailure(sev Severity) time.Duration {
	switch sev {
	case SeverityRetryRateLimited, SeverityRetryNetwork, SeverityRetryServer5xx:
		b.Duration *= 2
		if b.Duration > MaxBackoff {
			b.Duration = MaxBackoff
		}
		b.Consecutive404s = 0
	case SeverityRetryEmpty404:
		b.Consecutive404s++
		if b.Consecutive404s >= Max404sBeforeGivingUp {
			b.Duration = MaxBackoff
			b.Consecutive404s = 0
		}
	default:
		// Fatal/NonRetryable do not adjust backoff.
	}
	return b.Duration
}

// ErrorKind returns the stable event-payload label for err, matching the
// error-kind names used in the event stream and in SubmitError/ProofError
// payloads (spec §7).
func ErrorKind(err error) string {
	var guestFailure *domain.GuestFailure
	switch {
	case err == nil:
		return ""
	case errors.As(err, &guestFailure):
		return "guest_failure"
	case errors.Is(err, domain.ErrMalformedTask):
		return "malformed_task"
	case errors.Is(err, domain.ErrUnknownProgram):
		return "unknown_program"
	case errors.Is(err, domain.ErrInternalProver):
		return "internal_prover"
	case errors.Is(err, domain.ErrSerializeFailed):
		return "serialize_failed"
	case errors.Is(err, domain.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, domain.ErrServer5xx):
		return "server_5xx"
	case errors.Is(err, domain.ErrEmpty404):
		return "empty_404"
	case errors.Is(err, domain.ErrNetwork):
		return "network"
	case errors.Is(err, domain.ErrNonRetryable4xx):
		return "non_retryable_4xx"
	default:
		return "unknown"
	}
}

// LogClassified writes a single tagged log line for a classified failure,
// matching the bracketed-component convention used throughout the teacher.
func LogClassified(tag string, err error, sev Severity) {
	log.Printf("[%s] %s: %v", tag, sev, err)
}
