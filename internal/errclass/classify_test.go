package errclass

import (
	"fmt"
	"testing"
	"time"

	"github.com/tutu-network/proverd/internal/domain"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		err  error
		want Severity
	}{
		{domain.ErrRateLimited, SeverityRetryRateLimited},
		{domain.ErrServer5xx, SeverityRetryServer5xx},
		{domain.ErrEmpty404, SeverityRetryEmpty404},
		{domain.ErrNetwork, SeverityRetryNetwork},
		{domain.ErrNonRetryable4xx, SeverityNonRetryable},
		{fmt.Errorf("wrapped: %w", domain.ErrRateLimited), SeverityRetryRateLimited},
	}
	for _, c := range cases {
		if got := Classify(c.err); got != c.want {
			t.Errorf("Classify(%v) = %v, want %v", c.err, got, c.want)
		}
	}
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		code int
		want Severity
	}{
		{200, SeverityNonRetryable},
		{204, SeverityNonRetryable},
		{404, SeverityRetryEmpty404},
		{429, SeverityRetryRateLimited},
		{500, SeverityRetryServer5xx},
		{503, SeverityRetryServer5xx},
		{400, SeverityNonRetryable},
	}
	for _, c := range cases {
		if got := HTTPStatus(c.code); got != c.want {
			t.Errorf("HTTPStatus(%d) = %v, want %v", c.code, got, c.want)
		}
	}
}

func TestBackoffPolicy_RateLimitedDoublesWithCap(t *testing.T) {
	b := NewBackoffPolicy()
	want := []time.Duration{2 * MinBackoff, MaxBackoff, MaxBackoff, MaxBackoff}
	for i, w := range want {
		got := b.OnFailure(SeverityRetryRateLimited)
		if got != w {
			t.Fatalf("step %d: backoff = %v, want %v", i, got, w)
		}
	}
}

func TestBackoffPolicy_OnSuccessResets(t *testing.T) {
	b := NewBackoffPolicy()
	b.OnFailure(SeverityRetryRateLimited)
	b.OnFailure(SeverityRetryRateLimited)
	b.OnSuccess()
	if b.Duration != MinBackoff {
		t.Errorf("Duration after OnSuccess = %v, want %v", b.Duration, MinBackoff)
	}
	if b.Consecutive404s != 0 {
		t.Errorf("Consecutive404s after OnSuccess = %d, want 0", b.Consecutive404s)
	}
}

func TestBackoffPolicy_Empty404GivesUpAtMaxBackoff(t *testing.T) {
	b := NewBackoffPolicy()
	var last time.Duration
	for i := 0; i < Max404sBeforeGivingUp; i++ {
		last = b.OnFailure(SeverityRetryEmpty404)
	}
	if last != MaxBackoff {
		t.Fatalf("backoff after %d consecutive 404s = %v, want %v", Max404sBeforeGivingUp, last, MaxBackoff)
	}
	if b.Consecutive404s != 0 {
		t.Errorf("Consecutive404s should reset to 0 after giving up, got %d", b.Consecutive404s)
	}
}

func TestErrorKind(t *testing.T) {
	if got := ErrorKind(domain.ErrMalformedTask); got != "malformed_task" {
		t.Errorf("ErrorKind(ErrMalformedTask) = %q", got)
	}
	if got := ErrorKind(domain.NewGuestFailure(7)); got != "guest_failure" {
		t.Errorf("ErrorKind(GuestFailure) = %q", got)
	}
}
