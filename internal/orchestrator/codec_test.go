package orchestrator

import (
	"bytes"
	"testing"

	"github.com/tutu-network/proverd/internal/domain"
)

func TestTaskCodecRoundTrip(t *testing.T) {
	want := domain.Task{
		ID:           "T1",
		Program:      domain.ProgramFibInitial,
		PublicInputs: domain.EncodeFibInitial(domain.FibInitialInput{N: 9, A: 1, B: 1}),
	}
	got, err := decodeTask(encodeTask(want))
	if err != nil {
		t.Fatalf("decodeTask: %v", err)
	}
	if got.ID != want.ID || got.Program != want.Program || !bytes.Equal(got.PublicInputs, want.PublicInputs) {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, want)
	}
}

func TestLengthPrefixedFraming(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte("hello world")
	if err := writeLengthPrefixed(&buf, payload); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := readLengthPrefixed(&buf, maxMessageSize)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("got %q, want %q", got, payload)
	}
}

func TestSubmissionCodec(t *testing.T) {
	s := domain.ProofSubmission{
		TaskID:     "T1",
		ProofHash:  "deadbeef",
		ProofBytes: []byte{1, 2, 3},
		Signature:  []byte{4, 5, 6},
		PublicKey:  []byte{7, 8, 9},
		Telemetry: domain.Telemetry{
			FlopsPerSec:    1000,
			MemoryUsed:     2048,
			MemoryCapacity: 4096,
			Location:       "US",
		},
	}
	encoded := encodeSubmission(s)
	if len(encoded) == 0 {
		t.Fatalf("expected non-empty encoding")
	}
}
