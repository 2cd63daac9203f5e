package domain

// Telemetry is best-effort node status attached to a proof submission.
// Any field may be its zero value if the measurement failed.
type Telemetry struct {
	FlopsPerSec     int64
	MemoryUsed      uint64
	MemoryCapacity  uint64
	Location        string // ISO-3166-1 alpha-2, defaults to "US"
}

// ProofSubmission is what the submitter sends to the orchestrator.
type ProofSubmission struct {
	TaskID      string
	ProofHash   string // hex-encoded Keccak-256 over ProofBytes
	ProofBytes  []byte
	Signature   []byte
	PublicKey   []byte
	Telemetry   Telemetry
}

// SignaturePayload builds the exact ASCII message signed for a submission:
// "0 | {task_id} | {proof_hash}", signature version 0.
func SignaturePayload(taskID, proofHash string) []byte {
	return []byte("0 | " + taskID + " | " + proofHash)
}
