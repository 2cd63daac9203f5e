package domain

import (
	"bytes"
	"encoding/gob"
	"fmt"
)

// Proof is the opaque artifact a Prover produces. The pipeline never
// interprets its contents; it only serializes, hashes, and signs it.
type Proof struct {
	Program Program
	Output  []byte
}

// Serialize encodes the proof deterministically. Serialization for a
// well-formed Proof must never fail — a failure here means the producer
// built an invalid Proof, which is surfaced as a typed error rather than
// panicking.
func (p Proof) Serialize() ([]byte, error) {
	if !p.Program.IsValid() {
		return nil, fmt.Errorf("%w: unknown program %q", ErrSerializeFailed, p.Program)
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerializeFailed, err)
	}
	return buf.Bytes(), nil
}

// DeserializeProof is the inverse of Proof.Serialize.
func DeserializeProof(data []byte) (Proof, error) {
	var p Proof
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&p); err != nil {
		return Proof{}, fmt.Errorf("%w: %v", ErrSerializeFailed, err)
	}
	return p, nil
}
