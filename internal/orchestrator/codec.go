// Wire codec: length-prefixed protocol-buffer messages (spec §6). Rather
// than hand-maintaining generated *.pb.go files for a handful of small
// messages, the field-level encoding is built directly on
// google.golang.org/protobuf/encoding/protowire — the same low-level
// primitives protoc-generated marshal code itself calls — which keeps wire
// compatibility with a real .proto schema without requiring the protoc
// toolchain to be run as part of this build.
package orchestrator

import (
	"encoding/binary"
	"fmt"
	"io"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/tutu-network/proverd/internal/domain"
)

// Field numbers of the Task and ProofSubmission messages. These constants
// are the schema; no .proto files are checked in, since nothing in this
// tree runs protoc.
const (
	taskFieldID           = 1
	taskFieldProgram      = 2
	taskFieldPublicInputs = 3

	submissionFieldTaskID     = 1
	submissionFieldProofHash  = 2
	submissionFieldProofBytes = 3
	submissionFieldSignature  = 4
	submissionFieldPublicKey  = 5
	submissionFieldTelFlops   = 6
	submissionFieldTelMemUsed = 7
	submissionFieldTelMemCap  = 8
	submissionFieldTelLoc     = 9
)

func encodeTask(t domain.Task) []byte {
	var b []byte
	b = protowire.AppendTag(b, taskFieldID, protowire.BytesType)
	b = protowire.AppendString(b, t.ID)
	b = protowire.AppendTag(b, taskFieldProgram, protowire.BytesType)
	b = protowire.AppendString(b, string(t.Program))
	b = protowire.AppendTag(b, taskFieldPublicInputs, protowire.BytesType)
	b = protowire.AppendBytes(b, t.PublicInputs)
	return b
}

func decodeTask(data []byte) (domain.Task, error) {
	var t domain.Task
	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return domain.Task{}, fmt.Errorf("decode task: bad tag: %w", protowire.ParseError(n))
		}
		data = data[n:]
		switch {
		case num == taskFieldID && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(data)
			if n < 0 {
				return domain.Task{}, fmt.Errorf("decode task.id: %w", protowire.ParseError(n))
			}
			t.ID = v
			data = data[n:]
		case num == taskFieldProgram && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(data)
			if n < 0 {
				return domain.Task{}, fmt.Errorf("decode task.program: %w", protowire.ParseError(n))
			}
			t.Program = domain.Program(v)
			data = data[n:]
		case num == taskFieldPublicInputs && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(data)
			if n < 0 {
				return domain.Task{}, fmt.Errorf("decode task.public_inputs: %w", protowire.ParseError(n))
			}
			t.PublicInputs = append([]byte(nil), v...)
			data = data[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, data)
			if n < 0 {
				return domain.Task{}, fmt.Errorf("decode task: skip unknown field: %w", protowire.ParseError(n))
			}
			data = data[n:]
		}
	}
	return t, nil
}

func encodeSubmission(s domain.ProofSubmission) []byte {
	var b []byte
	b = protowire.AppendTag(b, submissionFieldTaskID, protowire.BytesType)
	b = protowire.AppendString(b, s.TaskID)
	b = protowire.AppendTag(b, submissionFieldProofHash, protowire.BytesType)
	b = protowire.AppendString(b, s.ProofHash)
	b = protowire.AppendTag(b, submissionFieldProofBytes, protowire.BytesType)
	b = protowire.AppendBytes(b, s.ProofBytes)
	b = protowire.AppendTag(b, submissionFieldSignature, protowire.BytesType)
	b = protowire.AppendBytes(b, s.Signature)
	b = protowire.AppendTag(b, submissionFieldPublicKey, protowire.BytesType)
	b = protowire.AppendBytes(b, s.PublicKey)
	b = protowire.AppendTag(b, submissionFieldTelFlops, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(s.Telemetry.FlopsPerSec))
	b = protowire.AppendTag(b, submissionFieldTelMemUsed, protowire.VarintType)
	b = protowire.AppendVarint(b, s.Telemetry.MemoryUsed)
	b = protowire.AppendTag(b, submissionFieldTelMemCap, protowire.VarintType)
	b = protowire.AppendVarint(b, s.Telemetry.MemoryCapacity)
	b = protowire.AppendTag(b, submissionFieldTelLoc, protowire.BytesType)
	b = protowire.AppendString(b, s.Telemetry.Location)
	return b
}

// writeLengthPrefixed writes a 4-byte big-endian length prefix followed by
// payload, matching spec §6's "length-prefixed protocol-buffer messages".
func writeLengthPrefixed(w io.Writer, payload []byte) error {
	var lenBuf [4]byte
	binary.BigEndian.PutUint32(lenBuf[:], uint32(len(payload)))
	if _, err := w.Write(lenBuf[:]); err != nil {
		return err
	}
	_, err := w.Write(payload)
	return err
}

// readLengthPrefixed reads one length-prefixed message, bounded by maxSize
// to avoid an unbounded allocation from a hostile or corrupt response.
func readLengthPrefixed(r io.Reader, maxSize int) ([]byte, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	size := binary.BigEndian.Uint32(lenBuf[:])
	if int(size) > maxSize {
		return nil, fmt.Errorf("length-prefixed message too large: %d bytes", size)
	}
	buf := make([]byte, size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

const maxMessageSize = 16 * 1024 * 1024
