// Package prover wraps the opaque zero-knowledge prover library behind a
// small capability interface (spec §1: the real ZK backend is out of
// scope — treated as an opaque Prove(program, input) → Proof operation).
//
// Grounded on internal/daemon/daemon.go's real/mock backend fallback
// (NewSubprocessBackend vs NewMockBackend: "wrap an external binary behind
// an interface, fall back to a reference implementation when it's
// unavailable") and on other_examples/Abdullah1738-juno-intents__prover.go's
// Prover capability-interface shape.
package prover

import (
	"encoding/binary"
	"fmt"

	"github.com/tutu-network/proverd/internal/domain"
)

// GuestRunner executes a guest program against a decoded input buffer and
// reports the guest's exit code. The real implementation shells out to (or
// links) the zero-knowledge prover; this package ships a reference runner
// that computes the same arithmetic directly so the pipeline is testable
// without a real ZK backend.
type GuestRunner interface {
	// Run executes program against input (already validated/decoded by the
	// caller) and returns the guest's reported exit code plus its raw
	// output bytes.
	Run(program domain.Program, input []byte) (exitCode int, output []byte, err error)
}

// Prover drives the pipeline's two proving operations over an injected
// GuestRunner.
type Prover struct {
	runner GuestRunner
}

// New creates a Prover over the given GuestRunner.
func New(runner GuestRunner) *Prover {
	return &Prover{runner: runner}
}

// anonFixedInput is the fixed (n, a, b) = (9, 1, 1) input anonymous mode
// always proves against (spec §4.3).
var anonFixedInput = domain.EncodeFibInitial(domain.FibInitialInput{N: 9, A: 1, B: 1})

// ProveAnonymous binds guest program fib_input_initial to the fixed input
// (9, 1, 1) and proves it, with no task or coordinator involved.
func (p *Prover) ProveAnonymous() (domain.Proof, error) {
	return p.run(domain.ProgramFibInitial, anonFixedInput)
}

// ProveAuthenticated selects the guest program from task.Program, decodes
// task.PublicInputs per spec §3, runs the prover, and verifies the guest
// exit code indicates success (0). Any guest non-zero exit is reported as
// a *domain.GuestFailure.
func (p *Prover) ProveAuthenticated(task domain.Task) (domain.Proof, error) {
	switch task.Program {
	case domain.ProgramFastFib:
		if _, err := domain.DecodeFastFib(task.PublicInputs); err != nil {
			return domain.Proof{}, err
		}
	case domain.ProgramFibInitial:
		if _, err := domain.DecodeFibInitial(task.PublicInputs); err != nil {
			return domain.Proof{}, err
		}
	default:
		return domain.Proof{}, fmt.Errorf("%w: %q", domain.ErrUnknownProgram, task.Program)
	}
	return p.run(task.Program, task.PublicInputs)
}

func (p *Prover) run(program domain.Program, input []byte) (domain.Proof, error) {
	code, output, err := p.runner.Run(program, input)
	if err != nil {
		return domain.Proof{}, fmt.Errorf("%w: %v", domain.ErrInternalProver, err)
	}
	if code != 0 {
		return domain.Proof{}, domain.NewGuestFailure(code)
	}
	return domain.Proof{Program: program, Output: output}, nil
}

// ReferenceRunner is the bundled GuestRunner: it computes the guest
// programs' arithmetic directly instead of running a real RISC-V
// zero-knowledge guest, so the pipeline can be exercised end to end without
// the (out-of-scope) prover library.
type ReferenceRunner struct{}

// NewReferenceRunner constructs the bundled runner.
func NewReferenceRunner() *ReferenceRunner { return &ReferenceRunner{} }

// Run implements GuestRunner.
func (ReferenceRunner) Run(program domain.Program, input []byte) (int, []byte, error) {
	switch program {
	case domain.ProgramFastFib:
		n, err := domain.DecodeFastFib(input)
		if err != nil {
			return 0, nil, err
		}
		result := computeFastFib(n)
		out := make([]byte, 8)
		binary.LittleEndian.PutUint64(out, result)
		return 0, out, nil
	case domain.ProgramFibInitial:
		in, err := domain.DecodeFibInitial(input)
		if err != nil {
			return 0, nil, err
		}
		result := computeFibInitial(in.N, in.A, in.B)
		out := make([]byte, 8)
		binary.LittleEndian.PutUint64(out, result)
		return 0, out, nil
	default:
		return 0, nil, fmt.Errorf("%w: %q", domain.ErrUnknownProgram, program)
	}
}
