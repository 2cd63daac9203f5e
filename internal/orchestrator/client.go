// Package orchestrator is the external contract for the remote coordinator
// (spec §6): fetching tasks, submitting proofs, and node/user registration.
// Client is a capability interface — production wires HTTPClient, tests
// wire an in-memory mock (spec §9: "no reflection, no runtime type
// introspection").
//
// Grounded on internal/infra/network/fabric.go's FabricConfig/endpoint
// selection and register()/heartbeat stub shape.
package orchestrator

import (
	"context"

	"github.com/tutu-network/proverd/internal/domain"
)

// Environment selects a coordinator deployment.
type Environment string

const (
	EnvLocal      Environment = "local"
	EnvBeta       Environment = "beta"
	EnvProduction Environment = "production"
)

// BaseURL resolves an Environment to its base URL. The core itself is
// environment-agnostic — it only ever sees a resolved base URL (spec §6).
func BaseURL(env Environment) string {
	switch env {
	case EnvLocal:
		return "http://127.0.0.1:8080"
	case EnvBeta:
		return "https://beta.orchestrator.example.com"
	case EnvProduction:
		return "https://orchestrator.example.com"
	default:
		return "https://orchestrator.example.com"
	}
}

// NodeRegistration is the record submitted to POST /v3/nodes.
type NodeRegistration struct {
	VerifyingKey []byte
	Region       string
}

// Client is the orchestrator's request/response surface.
type Client interface {
	// FetchTasks requests up to batchSize tasks via GET /v3/tasks.
	FetchTasks(ctx context.Context, nodeID string, verifyingKey []byte, batchSize int) ([]domain.Task, error)

	// SubmitProof posts a ProofSubmission to /v3/tasks/submit.
	SubmitProof(ctx context.Context, submission domain.ProofSubmission) error

	// RegisterNode posts a registration record to /v3/nodes and returns the
	// assigned node id.
	RegisterNode(ctx context.Context, record NodeRegistration) (nodeID string, err error)
}
