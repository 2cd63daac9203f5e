package orchestrator

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/tutu-network/proverd/internal/domain"
)

// MockClient is an in-memory Client for tests: production wires HTTPClient,
// tests wire MockClient (spec §9).
type MockClient struct {
	mu sync.Mutex

	// Batches is consumed front-to-back: each FetchTasks call pops the next
	// entry. A nil or empty entry, or a call past the end, simulates an
	// empty-404 response. A non-nil FetchErrs entry at the same index
	// simulates a transport/status failure instead.
	Batches    [][]domain.Task
	FetchErrs  []error
	fetchIndex int

	Submissions  []domain.ProofSubmission
	SubmitErr    error
	SubmitErrN   int // fail the first N submit calls, then succeed
	submitCalls  int

	RegisteredNodeID string
	RegisterErr      error
}

// NewMockClient creates an empty mock.
func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) FetchTasks(ctx context.Context, nodeID string, verifyingKey []byte, batchSize int) ([]domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.fetchIndex < len(m.FetchErrs) && m.FetchErrs[m.fetchIndex] != nil {
		err := m.FetchErrs[m.fetchIndex]
		m.fetchIndex++
		return nil, err
	}

	var batch []domain.Task
	if m.fetchIndex < len(m.Batches) {
		batch = m.Batches[m.fetchIndex]
	}
	m.fetchIndex++
	if len(batch) == 0 {
		return nil, domain.ErrEmpty404
	}
	if len(batch) > batchSize {
		batch = batch[:batchSize]
	}
	return batch, nil
}

func (m *MockClient) SubmitProof(ctx context.Context, submission domain.ProofSubmission) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.submitCalls++
	if m.submitCalls <= m.SubmitErrN {
		return m.SubmitErr
	}
	m.Submissions = append(m.Submissions, submission)
	return nil
}

func (m *MockClient) RegisterNode(ctx context.Context, record NodeRegistration) (string, error) {
	if m.RegisterErr != nil {
		return "", m.RegisterErr
	}
	if m.RegisteredNodeID == "" {
		m.RegisteredNodeID = uuid.NewString()
	}
	return m.RegisteredNodeID, nil
}

// SubmitCallCount returns the number of times SubmitProof was invoked.
func (m *MockClient) SubmitCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.submitCalls
}

// FetchCallCount returns the number of times FetchTasks was invoked.
func (m *MockClient) FetchCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fetchIndex
}
