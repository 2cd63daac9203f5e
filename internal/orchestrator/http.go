package orchestrator

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tutu-network/proverd/internal/domain"
)

// httpTimeout is HTTP_TIMEOUT from spec §5.
const httpTimeout = 10 * time.Second

// HTTPClient is the production Client implementation. It shares one
// *http.Client across calls for connection reuse, matching the teacher's
// own http.Server{ReadTimeout, WriteTimeout, IdleTimeout} construction
// discipline in internal/daemon/daemon.go.
type HTTPClient struct {
	baseURL string
	hc      *http.Client
}

// NewHTTPClient builds an HTTPClient rooted at baseURL. It does not validate
// baseURL and cannot fail; a malformed baseURL surfaces only on the first
// request, as an error wrapping domain.ErrNetwork.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		hc: &http.Client{
			Timeout: httpTimeout,
			Transport: &http.Transport{
				MaxIdleConnsPerHost: 4,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

func (c *HTTPClient) FetchTasks(ctx context.Context, nodeID string, verifyingKey []byte, batchSize int) ([]domain.Task, error) {
	url := fmt.Sprintf("%s/v3/tasks?node_id=%s&batch_size=%d", c.baseURL, nodeID, batchSize)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}
	req.Header.Set("X-Verifying-Key", string(verifyingKey))

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if err := statusToError(resp.StatusCode); err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusNoContent {
		return nil, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxMessageSize))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}

	var tasks []domain.Task
	r := bytes.NewReader(body)
	for r.Len() > 0 {
		frame, err := readLengthPrefixed(r, maxMessageSize)
		if err != nil {
			return nil, fmt.Errorf("%w: malformed task stream: %v", domain.ErrNetwork, err)
		}
		task, err := decodeTask(frame)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrNetwork, err)
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func (c *HTTPClient) SubmitProof(ctx context.Context, submission domain.ProofSubmission) error {
	var body bytes.Buffer
	if err := writeLengthPrefixed(&body, encodeSubmission(submission)); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}

	url := c.baseURL + "/v3/tasks/submit"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}
	req.Header.Set("Content-Type", "application/x-protobuf-length-prefixed")

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	return statusToError(resp.StatusCode)
}

func (c *HTTPClient) RegisterNode(ctx context.Context, record NodeRegistration) (string, error) {
	url := c.baseURL + "/v3/nodes"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(record.VerifyingKey))
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}
	req.Header.Set("X-Region", record.Region)

	resp, err := c.hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if err := statusToError(resp.StatusCode); err != nil {
		return "", err
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 256))
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrNetwork, err)
	}
	return string(body), nil
}

// statusToError maps an HTTP status code to a domain sentinel per spec §6's
// status table, so errclass.Classify can key off errors.Is.
func statusToError(code int) error {
	switch {
	case code == http.StatusOK || code == http.StatusNoContent:
		return nil
	case code == http.StatusNotFound:
		return domain.ErrEmpty404
	case code == http.StatusTooManyRequests:
		return domain.ErrRateLimited
	case code >= 500:
		return fmt.Errorf("%w: status %d", domain.ErrServer5xx, code)
	case code >= 400:
		return fmt.Errorf("%w: status %d", domain.ErrNonRetryable4xx, code)
	default:
		return fmt.Errorf("%w: unexpected status %d", domain.ErrNetwork, code)
	}
}
