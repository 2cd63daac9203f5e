package orchestrator

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tutu-network/proverd/internal/domain"
)

func TestHTTPClient_FetchTasks(t *testing.T) {
	task := domain.Task{ID: "T1", Program: domain.ProgramFibInitial, PublicInputs: domain.EncodeFibInitial(domain.FibInitialInput{N: 9, A: 1, B: 1})}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body bytes.Buffer
		writeLengthPrefixed(&body, encodeTask(task))
		w.Write(body.Bytes())
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	tasks, err := c.FetchTasks(context.Background(), "node-1", []byte("vk"), 10)
	if err != nil {
		t.Fatalf("FetchTasks: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != "T1" {
		t.Fatalf("got %+v", tasks)
	}
}

func TestHTTPClient_FetchTasksEmpty404(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	_, err := c.FetchTasks(context.Background(), "node-1", []byte("vk"), 10)
	if err != domain.ErrEmpty404 {
		t.Fatalf("got err %v, want ErrEmpty404", err)
	}
}

func TestHTTPClient_SubmitProofRateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	err := c.SubmitProof(context.Background(), domain.ProofSubmission{TaskID: "T1"})
	if err != domain.ErrRateLimited {
		t.Fatalf("got err %v, want ErrRateLimited", err)
	}
}

func TestHTTPClient_SubmitProofSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	if err := c.SubmitProof(context.Background(), domain.ProofSubmission{TaskID: "T1"}); err != nil {
		t.Fatalf("SubmitProof: %v", err)
	}
}

func TestHTTPClient_RegisterNode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("node-xyz"))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL)
	id, err := c.RegisterNode(context.Background(), NodeRegistration{Region: "US"})
	if err != nil {
		t.Fatalf("RegisterNode: %v", err)
	}
	if id != "node-xyz" {
		t.Fatalf("got id %q, want node-xyz", id)
	}
}
