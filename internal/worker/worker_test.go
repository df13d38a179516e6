package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hibiken/asynq"

	"github.com/socialspark/api/internal/queue"
)

// fakeTracker records job transitions for assertions.
type fakeTracker struct {
	running    []string
	progress   []int
	results    []interface{}
	failures   []string
	retries    int
	lastStep   string
	lastFailed string
}

func (f *fakeTracker) MarkRunning(ctx context.Context, jobID, step string) error {
	f.running = append(f.running, jobID)
	f.lastStep = step
	return nil
}

func (f *fakeTracker) UpdateProgress(ctx context.Context, jobID string, progress int, step string) error {
	f.progress = append(f.progress, progress)
	f.lastStep = step
	return nil
}

func (f *fakeTracker) Complete(ctx context.Context, jobID string, result interface{}) error {
	f.results = append(f.results, result)
	return nil
}

func (f *fakeTracker) Fail(ctx context.Context, jobID, errMsg string) error {
	f.failures = append(f.failures, errMsg)
	f.lastFailed = jobID
	return nil
}

func (f *fakeTracker) IncrementRetry(ctx context.Context, jobID string) error {
	f.retries++
	return nil
}

func mustTask(t *testing.T, taskType, jobID string, payload interface{}) *asynq.Task {
	t.Helper()
	data, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("failed to marshal payload: %v", err)
	}
	task, err := queue.NewTask(taskType, jobID, data)
	if err != nil {
		t.Fatalf("failed to build task: %v", err)
	}
	return task
}

func assertTerminal(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error")
	}
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected a terminal error, got retryable: %v", err)
	}
}

func assertRetryable(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected an error")
	}
	if errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected a retryable error, got terminal: %v", err)
	}
}

func TestDecodeEnvelope_BadEnvelope(t *testing.T) {
	task := asynq.NewTask("publish:post", []byte("not json"))

	var out struct{}
	jobID, err := decodeEnvelope(task, &out)
	if err == nil {
		t.Fatal("expected decode error")
	}
	if jobID != "" {
		t.Errorf("expected empty job id, got %q", jobID)
	}
}

func TestDecodeEnvelope_BadPayloadKeepsJobID(t *testing.T) {
	env, _ := json.Marshal(queue.Envelope{JobID: "job-9", Payload: []byte(`"not an object"`)})
	task := asynq.NewTask("publish:post", env)

	var out struct{ Field int }
	jobID, err := decodeEnvelope(task, &out)
	if err == nil {
		t.Fatal("expected payload decode error")
	}
	if jobID != "job-9" {
		t.Errorf("expected job id job-9, got %q", jobID)
	}
}
