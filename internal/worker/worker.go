package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/hibiken/asynq"

	"github.com/socialspark/api/internal/queue"
)

// JobTracker is the slice of the task service workers use to report job
// state transitions.
type JobTracker interface {
	MarkRunning(ctx context.Context, jobID, step string) error
	UpdateProgress(ctx context.Context, jobID string, progress int, step string) error
	Complete(ctx context.Context, jobID string, result interface{}) error
	Fail(ctx context.Context, jobID, errMsg string) error
	IncrementRetry(ctx context.Context, jobID string) error
}

// terminal marks an error so the executor fails the job immediately instead
// of re-queueing it. Validation and malformed-content failures take this
// path; retrying cannot fix them.
func terminal(err error) error {
	return fmt.Errorf("%w: %s", asynq.SkipRetry, err)
}

// decodeEnvelope unpacks the task envelope and its typed payload
func decodeEnvelope(t *asynq.Task, payload interface{}) (string, error) {
	var env queue.Envelope
	if err := json.Unmarshal(t.Payload(), &env); err != nil {
		return "", fmt.Errorf("failed to unmarshal task envelope: %w", err)
	}
	if err := json.Unmarshal(env.Payload, payload); err != nil {
		return env.JobID, fmt.Errorf("failed to unmarshal %s payload: %w", t.Type(), err)
	}
	return env.JobID, nil
}

// transientFailure records a transient error against the job. While retry
// budget remains the job goes back to queued and the error is returned for
// the executor to re-queue; once the budget is spent the job is failed.
func transientFailure(ctx context.Context, tracker JobTracker, jobID string, err error) error {
	retried, _ := asynq.GetRetryCount(ctx)
	maxRetry, _ := asynq.GetMaxRetry(ctx)

	if retried >= maxRetry {
		if ferr := tracker.Fail(ctx, jobID, err.Error()); ferr != nil {
			log.Printf("[Worker] Failed to mark job %s failed: %v", jobID, ferr)
		}
		return err
	}

	if rerr := tracker.IncrementRetry(ctx, jobID); rerr != nil {
		log.Printf("[Worker] Failed to record retry for job %s: %v", jobID, rerr)
	}
	return err
}

// terminalFailure fails the job and tells the executor not to retry
func terminalFailure(ctx context.Context, tracker JobTracker, jobID string, err error) error {
	if ferr := tracker.Fail(ctx, jobID, err.Error()); ferr != nil {
		log.Printf("[Worker] Failed to mark job %s failed: %v", jobID, ferr)
	}
	return terminal(err)
}
