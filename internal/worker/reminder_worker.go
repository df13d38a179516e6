package worker

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/hibiken/asynq"

	"github.com/socialspark/api/internal/model"
	"github.com/socialspark/api/internal/repository"
)

// ReminderWorker fires when a scheduled reminder comes due and flips the
// persisted schedule record to done.
type ReminderWorker struct {
	store repository.ScheduleStore
	tasks JobTracker
}

// NewReminderWorker creates a new reminder worker
func NewReminderWorker(store repository.ScheduleStore, tasks JobTracker) *ReminderWorker {
	return &ReminderWorker{store: store, tasks: tasks}
}

// ProcessTask handles reminder task processing
func (w *ReminderWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload model.ReminderPayload
	jobID, err := decodeEnvelope(t, &payload)
	if err != nil {
		if jobID != "" {
			return terminalFailure(ctx, w.tasks, jobID, err)
		}
		return terminal(err)
	}

	log.Printf("Reminder due for asset %s (%s)", payload.AssetID, payload.Platform)

	if err := w.tasks.MarkRunning(ctx, jobID, "Marking reminder done"); err != nil {
		return err
	}

	if err := w.store.UpdateStatus(ctx, payload.AssetID, model.ScheduleStatusDone); err != nil {
		// A missing record means the schedule was never persisted or was
		// replaced; retrying will not bring it back.
		if errors.Is(err, repository.ErrNotFound) {
			return terminalFailure(ctx, w.tasks, jobID, fmt.Errorf("no schedule record for asset %s: %w", payload.AssetID, err))
		}
		return transientFailure(ctx, w.tasks, jobID, err)
	}

	result := &model.ScheduledItem{
		AssetID:  payload.AssetID,
		Platform: payload.Platform,
		Status:   model.ScheduleStatusDone,
	}
	if err := w.tasks.Complete(ctx, jobID, result); err != nil {
		if serr := w.store.UpdateStatus(ctx, payload.AssetID, model.ScheduleStatusFailed); serr != nil {
			log.Printf("Failed to mark schedule record failed for asset %s: %v", payload.AssetID, serr)
		}
		return terminalFailure(ctx, w.tasks, jobID, fmt.Errorf("failed to save result: %w", err))
	}

	return nil
}
