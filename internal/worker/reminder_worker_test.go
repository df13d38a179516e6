package worker

import (
	"context"
	"errors"
	"testing"

	"github.com/socialspark/api/internal/model"
	"github.com/socialspark/api/internal/queue"
	"github.com/socialspark/api/internal/repository"
)

type fakeReminderStore struct {
	statuses map[string]model.ScheduleStatus
	err      error
}

func (f *fakeReminderStore) Upsert(ctx context.Context, item *model.ScheduledItem) error {
	f.statuses[item.AssetID] = item.Status
	return nil
}

func (f *fakeReminderStore) Get(ctx context.Context, assetID string) (*model.ScheduledItem, error) {
	status, ok := f.statuses[assetID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &model.ScheduledItem{AssetID: assetID, Status: status}, nil
}

func (f *fakeReminderStore) UpdateStatus(ctx context.Context, assetID string, status model.ScheduleStatus) error {
	if f.err != nil {
		return f.err
	}
	if _, ok := f.statuses[assetID]; !ok {
		return repository.ErrNotFound
	}
	f.statuses[assetID] = status
	return nil
}

func TestReminderWorker_MarksRecordDone(t *testing.T) {
	store := &fakeReminderStore{statuses: map[string]model.ScheduleStatus{
		"asset-1": model.ScheduleStatusQueued,
	}}
	tracker := &fakeTracker{}
	w := NewReminderWorker(store, tracker)

	task := mustTask(t, queue.TaskTypeReminder, "job-1", model.ReminderPayload{
		AssetID:  "asset-1",
		Platform: model.PlatformInstagram,
	})

	if err := w.ProcessTask(context.Background(), task); err != nil {
		t.Fatalf("ProcessTask failed: %v", err)
	}

	if store.statuses["asset-1"] != model.ScheduleStatusDone {
		t.Errorf("expected done, got %s", store.statuses["asset-1"])
	}
	if len(tracker.results) != 1 {
		t.Fatalf("expected 1 completed job, got %d", len(tracker.results))
	}
}

func TestReminderWorker_MissingRecordIsTerminal(t *testing.T) {
	store := &fakeReminderStore{statuses: map[string]model.ScheduleStatus{}}
	tracker := &fakeTracker{}
	w := NewReminderWorker(store, tracker)

	task := mustTask(t, queue.TaskTypeReminder, "job-2", model.ReminderPayload{
		AssetID:  "ghost",
		Platform: model.PlatformX,
	})

	err := w.ProcessTask(context.Background(), task)
	assertTerminal(t, err)
	if len(tracker.failures) != 1 {
		t.Fatalf("expected 1 recorded failure, got %d", len(tracker.failures))
	}
}

func TestReminderWorker_StoreOutageIsRetryable(t *testing.T) {
	store := &fakeReminderStore{
		statuses: map[string]model.ScheduleStatus{"asset-1": model.ScheduleStatusQueued},
		err:      errors.New("connection refused"),
	}
	w := NewReminderWorker(store, &fakeTracker{})

	task := mustTask(t, queue.TaskTypeReminder, "job-3", model.ReminderPayload{
		AssetID:  "asset-1",
		Platform: model.PlatformInstagram,
	})

	err := w.ProcessTask(context.Background(), task)
	assertRetryable(t, err)
}
