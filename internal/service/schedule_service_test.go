package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/hibiken/asynq"

	"github.com/socialspark/api/internal/model"
	"github.com/socialspark/api/internal/queue"
	"github.com/socialspark/api/internal/repository"
)

type fakeQueueClient struct {
	tasks []*asynq.Task
}

func (f *fakeQueueClient) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{ID: "task-1", Type: task.Type()}, nil
}

type fakeJobCreator struct {
	jobs []*model.Job
}

func (f *fakeJobCreator) CreateJob(ctx context.Context, jobType string, payload []byte, notBefore *time.Time) (*model.Job, error) {
	job := &model.Job{
		ID:        "job-" + jobType,
		Type:      jobType,
		Status:    model.JobStatusQueued,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
		NotBefore: notBefore,
	}
	f.jobs = append(f.jobs, job)
	return job, nil
}

type fakeScheduleStore struct {
	items map[string]*model.ScheduledItem
}

func newFakeScheduleStore() *fakeScheduleStore {
	return &fakeScheduleStore{items: make(map[string]*model.ScheduledItem)}
}

func (f *fakeScheduleStore) Upsert(ctx context.Context, item *model.ScheduledItem) error {
	cp := *item
	f.items[item.AssetID] = &cp
	return nil
}

func (f *fakeScheduleStore) Get(ctx context.Context, assetID string) (*model.ScheduledItem, error) {
	item, ok := f.items[assetID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return item, nil
}

func (f *fakeScheduleStore) UpdateStatus(ctx context.Context, assetID string, status model.ScheduleStatus) error {
	item, err := f.Get(ctx, assetID)
	if err != nil {
		return err
	}
	item.Status = status
	return f.Upsert(ctx, item)
}

func newTestScheduleService() (*ScheduleService, *fakeQueueClient, *fakeJobCreator, *fakeScheduleStore) {
	qc := &fakeQueueClient{}
	jc := &fakeJobCreator{}
	store := newFakeScheduleStore()
	svc := NewScheduleService(queue.NewTaskQueue(qc), jc, store)
	return svc, qc, jc, store
}

func TestNormalizeUTC(t *testing.T) {
	loc := time.FixedZone("UTC+3", 3*60*60)
	local := time.Date(2026, 5, 1, 12, 0, 0, 0, loc)

	got := NormalizeUTC(local)
	if got.Location() != time.UTC {
		t.Errorf("expected UTC location, got %v", got.Location())
	}
	if got.Hour() != 9 {
		t.Errorf("expected hour 9 UTC, got %d", got.Hour())
	}

	// Idempotent on already-UTC values
	if again := NormalizeUTC(got); !again.Equal(got) || again.Location() != time.UTC {
		t.Errorf("normalization not idempotent: %v vs %v", again, got)
	}
}

func TestSchedulePost_Immediate(t *testing.T) {
	svc, qc, jc, _ := newTestScheduleService()

	text := "launch day"
	resp, err := svc.SchedulePost(context.Background(), &model.SchedulePostRequest{
		AssetID:   "asset-1",
		Platforms: []model.Platform{model.PlatformInstagram},
		PostText:  &text,
	})
	if err != nil {
		t.Fatalf("SchedulePost failed: %v", err)
	}

	if resp.Status != "Queued" {
		t.Errorf("expected status Queued, got %q", resp.Status)
	}
	if resp.ScheduledAt != nil {
		t.Errorf("expected no scheduled time, got %v", resp.ScheduledAt)
	}
	if resp.JobID == "" {
		t.Error("expected a job id")
	}

	if len(qc.tasks) != 1 {
		t.Fatalf("expected 1 enqueued task, got %d", len(qc.tasks))
	}
	if qc.tasks[0].Type() != queue.TaskTypePublishPost {
		t.Errorf("unexpected task type %q", qc.tasks[0].Type())
	}

	var env queue.Envelope
	if err := json.Unmarshal(qc.tasks[0].Payload(), &env); err != nil {
		t.Fatalf("failed to decode envelope: %v", err)
	}
	if env.JobID != jc.jobs[0].ID {
		t.Errorf("envelope job id %q does not match job record %q", env.JobID, jc.jobs[0].ID)
	}
	var payload model.PublishPostPayload
	if err := json.Unmarshal(env.Payload, &payload); err != nil {
		t.Fatalf("failed to decode payload: %v", err)
	}
	if payload.AssetID != "asset-1" || *payload.PostText != "launch day" {
		t.Errorf("unexpected payload: %+v", payload)
	}
}

func TestSchedulePost_DelayedNormalizesToUTC(t *testing.T) {
	svc, _, jc, _ := newTestScheduleService()

	loc := time.FixedZone("UTC-5", -5*60*60)
	runAt := model.Timestamp{Time: time.Date(2026, 9, 1, 18, 30, 0, 0, loc)}

	resp, err := svc.SchedulePost(context.Background(), &model.SchedulePostRequest{
		AssetID:   "asset-2",
		Platforms: []model.Platform{model.PlatformFacebook},
		RunAt:     &runAt,
	})
	if err != nil {
		t.Fatalf("SchedulePost failed: %v", err)
	}

	if resp.ScheduledAt == nil {
		t.Fatal("expected a scheduled time")
	}
	if resp.ScheduledAt.Location() != time.UTC {
		t.Errorf("scheduled time not UTC: %v", resp.ScheduledAt)
	}
	if resp.ScheduledAt.Hour() != 23 || resp.ScheduledAt.Minute() != 30 {
		t.Errorf("expected 23:30 UTC, got %v", resp.ScheduledAt)
	}
	if jc.jobs[0].NotBefore == nil || !jc.jobs[0].NotBefore.Equal(*resp.ScheduledAt) {
		t.Errorf("job not-before %v does not match scheduled time %v", jc.jobs[0].NotBefore, resp.ScheduledAt)
	}
}

func TestScheduleReminder_PersistsQueuedRecord(t *testing.T) {
	svc, qc, _, store := newTestScheduleService()

	runAt := model.Timestamp{Time: time.Date(2026, 9, 2, 8, 0, 0, 0, time.UTC)}
	resp, err := svc.ScheduleReminder(context.Background(), &model.ScheduleReminderRequest{
		AssetID:  "asset-3",
		Platform: model.PlatformX,
		RunAt:    runAt,
	})
	if err != nil {
		t.Fatalf("ScheduleReminder failed: %v", err)
	}

	if resp.Status != "queued" {
		t.Errorf("expected status queued, got %q", resp.Status)
	}
	if len(qc.tasks) != 1 || qc.tasks[0].Type() != queue.TaskTypeReminder {
		t.Fatalf("expected one reminder task, got %+v", qc.tasks)
	}

	item, err := svc.GetByAssetID(context.Background(), "asset-3")
	if err != nil {
		t.Fatalf("GetByAssetID failed: %v", err)
	}
	if item.Status != model.ScheduleStatusQueued {
		t.Errorf("expected queued record, got %s", item.Status)
	}
	if item.Platform != model.PlatformX || !item.RunAt.Equal(runAt.Time) {
		t.Errorf("unexpected record: %+v", item)
	}

	// The reminder worker flips the record once it fires
	if err := store.UpdateStatus(context.Background(), "asset-3", model.ScheduleStatusDone); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	item, _ = svc.GetByAssetID(context.Background(), "asset-3")
	if item.Status != model.ScheduleStatusDone {
		t.Errorf("expected done record, got %s", item.Status)
	}
}

func TestGetByAssetID_Missing(t *testing.T) {
	svc, _, _, _ := newTestScheduleService()

	if _, err := svc.GetByAssetID(context.Background(), "nope"); err != repository.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
