package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/socialspark/api/internal/model"
	"github.com/socialspark/api/internal/queue"
	"github.com/socialspark/api/internal/repository"
)

// ScheduleService queues publish jobs and reminders. Scheduling returns as
// soon as the broker accepts the task; it never waits for the job to run.
type ScheduleService struct {
	taskQueue *queue.TaskQueue
	tasks     JobCreator
	store     repository.ScheduleStore
}

func NewScheduleService(taskQueue *queue.TaskQueue, tasks JobCreator, store repository.ScheduleStore) *ScheduleService {
	return &ScheduleService{
		taskQueue: taskQueue,
		tasks:     tasks,
		store:     store,
	}
}

// NormalizeUTC converts a run-at instant to UTC. Timezone-less inputs are
// already read as UTC at the parse boundary, so this is idempotent.
func NormalizeUTC(t time.Time) time.Time {
	return t.UTC()
}

// SchedulePost queues a publish job, delayed until runAt when present.
func (s *ScheduleService) SchedulePost(ctx context.Context, req *model.SchedulePostRequest) (*model.SchedulePostResponse, error) {
	var runAt *time.Time
	if req.RunAt != nil {
		t := NormalizeUTC(req.RunAt.Time)
		runAt = &t
	}

	payload := model.PublishPostPayload{
		AssetID:   req.AssetID,
		Platforms: req.Platforms,
		PostText:  req.PostText,
		RunAt:     runAt,
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal publish payload: %w", err)
	}

	job, err := s.tasks.CreateJob(ctx, model.JobTypePublishPost, payloadBytes, runAt)
	if err != nil {
		return nil, err
	}

	task, err := queue.NewTask(queue.TaskTypePublishPost, job.ID, payloadBytes)
	if err != nil {
		return nil, err
	}

	// Transient publish failures re-enter the queue up to three times.
	_, err = s.taskQueue.Enqueue(task, runAt,
		asynq.Queue(queue.QueuePublish),
		asynq.MaxRetry(3),
		asynq.Retention(24*time.Hour),
	)
	if err != nil {
		return nil, err
	}

	return &model.SchedulePostResponse{
		Status:      "Queued",
		ScheduledAt: runAt,
		JobID:       job.ID,
	}, nil
}

// ScheduleReminder queues a reminder job at runAt and persists a schedule
// record keyed by asset id, so status stays queryable independently of the
// broker's own introspection.
func (s *ScheduleService) ScheduleReminder(ctx context.Context, req *model.ScheduleReminderRequest) (*model.ScheduleReminderResponse, error) {
	runAt := NormalizeUTC(req.RunAt.Time)

	payload := model.ReminderPayload{
		AssetID:  req.AssetID,
		Platform: req.Platform,
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal reminder payload: %w", err)
	}

	job, err := s.tasks.CreateJob(ctx, model.JobTypeReminder, payloadBytes, &runAt)
	if err != nil {
		return nil, err
	}

	task, err := queue.NewTask(queue.TaskTypeReminder, job.ID, payloadBytes)
	if err != nil {
		return nil, err
	}

	if _, err := s.taskQueue.Enqueue(task, &runAt, asynq.Queue(queue.QueuePublish)); err != nil {
		return nil, err
	}

	item := &model.ScheduledItem{
		AssetID:    req.AssetID,
		Platform:   req.Platform,
		RunAt:      runAt,
		QueueJobID: job.ID,
		Status:     model.ScheduleStatusQueued,
	}
	if err := s.store.Upsert(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to persist schedule record: %w", err)
	}

	return &model.ScheduleReminderResponse{
		Status:       "queued",
		ScheduledFor: runAt,
	}, nil
}

// GetByAssetID looks up the schedule record for an asset. A missing key
// surfaces as repository.ErrNotFound for the boundary to map.
func (s *ScheduleService) GetByAssetID(ctx context.Context, assetID string) (*model.ScheduledItem, error) {
	return s.store.Get(ctx, assetID)
}
