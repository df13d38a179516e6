package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/socialspark/api/internal/model"
)

// ErrJobNotFound is returned when no job record exists for an id
var ErrJobNotFound = errors.New("job not found")

const jobRetention = 24 * time.Hour

// JobCreator is the slice of TaskService the submitting services need;
// tests substitute fakes.
type JobCreator interface {
	CreateJob(ctx context.Context, jobType string, payload []byte, notBefore *time.Time) (*model.Job, error)
}

// TaskService owns job records. The job id handed out at submission is the
// sole key that resolves to job state.
type TaskService struct {
	redis *redis.Client
}

func NewTaskService(redisClient *redis.Client) *TaskService {
	return &TaskService{redis: redisClient}
}

// CreateJob persists a new queued job record and returns it
func (s *TaskService) CreateJob(ctx context.Context, jobType string, payload []byte, notBefore *time.Time) (*model.Job, error) {
	job := &model.Job{
		ID:        uuid.New().String(),
		Type:      jobType,
		Status:    model.JobStatusQueued,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
		NotBefore: notBefore,
	}

	if err := s.saveJob(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to save job: %w", err)
	}

	return job, nil
}

// Status returns the boundary view of a job. The retryable/terminal/timeout
// distinction survives in the stored error string; this is the only place an
// internal failure becomes a user-facing response.
func (s *TaskService) Status(ctx context.Context, jobID string) (*model.TaskStatusResponse, error) {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	resp := &model.TaskStatusResponse{
		TaskID:      job.ID,
		Status:      job.Status,
		Progress:    job.Progress,
		CurrentStep: job.CurrentStep,
		Error:       job.Error,
	}
	if job.Status == model.JobStatusSucceeded {
		resp.Result = json.RawMessage(job.Result)
	}

	return resp, nil
}

// MarkRunning transitions a queued job to running (called by workers)
func (s *TaskService) MarkRunning(ctx context.Context, jobID, step string) error {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return err
	}

	job.CurrentStep = step
	if job.Status == model.JobStatusQueued {
		job.Status = model.JobStatusRunning
		now := time.Now().UTC()
		job.StartedAt = &now
	}

	return s.saveJob(ctx, job)
}

// UpdateProgress updates job progress (called by workers)
func (s *TaskService) UpdateProgress(ctx context.Context, jobID string, progress int, step string) error {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return err
	}

	job.Progress = progress
	job.CurrentStep = step
	if job.Status == model.JobStatusQueued {
		job.Status = model.JobStatusRunning
		now := time.Now().UTC()
		job.StartedAt = &now
	}

	return s.saveJob(ctx, job)
}

// Complete marks a job as succeeded with its result (called by workers)
func (s *TaskService) Complete(ctx context.Context, jobID string, result interface{}) error {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return err
	}

	resultBytes, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}

	job.Status = model.JobStatusSucceeded
	job.Progress = 100
	job.CurrentStep = ""
	job.Result = resultBytes
	now := time.Now().UTC()
	job.CompletedAt = &now

	return s.saveJob(ctx, job)
}

// Fail marks a job as failed (called by workers)
func (s *TaskService) Fail(ctx context.Context, jobID, errMsg string) error {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return err
	}

	job.Status = model.JobStatusFailed
	job.Error = &errMsg
	now := time.Now().UTC()
	job.CompletedAt = &now

	return s.saveJob(ctx, job)
}

// IncrementRetry records a re-queue of a job after a transient failure
func (s *TaskService) IncrementRetry(ctx context.Context, jobID string) error {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return err
	}

	job.RetryCount++
	job.Status = model.JobStatusQueued

	return s.saveJob(ctx, job)
}

func (s *TaskService) saveJob(ctx context.Context, job *model.Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return s.redis.Set(ctx, jobKey(job.ID), data, jobRetention).Err()
}

func (s *TaskService) getJob(ctx context.Context, jobID string) (*model.Job, error) {
	data, err := s.redis.Get(ctx, jobKey(jobID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}

	var job model.Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, err
	}

	return &job, nil
}

func jobKey(jobID string) string {
	return "job:" + jobID
}
