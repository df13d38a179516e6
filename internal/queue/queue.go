package queue

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

// Task type names are the wire contract with the broker. Everything behind
// this boundary dispatches on typed payloads, not strings.
const (
	TaskTypeRenderImage = "image:render"
	TaskTypeRenderVideo = "video:render"
	TaskTypePublishPost = "publish:post"
	TaskTypeReminder    = "schedule:reminder"
)

// Queue names with their priority weights
const (
	QueueRender  = "render"
	QueuePublish = "publish"
)

// Envelope wraps every task payload with the job id used for status
// tracking.
type Envelope struct {
	JobID   string          `json:"jobId"`
	Payload json.RawMessage `json:"payload"`
}

// NewTask builds an asynq task carrying a job envelope
func NewTask(taskType, jobID string, payload []byte) (*asynq.Task, error) {
	data, err := json.Marshal(Envelope{JobID: jobID, Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal task envelope: %w", err)
	}
	return asynq.NewTask(taskType, data), nil
}

// Client is the part of asynq.Client the queue uses; tests substitute fakes.
type Client interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// TaskQueue submits jobs to the broker. Submission never blocks on job
// execution; broker failures surface synchronously to the caller.
type TaskQueue struct {
	client Client
}

// NewTaskQueue creates a task queue over an asynq client
func NewTaskQueue(client Client) *TaskQueue {
	return &TaskQueue{client: client}
}

// Enqueue submits a task. When notBefore is set the task will not begin
// execution before that instant; otherwise it is eligible immediately.
// Ordering within the same not-before bucket is not guaranteed.
func (q *TaskQueue) Enqueue(task *asynq.Task, notBefore *time.Time, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if notBefore != nil {
		opts = append(opts, asynq.ProcessAt(notBefore.UTC()))
	}

	info, err := q.client.Enqueue(task, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue %s task: %w", task.Type(), err)
	}
	return info, nil
}
