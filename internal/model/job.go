package model

import (
	"encoding/json"
	"time"
)

// Job represents a background job in the system. The job id is the only
// handle that resolves to job state; records are immutable once they reach
// a terminal status.
type Job struct {
	ID          string     `json:"id"`
	Type        string     `json:"type"`
	Status      JobStatus  `json:"status"`
	Progress    int        `json:"progress"`
	CurrentStep string     `json:"currentStep,omitempty"`
	Error       *string    `json:"error,omitempty"`
	Payload     []byte     `json:"payload,omitempty"`
	Result      []byte     `json:"result,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	NotBefore   *time.Time `json:"notBefore,omitempty"`
	StartedAt   *time.Time `json:"startedAt,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	RetryCount  int        `json:"retryCount"`
}

// Job types
const (
	JobTypeRenderImage = "render_image"
	JobTypeRenderVideo = "render_video"
	JobTypePublishPost = "publish_post"
	JobTypeReminder    = "reminder"
)

// TaskStatusResponse is the boundary view of a job returned by the task
// status endpoint.
type TaskStatusResponse struct {
	TaskID      string          `json:"taskId"`
	Status      JobStatus       `json:"status"`
	Progress    int             `json:"progress,omitempty"`
	CurrentStep string          `json:"currentStep,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
	Error       *string         `json:"error,omitempty"`
}
