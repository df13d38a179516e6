package model

import "time"

// SchedulePostRequest represents the request body to schedule a publish job
type SchedulePostRequest struct {
	AssetID   string     `json:"assetId" validate:"required,min=1"`
	Platforms []Platform `json:"platforms" validate:"required,min=1,dive,min=1"`
	PostText  *string    `json:"postText" validate:"omitempty,max=5000"`
	RunAt     *Timestamp `json:"runAt"`
}

// SchedulePostResponse acknowledges a queued publish job. The job has not
// run yet; the caller polls the task status endpoint with JobID.
type SchedulePostResponse struct {
	Status      string     `json:"status"`
	ScheduledAt *time.Time `json:"scheduledAt,omitempty"`
	JobID       string     `json:"jobId"`
}

// ScheduleReminderRequest represents the request body to schedule a reminder
type ScheduleReminderRequest struct {
	AssetID  string    `json:"assetId" validate:"required,min=1"`
	Platform Platform  `json:"platform" validate:"required,min=1"`
	RunAt    Timestamp `json:"runAt" validate:"required"`
}

// ScheduleReminderResponse acknowledges a queued reminder
type ScheduleReminderResponse struct {
	Status       string    `json:"status"`
	ScheduledFor time.Time `json:"scheduledFor"`
}

// ScheduledItem is the persisted schedule record, keyed by asset id.
// RunAt is always stored in UTC.
type ScheduledItem struct {
	AssetID    string         `json:"asset_id"`
	Platform   Platform       `json:"platform"`
	RunAt      time.Time      `json:"run_at"`
	QueueJobID string         `json:"queue_job_id"`
	Status     ScheduleStatus `json:"status"`
}
