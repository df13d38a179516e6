package model

import "time"

// PublishPostPayload contains the data for a publish job
type PublishPostPayload struct {
	AssetID   string     `json:"assetId"`
	Platforms []Platform `json:"platforms"`
	PostText  *string    `json:"postText,omitempty"`
	RunAt     *time.Time `json:"runAt,omitempty"`
}

// ReminderPayload contains the data for a reminder job
type ReminderPayload struct {
	AssetID  string   `json:"assetId"`
	Platform Platform `json:"platform"`
}

// PublishPostResult is the stored result of a completed publish job
type PublishPostResult struct {
	AssetID   string     `json:"assetId"`
	Platforms []Platform `json:"platforms"`
	Resized   bool       `json:"resized"`
}
