package model

// Shot is one segment of a video storyboard: how long it runs and the
// search phrase used to resolve stock footage for it.
type Shot struct {
	Duration int    `json:"duration" validate:"required,min=1,max=60"`
	Text     string `json:"text" validate:"required,min=1"`
}

// StoryboardRequest represents the request body for storyboard generation
type StoryboardRequest struct {
	Idea          string `json:"idea" validate:"required,min=1"`
	Language      string `json:"language" validate:"omitempty,min=2"`
	NumberOfShots int    `json:"numberOfShots" validate:"omitempty,min=1,max=10"`
	Platform      string `json:"platform" validate:"omitempty,min=1"`
	CTA           string `json:"cta" validate:"omitempty,max=100"`
	BrandPresets  Brand  `json:"brandPresets" validate:"required"`
}

// StoryboardResponse represents the generated storyboard
type StoryboardResponse struct {
	Shots []Shot `json:"shots"`
	Music string `json:"music"`
}

// RenderVideoRequest represents the request body to queue a video render
type RenderVideoRequest struct {
	Shots []Shot `json:"shots" validate:"required,min=1,dive"`
	Music string `json:"music" validate:"omitempty,min=1"`
}

// RenderVideoPayload contains the data for a video render job
type RenderVideoPayload struct {
	Shots []Shot `json:"shots"`
	Music string `json:"music,omitempty"`
}

// RenderVideoResult is the stored result of a completed video render
type RenderVideoResult struct {
	VideoURL string `json:"videoUrl"`
}

// RenderStartResponse is returned when a render job is accepted
type RenderStartResponse struct {
	TaskID string    `json:"taskId"`
	Status JobStatus `json:"status"`
}
