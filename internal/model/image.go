package model

// ImageGenerationRequest represents the request body for image prompt
// generation. Generation itself is a separate, queued render step.
type ImageGenerationRequest struct {
	Prompt       string `json:"prompt" validate:"required,min=1"`
	Style        string `json:"style" validate:"omitempty,min=1"`
	AspectRatio  string `json:"aspectRatio" validate:"omitempty,oneof=1:1 16:9 9:16 4:3 3:4"`
	Platform     string `json:"platform" validate:"required,min=1"`
	BrandPresets Brand  `json:"brandPresets" validate:"required"`
}

// ImageGenerationResponse carries the enhanced prompt and metadata the
// structured generator produced.
type ImageGenerationResponse struct {
	PromptUsed  string `json:"promptUsed"`
	Style       string `json:"style"`
	AspectRatio string `json:"aspectRatio"`
	Platform    string `json:"platform"`
}

// RenderImageRequest represents the request body to queue an image render
type RenderImageRequest struct {
	PromptUsed  string `json:"promptUsed" validate:"required,min=1"`
	Style       string `json:"style" validate:"required,min=1"`
	AspectRatio string `json:"aspectRatio" validate:"required,oneof=1:1 16:9 9:16 4:3 3:4"`
	Platform    string `json:"platform" validate:"required,min=1"`
}

// RenderImagePayload contains the data for an image render job
type RenderImagePayload struct {
	PromptUsed  string `json:"promptUsed"`
	Style       string `json:"style"`
	AspectRatio string `json:"aspectRatio"`
	Platform    string `json:"platform"`
}

// ImageMetadata describes which horde worker produced the image
type ImageMetadata struct {
	Seed       string `json:"seed,omitempty"`
	WorkerID   string `json:"workerId,omitempty"`
	WorkerName string `json:"workerName,omitempty"`
	Model      string `json:"model,omitempty"`
}

// RenderImageResult is the stored result of a completed image render
type RenderImageResult struct {
	ImageURL    string        `json:"imageUrl"`
	PromptUsed  string        `json:"promptUsed"`
	Style       string        `json:"style"`
	AspectRatio string        `json:"aspectRatio"`
	Platform    string        `json:"platform"`
	Metadata    ImageMetadata `json:"metadata"`
}
