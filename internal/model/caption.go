package model

// CaptionRequest represents the request body for caption generation
type CaptionRequest struct {
	Idea          string `json:"idea" validate:"required,min=1"`
	Platform      string `json:"platform" validate:"omitempty,min=1"`
	Language      string `json:"language" validate:"omitempty,min=2"`
	HashtagsCount int    `json:"hashtagsCount" validate:"omitempty,min=0,max=30"`
	BrandPresets  Brand  `json:"brandPresets" validate:"required"`
}

// CaptionResponse represents the generated caption and hashtags
type CaptionResponse struct {
	Caption  string   `json:"caption"`
	Hashtags []string `json:"hashtags"`
}
