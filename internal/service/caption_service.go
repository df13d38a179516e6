package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/socialspark/api/internal/client"
	"github.com/socialspark/api/internal/model"
)

// CaptionService generates platform captions and hashtags using structured
// LLM output.
type CaptionService struct {
	generator client.StructuredGenerator
}

// NewCaptionService creates a new caption service
func NewCaptionService(generator client.StructuredGenerator) *CaptionService {
	return &CaptionService{generator: generator}
}

// Generate produces a caption and hashtag list for an idea
func (s *CaptionService) Generate(ctx context.Context, req *model.CaptionRequest) (*model.CaptionResponse, error) {
	platform := req.Platform
	if platform == "" {
		platform = "instagram"
	}
	language := req.Language
	if language == "" {
		language = "English"
	}
	hashtagsCount := req.HashtagsCount
	if hashtagsCount == 0 {
		hashtagsCount = 4
	}

	systemPrompt := `You are a social media copywriter.
Always output your response as valid JSON in the exact format requested.
Do not include any text outside the JSON structure.`

	userPrompt := fmt.Sprintf(`Write a %s caption about "%s" in %s.

The brand is %s; its personality is %s.
Default brand hashtags: %s.
Include exactly %d hashtags, blending brand defaults with topical ones.

Output as JSON: {"caption": "...", "hashtags": ["#one", "#two"]}`,
		platform, req.Idea, language,
		req.BrandPresets.Name, req.BrandPresets.Tone,
		strings.Join(req.BrandPresets.DefaultHashtags, ", "),
		hashtagsCount)

	var resp model.CaptionResponse
	if err := s.generator.StructuredCompletion(ctx, systemPrompt, userPrompt, &resp); err != nil {
		return nil, fmt.Errorf("failed to generate caption: %w", err)
	}

	return &resp, nil
}
