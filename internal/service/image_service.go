package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hibiken/asynq"

	"github.com/socialspark/api/internal/client"
	"github.com/socialspark/api/internal/model"
	"github.com/socialspark/api/internal/queue"
)

// ImageService handles image prompt generation and render job submission
type ImageService struct {
	generator client.StructuredGenerator
	taskQueue *queue.TaskQueue
	tasks     JobCreator
}

// NewImageService creates a new image service
func NewImageService(generator client.StructuredGenerator, taskQueue *queue.TaskQueue, tasks JobCreator) *ImageService {
	return &ImageService{
		generator: generator,
		taskQueue: taskQueue,
		tasks:     tasks,
	}
}

// GeneratePrompt produces an enhanced generation prompt and metadata for a
// raw idea. Rendering is a separate, queued step.
func (s *ImageService) GeneratePrompt(ctx context.Context, req *model.ImageGenerationRequest) (*model.ImageGenerationResponse, error) {
	style := req.Style
	if style == "" {
		style = "realistic"
	}
	aspectRatio := req.AspectRatio
	if aspectRatio == "" {
		aspectRatio = "1:1"
	}

	enhanced := fmt.Sprintf("%s, %s style", req.Prompt, req.BrandPresets.Tone)
	if len(req.BrandPresets.Colors) > 0 {
		enhanced += ", using colors: " + strings.Join(req.BrandPresets.Colors, ", ")
	}

	systemPrompt := `You are an expert prompt engineer for diffusion image models.
Always output your response as valid JSON in the exact format requested.
Do not include any text outside the JSON structure.`

	userPrompt := fmt.Sprintf(`Refine this image generation prompt for %s marketing content.

Base prompt: %s
Enhanced prompt draft: %s
Style: %s
Aspect ratio: %s
Brand: %s (%s)

Output as JSON: {"promptUsed": "...", "style": "%s", "aspectRatio": "%s", "platform": "%s"}`,
		req.Platform, req.Prompt, enhanced, style, aspectRatio,
		req.BrandPresets.Name, req.BrandPresets.Tone,
		style, aspectRatio, req.Platform)

	var resp model.ImageGenerationResponse
	if err := s.generator.StructuredCompletion(ctx, systemPrompt, userPrompt, &resp); err != nil {
		return nil, fmt.Errorf("failed to generate image prompt: %w", err)
	}

	return &resp, nil
}

// StartRender queues an image render job and returns its handle. The worker
// drives the provider poll loop; callers track progress by task id.
func (s *ImageService) StartRender(ctx context.Context, req *model.RenderImageRequest) (*model.RenderStartResponse, error) {
	payload := model.RenderImagePayload{
		PromptUsed:  req.PromptUsed,
		Style:       req.Style,
		AspectRatio: req.AspectRatio,
		Platform:    req.Platform,
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	job, err := s.tasks.CreateJob(ctx, model.JobTypeRenderImage, payloadBytes, nil)
	if err != nil {
		return nil, err
	}

	task, err := queue.NewTask(queue.TaskTypeRenderImage, job.ID, payloadBytes)
	if err != nil {
		return nil, err
	}

	// The poll state machine has its own attempt budget, so the job itself
	// is not retried; the timeout covers the full ~20 minute poll window.
	_, err = s.taskQueue.Enqueue(task, nil,
		asynq.Queue(queue.QueueRender),
		asynq.MaxRetry(0),
		asynq.Timeout(25*time.Minute),
		asynq.Retention(24*time.Hour),
	)
	if err != nil {
		return nil, err
	}

	return &model.RenderStartResponse{
		TaskID: job.ID,
		Status: model.JobStatusQueued,
	}, nil
}
