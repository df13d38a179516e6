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

// VideoService handles storyboard generation and video render submission
type VideoService struct {
	generator client.StructuredGenerator
	taskQueue *queue.TaskQueue
	tasks     JobCreator
}

// NewVideoService creates a new video service
func NewVideoService(generator client.StructuredGenerator, taskQueue *queue.TaskQueue, tasks JobCreator) *VideoService {
	return &VideoService{
		generator: generator,
		taskQueue: taskQueue,
		tasks:     tasks,
	}
}

// GenerateStoryboard produces an ordered shot list and a music description
// for a video idea.
func (s *VideoService) GenerateStoryboard(ctx context.Context, req *model.StoryboardRequest) (*model.StoryboardResponse, error) {
	language := req.Language
	if language == "" {
		language = "English"
	}
	shots := req.NumberOfShots
	if shots == 0 {
		shots = 3
	}
	cta := req.CTA
	if cta == "" {
		cta = "follow for more"
	}

	systemPrompt := `You are a creative assistant that builds storyboards for social media videos.
Always output your response as valid JSON in the exact format requested.
Do not include any text outside the JSON structure.`

	userPrompt := fmt.Sprintf(`Generate a storyboard for a video about "%s".
The video should be in %s and have %d shots.

The brand that uses this video for marketing is %s.
The brand personality is %s.
The color palette for the brand is %s.
The platform is %s.
The call to action is %s.

Each shot needs a duration in seconds and a short stock-footage search phrase.
Also suggest a background music description.

Output as JSON: {"shots": [{"duration": 4, "text": "city skyline at dusk"}], "music": "upbeat electronic"}`,
		req.Idea, language, shots,
		req.BrandPresets.Name, req.BrandPresets.Tone,
		strings.Join(req.BrandPresets.Colors, ", "),
		req.Platform, cta)

	var resp model.StoryboardResponse
	if err := s.generator.StructuredCompletion(ctx, systemPrompt, userPrompt, &resp); err != nil {
		return nil, fmt.Errorf("failed to generate storyboard: %w", err)
	}

	return &resp, nil
}

// StartRender queues a video render job and returns its handle
func (s *VideoService) StartRender(ctx context.Context, req *model.RenderVideoRequest) (*model.RenderStartResponse, error) {
	payload := model.RenderVideoPayload{
		Shots: req.Shots,
		Music: req.Music,
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	job, err := s.tasks.CreateJob(ctx, model.JobTypeRenderVideo, payloadBytes, nil)
	if err != nil {
		return nil, err
	}

	task, err := queue.NewTask(queue.TaskTypeRenderVideo, job.ID, payloadBytes)
	if err != nil {
		return nil, err
	}

	_, err = s.taskQueue.Enqueue(task, nil,
		asynq.Queue(queue.QueueRender),
		asynq.MaxRetry(2),
		asynq.Timeout(15*time.Minute),
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
