package worker

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/hibiken/asynq"

	"github.com/socialspark/api/internal/client"
	"github.com/socialspark/api/internal/model"
)

// imageGenerator is what the worker needs from the horde client
type imageGenerator interface {
	GenerateImage(ctx context.Context, prompt, style, aspectRatio string) (*client.GenerationResult, error)
	IsConfigured() bool
}

// ImageWorker processes image render jobs. Each job occupies its worker
// slot for the full provider poll window (up to ~20 minutes), so pool
// sizing must account for in-flight generations.
type ImageWorker struct {
	generator imageGenerator
	tasks     JobTracker
}

// NewImageWorker creates a new image render worker
func NewImageWorker(generator imageGenerator, tasks JobTracker) *ImageWorker {
	return &ImageWorker{
		generator: generator,
		tasks:     tasks,
	}
}

// ProcessTask handles image render task processing
func (w *ImageWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload model.RenderImagePayload
	jobID, err := decodeEnvelope(t, &payload)
	if err != nil {
		if jobID != "" {
			return terminalFailure(ctx, w.tasks, jobID, err)
		}
		return terminal(err)
	}

	log.Printf("Starting image render job: %s", jobID)

	// Missing provider credentials cannot heal on retry
	if w.generator == nil || !w.generator.IsConfigured() {
		return terminalFailure(ctx, w.tasks, jobID, errors.New("image provider not configured"))
	}

	if err := w.tasks.MarkRunning(ctx, jobID, "Submitting to image provider"); err != nil {
		return err
	}

	result, err := w.generator.GenerateImage(ctx, payload.PromptUsed, payload.Style, payload.AspectRatio)
	if err != nil {
		return terminalFailure(ctx, w.tasks, jobID, classifyGeneration(err))
	}

	jobResult := &model.RenderImageResult{
		ImageURL:    result.ImageURL,
		PromptUsed:  payload.PromptUsed,
		Style:       payload.Style,
		AspectRatio: payload.AspectRatio,
		Platform:    payload.Platform,
		Metadata: model.ImageMetadata{
			Seed:       result.Seed,
			WorkerID:   result.WorkerID,
			WorkerName: result.WorkerName,
			Model:      result.Model,
		},
	}

	if err := w.tasks.Complete(ctx, jobID, jobResult); err != nil {
		return terminalFailure(ctx, w.tasks, jobID, fmt.Errorf("failed to save result: %w", err))
	}

	log.Printf("Image render job %s completed", jobID)
	return nil
}

// classifyGeneration prefixes the failure with its category so the timeout
// vs provider-fault distinction survives to the status endpoint.
func classifyGeneration(err error) error {
	switch {
	case errors.Is(err, client.ErrFaulted):
		return fmt.Errorf("provider fault: %w", err)
	case errors.Is(err, client.ErrTimedOut):
		return fmt.Errorf("timeout: %w", err)
	case errors.Is(err, client.ErrMissingRequestID), errors.Is(err, client.ErrNoGenerations):
		return fmt.Errorf("provider error: %w", err)
	default:
		return fmt.Errorf("image generation failed: %w", err)
	}
}
