package worker

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/hibiken/asynq"

	"github.com/socialspark/api/internal/client"
	"github.com/socialspark/api/internal/model"
	"github.com/socialspark/api/internal/render"
)

// videoAssembler is what the worker needs from the render pipeline
type videoAssembler interface {
	Assemble(ctx context.Context, clips []render.Clip, musicURL string) (string, error)
}

// VideoWorker processes video render jobs: it resolves storyboard shots to
// stock clips, assembles them, and publishes the retrieval URL as the job
// result.
type VideoWorker struct {
	stock    client.StockMedia
	pipeline videoAssembler
	tasks    JobTracker

	// allowMissingShots drops shots with no stock hits instead of failing
	// the render.
	allowMissingShots bool
}

// NewVideoWorker creates a new video render worker
func NewVideoWorker(stock client.StockMedia, pipeline videoAssembler, tasks JobTracker, allowMissingShots bool) *VideoWorker {
	return &VideoWorker{
		stock:             stock,
		pipeline:          pipeline,
		tasks:             tasks,
		allowMissingShots: allowMissingShots,
	}
}

// ProcessTask handles video render task processing
func (w *VideoWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload model.RenderVideoPayload
	jobID, err := decodeEnvelope(t, &payload)
	if err != nil {
		if jobID != "" {
			return terminalFailure(ctx, w.tasks, jobID, err)
		}
		return terminal(err)
	}

	log.Printf("Starting video render job: %s (%d shots)", jobID, len(payload.Shots))

	if err := w.tasks.MarkRunning(ctx, jobID, "Resolving stock footage"); err != nil {
		return err
	}

	clips, err := w.resolveShots(ctx, payload.Shots)
	if err != nil {
		if errors.Is(err, client.ErrNoHits) {
			return terminalFailure(ctx, w.tasks, jobID, err)
		}
		return transientFailure(ctx, w.tasks, jobID, err)
	}
	if len(clips) == 0 {
		return terminalFailure(ctx, w.tasks, jobID, errors.New("no storyboard shots could be resolved"))
	}

	musicURL := w.resolveMusic(ctx, payload.Music)

	if err := w.tasks.UpdateProgress(ctx, jobID, 50, "Rendering video"); err != nil {
		log.Printf("Failed to update progress for job %s: %v", jobID, err)
	}

	videoURL, err := w.pipeline.Assemble(ctx, clips, musicURL)
	if err != nil {
		return transientFailure(ctx, w.tasks, jobID, fmt.Errorf("render pipeline: %w", err))
	}

	result := &model.RenderVideoResult{VideoURL: videoURL}
	if err := w.tasks.Complete(ctx, jobID, result); err != nil {
		return terminalFailure(ctx, w.tasks, jobID, fmt.Errorf("failed to save result: %w", err))
	}

	log.Printf("Video render job %s completed", jobID)
	return nil
}

// resolveShots looks up stock footage for every shot in order. A shot with
// no hits is dropped when allowMissingShots is set; otherwise the miss is
// returned wrapped around client.ErrNoHits.
func (w *VideoWorker) resolveShots(ctx context.Context, shots []model.Shot) ([]render.Clip, error) {
	clips := make([]render.Clip, 0, len(shots))

	for _, shot := range shots {
		url, err := w.stock.SearchVideo(ctx, shot.Text)
		if err != nil {
			if errors.Is(err, client.ErrNoHits) {
				if w.allowMissingShots {
					log.Printf("No stock footage for shot %q, dropping it from the render", shot.Text)
					continue
				}
				return nil, err
			}
			return nil, err
		}
		clips = append(clips, render.Clip{URL: url, Duration: shot.Duration})
	}

	return clips, nil
}

// resolveMusic finds a background track. A render without music is still a
// render; any lookup failure means the output ships silent.
func (w *VideoWorker) resolveMusic(ctx context.Context, description string) string {
	if description == "" {
		return ""
	}

	url, err := w.stock.SearchMusic(ctx, description)
	if err != nil {
		log.Printf("No music track for %q, rendering without audio: %v", description, err)
		return ""
	}
	return url
}
