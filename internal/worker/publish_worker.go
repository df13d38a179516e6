package worker

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/h2non/filetype"
	"github.com/hibiken/asynq"
	"golang.org/x/image/draw"

	"github.com/socialspark/api/internal/client"
	"github.com/socialspark/api/internal/model"
)

// maxImageDimension is the platform ceiling: images whose larger side
// exceeds it are downscaled before posting.
const maxImageDimension = 1920

// PublishWorker posts assets to the social publish provider. Platform and
// content validation fail fast and are never retried; network failures
// re-enter the queue up to the job's retry ceiling.
type PublishWorker struct {
	publisher  client.PostPublisher
	store      client.ObjectStore
	tasks      JobTracker
	httpClient *http.Client
}

// NewPublishWorker creates a new publish worker
func NewPublishWorker(publisher client.PostPublisher, store client.ObjectStore, tasks JobTracker) *PublishWorker {
	return &PublishWorker{
		publisher: publisher,
		store:     store,
		tasks:     tasks,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// ProcessTask handles publish task processing
func (w *PublishWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload model.PublishPostPayload
	jobID, err := decodeEnvelope(t, &payload)
	if err != nil {
		if jobID != "" {
			return terminalFailure(ctx, w.tasks, jobID, err)
		}
		return terminal(err)
	}

	log.Printf("Starting publish job: %s (asset=%s)", jobID, payload.AssetID)

	// Fail the whole job before any provider call; no partial-platform posts.
	for _, platform := range payload.Platforms {
		if !model.IsSupportedPlatform(platform) {
			return terminalFailure(ctx, w.tasks, jobID, fmt.Errorf("unsupported platform %q", platform))
		}
	}

	if err := w.tasks.MarkRunning(ctx, jobID, "Resolving asset"); err != nil {
		return err
	}

	mediaURL, err := w.resolveAssetURL(ctx, payload.AssetID)
	if err != nil {
		return transientFailure(ctx, w.tasks, jobID, err)
	}

	data, err := w.fetchAsset(ctx, mediaURL)
	if err != nil {
		return transientFailure(ctx, w.tasks, jobID, err)
	}

	// Malformed content cannot heal on retry
	kind, err := filetype.Match(data)
	if err != nil || !filetype.IsImage(data) {
		return terminalFailure(ctx, w.tasks, jobID, fmt.Errorf("asset %s is not an image (detected %q)", payload.AssetID, kind.MIME.Value))
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return terminalFailure(ctx, w.tasks, jobID, fmt.Errorf("asset %s is not a decodable image: %w", payload.AssetID, err))
	}

	post := &client.PublishRequest{
		Platforms:    platformNames(payload.Platforms),
		ScheduleDate: payload.RunAt,
	}
	if payload.PostText != nil {
		post.PostText = *payload.PostText
	}

	if err := w.tasks.UpdateProgress(ctx, jobID, 60, "Posting to platforms"); err != nil {
		log.Printf("Failed to update progress for job %s: %v", jobID, err)
	}

	resized := false
	bounds := img.Bounds()
	if bounds.Dx() > maxImageDimension || bounds.Dy() > maxImageDimension {
		scaled := downscale(img, maxImageDimension)
		encoded, contentType, err := encodeImage(scaled, format)
		if err != nil {
			return terminalFailure(ctx, w.tasks, jobID, fmt.Errorf("failed to re-encode resized asset: %w", err))
		}
		resized = true
		err = w.publisher.PublishUpload(ctx, post, encoded, contentType)
		if err != nil {
			return transientFailure(ctx, w.tasks, jobID, err)
		}
	} else {
		if err := w.publisher.PublishByURL(ctx, post, mediaURL); err != nil {
			return transientFailure(ctx, w.tasks, jobID, err)
		}
	}

	result := &model.PublishPostResult{
		AssetID:   payload.AssetID,
		Platforms: payload.Platforms,
		Resized:   resized,
	}
	if err := w.tasks.Complete(ctx, jobID, result); err != nil {
		return terminalFailure(ctx, w.tasks, jobID, fmt.Errorf("failed to save result: %w", err))
	}

	log.Printf("Publish job %s completed (resized=%t)", jobID, resized)
	return nil
}

// resolveAssetURL turns an asset id into a fetchable URL. Ids that already
// are URLs pass through; everything else is treated as an object store key
// and resolved to a presigned URL.
func (w *PublishWorker) resolveAssetURL(ctx context.Context, assetID string) (string, error) {
	if strings.HasPrefix(assetID, "http://") || strings.HasPrefix(assetID, "https://") {
		return assetID, nil
	}

	url, err := w.store.GetSignedURL(ctx, assetID, time.Hour)
	if err != nil {
		return "", fmt.Errorf("failed to resolve asset %s: %w", assetID, err)
	}
	return url, nil
}

func (w *PublishWorker) fetchAsset(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create asset request: %w", err)
	}

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch asset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("asset fetch returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read asset body: %w", err)
	}
	return data, nil
}

// downscale fits an image inside ceiling on both sides, preserving aspect
// ratio.
func downscale(src image.Image, ceiling int) image.Image {
	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	larger := width
	if height > larger {
		larger = height
	}
	if larger <= ceiling {
		return src
	}

	scale := float64(ceiling) / float64(larger)
	newWidth := int(float64(width)*scale + 0.5)
	newHeight := int(float64(height)*scale + 0.5)
	if newWidth < 1 {
		newWidth = 1
	}
	if newHeight < 1 {
		newHeight = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
	return dst
}

func encodeImage(img image.Image, format string) ([]byte, string, error) {
	var buf bytes.Buffer
	switch format {
	case "png":
		if err := png.Encode(&buf, img); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), "image/png", nil
	default:
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
			return nil, "", err
		}
		return buf.Bytes(), "image/jpeg", nil
	}
}

func platformNames(platforms []model.Platform) []string {
	names := make([]string, len(platforms))
	for i, p := range platforms {
		names[i] = string(p)
	}
	return names
}
