package render

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/socialspark/api/internal/client"
)

// Clip is one resolved video segment: its source URL and how many seconds
// of it make it into the output.
type Clip struct {
	URL      string
	Duration int
}

// Pipeline assembles resolved clips into a single encoded video, uploads it
// to the object store and hands back a time-limited retrieval URL.
type Pipeline struct {
	store client.ObjectStore

	// run executes an external command; replaced in tests.
	run func(ctx context.Context, name string, args ...string) error
}

// NewPipeline creates a render pipeline backed by an object store
func NewPipeline(store client.ObjectStore) *Pipeline {
	return &Pipeline{
		store: store,
		run:   runCommand,
	}
}

// Assemble encodes clips (and an optional music track) into one mp4,
// uploads it under a fresh unique name, and returns a presigned URL valid
// for one hour. The local transient file never outlives this call,
// regardless of outcome.
func (p *Pipeline) Assemble(ctx context.Context, clips []Clip, musicURL string) (string, error) {
	if len(clips) == 0 {
		return "", fmt.Errorf("no clips to assemble")
	}

	tmp, err := os.CreateTemp("", "render-*.mp4")
	if err != nil {
		return "", fmt.Errorf("failed to create transient file: %w", err)
	}
	outPath := tmp.Name()
	tmp.Close()
	defer os.Remove(outPath)

	log.Printf("[Render] Stitching %d clip(s) (music=%t)", len(clips), musicURL != "")

	args := encodeArgs(clips, musicURL, outPath)
	if err := p.run(ctx, "ffmpeg", args...); err != nil {
		return "", fmt.Errorf("ffmpeg encode: %w", err)
	}

	f, err := os.Open(outPath)
	if err != nil {
		return "", fmt.Errorf("failed to open encoded output: %w", err)
	}
	defer f.Close()

	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("failed to generate object name: %w", err)
	}
	objectName := fmt.Sprintf("video_%s.mp4", id)

	if _, err := p.store.Upload(ctx, objectName, f, "video/mp4"); err != nil {
		return "", fmt.Errorf("upload %s: %w", objectName, err)
	}

	url, err := p.store.GetSignedURL(ctx, objectName, time.Hour)
	if err != nil {
		return "", fmt.Errorf("presign %s: %w", objectName, err)
	}

	log.Printf("[Render] Uploaded %s", objectName)
	return url, nil
}

// encodeArgs builds the full ffmpeg invocation: every clip trimmed to its
// shot duration from the start and normalized to 1280x720, concatenated
// video-only in order, with the music track looped under it and the output
// cut at the shorter of the two streams.
func encodeArgs(clips []Clip, musicURL, outPath string) []string {
	args := []string{"-y"}

	for _, clip := range clips {
		args = append(args,
			"-ss", "0",
			"-t", fmt.Sprintf("%d", clip.Duration),
			"-i", clip.URL,
		)
	}

	hasMusic := musicURL != ""
	if hasMusic {
		args = append(args, "-stream_loop", "-1", "-i", musicURL)
	}

	var filter strings.Builder
	for i := range clips {
		fmt.Fprintf(&filter, "[%d:v]scale=1280:720,setsar=1[v%d];", i, i)
	}
	for i := range clips {
		fmt.Fprintf(&filter, "[v%d]", i)
	}
	fmt.Fprintf(&filter, "concat=n=%d:v=1:a=0[outv]", len(clips))

	args = append(args,
		"-filter_complex", filter.String(),
		"-map", "[outv]",
	)

	if hasMusic {
		args = append(args,
			"-map", fmt.Sprintf("%d:a", len(clips)),
			"-shortest",
		)
	}

	args = append(args,
		"-c:v", "libx264",
		"-c:a", "aac",
		"-pix_fmt", "yuv420p",
		outPath,
	)

	return args
}

func runCommand(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s: %w (%s)", name, err, strings.TrimSpace(stderr.String()))
	}
	return nil
}
