package render

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"testing"
	"time"
)

type fakeStore struct {
	uploads  []string
	presigns []string
	failUp   error
}

func (s *fakeStore) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	if s.failUp != nil {
		return "", s.failUp
	}
	if contentType != "video/mp4" {
		return "", fmt.Errorf("unexpected content type %q", contentType)
	}
	s.uploads = append(s.uploads, key)
	return key, nil
}

func (s *fakeStore) GetSignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if expiry != time.Hour {
		return "", fmt.Errorf("unexpected expiry %v", expiry)
	}
	s.presigns = append(s.presigns, key)
	return "https://store.example/" + key + "?signed", nil
}

// capturingPipeline records the ffmpeg invocation and writes a fake output
// file so the upload step has something to read.
func capturingPipeline(store *fakeStore, captured *[]string, runErr error) *Pipeline {
	p := NewPipeline(store)
	p.run = func(ctx context.Context, name string, args ...string) error {
		*captured = append([]string{name}, args...)
		if runErr != nil {
			return runErr
		}
		outPath := args[len(args)-1]
		return os.WriteFile(outPath, []byte("encoded"), 0o644)
	}
	return p
}

func TestAssemble_BuildsEncodeInvocation(t *testing.T) {
	store := &fakeStore{}
	var captured []string
	p := capturingPipeline(store, &captured, nil)

	clips := []Clip{
		{URL: "https://cdn.example/a.mp4", Duration: 5},
		{URL: "https://cdn.example/b.mp4", Duration: 8},
	}

	url, err := p.Assemble(context.Background(), clips, "https://cdn.example/music.mp3")
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	if !strings.HasPrefix(url, "https://store.example/video_") {
		t.Errorf("unexpected presigned url: %q", url)
	}

	joined := strings.Join(captured, " ")
	if captured[0] != "ffmpeg" {
		t.Fatalf("expected ffmpeg invocation, got %q", captured[0])
	}
	for _, want := range []string{
		"-t 5 -i https://cdn.example/a.mp4",
		"-t 8 -i https://cdn.example/b.mp4",
		"-stream_loop -1 -i https://cdn.example/music.mp3",
		"concat=n=2:v=1:a=0[outv]",
		"scale=1280:720",
		"-map [outv]",
		"-map 2:a -shortest",
		"-c:v libx264 -c:a aac",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("invocation missing %q:\n%s", want, joined)
		}
	}

	if len(store.uploads) != 1 {
		t.Fatalf("expected 1 upload, got %d", len(store.uploads))
	}
	if !strings.HasSuffix(store.uploads[0], ".mp4") {
		t.Errorf("unexpected object name: %q", store.uploads[0])
	}
}

func TestAssemble_NoMusicSkipsAudioMapping(t *testing.T) {
	store := &fakeStore{}
	var captured []string
	p := capturingPipeline(store, &captured, nil)

	_, err := p.Assemble(context.Background(), []Clip{{URL: "https://cdn.example/a.mp4", Duration: 4}}, "")
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}

	joined := strings.Join(captured, " ")
	if strings.Contains(joined, "-stream_loop") {
		t.Error("music loop input present without a music track")
	}
	if strings.Contains(joined, "-shortest") {
		t.Error("audio cut flag present without a music track")
	}
}

func TestAssemble_NoClips(t *testing.T) {
	p := NewPipeline(&fakeStore{})

	if _, err := p.Assemble(context.Background(), nil, ""); err == nil {
		t.Fatal("expected error for empty clip list")
	}
}

func TestAssemble_RemovesTransientFile(t *testing.T) {
	store := &fakeStore{}
	var outPath string
	p := NewPipeline(store)
	p.run = func(ctx context.Context, name string, args ...string) error {
		outPath = args[len(args)-1]
		return os.WriteFile(outPath, []byte("encoded"), 0o644)
	}

	if _, err := p.Assemble(context.Background(), []Clip{{URL: "u", Duration: 3}}, ""); err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	if _, err := os.Stat(outPath); !os.IsNotExist(err) {
		t.Errorf("transient file %s still exists after success", outPath)
	}
}

func TestAssemble_RemovesTransientFileOnEncodeFailure(t *testing.T) {
	store := &fakeStore{}
	var captured []string
	p := capturingPipeline(store, &captured, fmt.Errorf("boom"))
	var outPath string
	inner := p.run
	p.run = func(ctx context.Context, name string, args ...string) error {
		outPath = args[len(args)-1]
		return inner(ctx, name, args...)
	}

	if _, err := p.Assemble(context.Background(), []Clip{{URL: "u", Duration: 3}}, ""); err == nil {
		t.Fatal("expected encode failure")
	}
	if len(store.uploads) != 0 {
		t.Error("upload happened despite encode failure")
	}
	if _, err := os.Stat(outPath); !os.IsNotExist(err) {
		t.Errorf("transient file %s still exists after failure", outPath)
	}
}
