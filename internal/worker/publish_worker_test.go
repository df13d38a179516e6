package worker

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/socialspark/api/internal/client"
	"github.com/socialspark/api/internal/model"
	"github.com/socialspark/api/internal/queue"
)

type fakePublisher struct {
	urls        []string
	uploads     [][]byte
	uploadTypes []string
	err         error
}

func (f *fakePublisher) PublishByURL(ctx context.Context, post *client.PublishRequest, mediaURL string) error {
	if f.err != nil {
		return f.err
	}
	f.urls = append(f.urls, mediaURL)
	return nil
}

func (f *fakePublisher) PublishUpload(ctx context.Context, post *client.PublishRequest, media []byte, contentType string) error {
	if f.err != nil {
		return f.err
	}
	f.uploads = append(f.uploads, media)
	f.uploadTypes = append(f.uploadTypes, contentType)
	return nil
}

type fakeObjectStore struct {
	signedURL string
	presigned []string
}

func (f *fakeObjectStore) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	return key, nil
}

func (f *fakeObjectStore) GetSignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	f.presigned = append(f.presigned, key)
	return f.signedURL, nil
}

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, width, height))); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func assetServer(t *testing.T, body []byte, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func publishTask(t *testing.T, assetID string, platforms ...model.Platform) interface{} {
	t.Helper()
	return model.PublishPostPayload{
		AssetID:   assetID,
		Platforms: platforms,
	}
}

func TestPublishWorker_UnsupportedPlatform(t *testing.T) {
	pub := &fakePublisher{}
	tracker := &fakeTracker{}
	w := NewPublishWorker(pub, &fakeObjectStore{}, tracker)

	task := mustTask(t, queue.TaskTypePublishPost, "job-1",
		publishTask(t, "https://cdn.example/a.png", model.Platform("myspace")))

	err := w.ProcessTask(context.Background(), task)
	assertTerminal(t, err)

	if len(pub.urls)+len(pub.uploads) != 0 {
		t.Error("publish provider was called for an unsupported platform")
	}
	if len(tracker.failures) != 1 {
		t.Fatalf("expected 1 recorded failure, got %d", len(tracker.failures))
	}
}

func TestPublishWorker_SmallImagePublishesByURL(t *testing.T) {
	srv := assetServer(t, pngBytes(t, 640, 480), http.StatusOK)
	pub := &fakePublisher{}
	tracker := &fakeTracker{}
	w := NewPublishWorker(pub, &fakeObjectStore{}, tracker)

	task := mustTask(t, queue.TaskTypePublishPost, "job-2",
		publishTask(t, srv.URL+"/a.png", model.PlatformInstagram))

	if err := w.ProcessTask(context.Background(), task); err != nil {
		t.Fatalf("ProcessTask failed: %v", err)
	}

	if len(pub.urls) != 1 || pub.urls[0] != srv.URL+"/a.png" {
		t.Errorf("expected publish by original URL, got %v", pub.urls)
	}
	if len(pub.uploads) != 0 {
		t.Error("image within the size ceiling should not be re-uploaded")
	}

	if len(tracker.results) != 1 {
		t.Fatalf("expected 1 completed job, got %d", len(tracker.results))
	}
	result := tracker.results[0].(*model.PublishPostResult)
	if result.Resized {
		t.Error("result should not report a resize")
	}
}

func TestPublishWorker_OversizeImageDownscaled(t *testing.T) {
	srv := assetServer(t, pngBytes(t, 3000, 1500), http.StatusOK)
	pub := &fakePublisher{}
	tracker := &fakeTracker{}
	w := NewPublishWorker(pub, &fakeObjectStore{}, tracker)

	task := mustTask(t, queue.TaskTypePublishPost, "job-3",
		publishTask(t, srv.URL+"/big.png", model.PlatformFacebook))

	if err := w.ProcessTask(context.Background(), task); err != nil {
		t.Fatalf("ProcessTask failed: %v", err)
	}

	if len(pub.uploads) != 1 {
		t.Fatalf("expected 1 upload, got %d", len(pub.uploads))
	}
	if pub.uploadTypes[0] != "image/png" {
		t.Errorf("expected image/png upload, got %q", pub.uploadTypes[0])
	}

	img, _, err := image.Decode(bytes.NewReader(pub.uploads[0]))
	if err != nil {
		t.Fatalf("uploaded media is not a decodable image: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != 1920 || bounds.Dy() != 960 {
		t.Errorf("expected 1920x960 after downscale, got %dx%d", bounds.Dx(), bounds.Dy())
	}

	result := tracker.results[0].(*model.PublishPostResult)
	if !result.Resized {
		t.Error("result should report the resize")
	}
}

func TestPublishWorker_NonImageAsset(t *testing.T) {
	srv := assetServer(t, []byte("definitely not an image"), http.StatusOK)
	pub := &fakePublisher{}
	tracker := &fakeTracker{}
	w := NewPublishWorker(pub, &fakeObjectStore{}, tracker)

	task := mustTask(t, queue.TaskTypePublishPost, "job-4",
		publishTask(t, srv.URL+"/a.txt", model.PlatformX))

	err := w.ProcessTask(context.Background(), task)
	assertTerminal(t, err)
	if len(pub.urls)+len(pub.uploads) != 0 {
		t.Error("publish provider was called with invalid media")
	}
}

func TestPublishWorker_FetchFailureIsRetryable(t *testing.T) {
	srv := assetServer(t, nil, http.StatusBadGateway)
	pub := &fakePublisher{}
	tracker := &fakeTracker{}
	w := NewPublishWorker(pub, &fakeObjectStore{}, tracker)

	task := mustTask(t, queue.TaskTypePublishPost, "job-5",
		publishTask(t, srv.URL+"/a.png", model.PlatformInstagram))

	err := w.ProcessTask(context.Background(), task)
	assertRetryable(t, err)
}

func TestPublishWorker_ResolvesStoreKeys(t *testing.T) {
	srv := assetServer(t, pngBytes(t, 320, 240), http.StatusOK)
	store := &fakeObjectStore{signedURL: srv.URL + "/signed/img_1.png"}
	pub := &fakePublisher{}
	w := NewPublishWorker(pub, store, &fakeTracker{})

	task := mustTask(t, queue.TaskTypePublishPost, "job-6",
		publishTask(t, "img_1.png", model.PlatformLinkedin))

	if err := w.ProcessTask(context.Background(), task); err != nil {
		t.Fatalf("ProcessTask failed: %v", err)
	}

	if len(store.presigned) != 1 || store.presigned[0] != "img_1.png" {
		t.Errorf("expected presign for img_1.png, got %v", store.presigned)
	}
	if len(pub.urls) != 1 || pub.urls[0] != store.signedURL {
		t.Errorf("expected publish by presigned URL, got %v", pub.urls)
	}
}

func TestDownscalePreservesAspect(t *testing.T) {
	cases := []struct {
		w, h         int
		wantW, wantH int
	}{
		{4000, 2000, 1920, 960},
		{1000, 5000, 384, 1920},
		{1920, 1080, 1920, 1080},
	}
	for _, tc := range cases {
		got := downscale(image.NewRGBA(image.Rect(0, 0, tc.w, tc.h)), maxImageDimension)
		b := got.Bounds()
		if b.Dx() != tc.wantW || b.Dy() != tc.wantH {
			t.Errorf("downscale(%dx%d) = %dx%d, want %dx%d", tc.w, tc.h, b.Dx(), b.Dy(), tc.wantW, tc.wantH)
		}
	}
}

