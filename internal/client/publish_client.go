package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/socialspark/api/internal/config"
)

// PostPublisher defines the interface for the cross-platform publish
// provider. Publishing is best effort; the provider does not guarantee
// exactly-once delivery.
type PostPublisher interface {
	PublishByURL(ctx context.Context, post *PublishRequest, mediaURL string) error
	PublishUpload(ctx context.Context, post *PublishRequest, media []byte, contentType string) error
}

// PublishRequest carries the platform-independent parts of a post
type PublishRequest struct {
	PostText     string
	Platforms    []string
	ScheduleDate *time.Time
}

// UploadPostClient implements PostPublisher against the publish provider API
type UploadPostClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

type publishJSONBody struct {
	PostText     string   `json:"post_text"`
	Platforms    []string `json:"platforms"`
	MediaURLs    []string `json:"mediaUrls"`
	ScheduleDate *string  `json:"scheduleDate,omitempty"`
}

// NewUploadPostClient creates a new publish provider client
func NewUploadPostClient(cfg *config.PublishConfig) *UploadPostClient {
	return &UploadPostClient{
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
	}
}

// IsConfigured returns true if the client has valid configuration
func (c *UploadPostClient) IsConfigured() bool {
	return c.apiKey != "" && c.baseURL != ""
}

// PublishByURL posts media by reference URL as a JSON body
func (c *UploadPostClient) PublishByURL(ctx context.Context, post *PublishRequest, mediaURL string) error {
	body := publishJSONBody{
		PostText:     post.PostText,
		Platforms:    post.Platforms,
		MediaURLs:    []string{mediaURL},
		ScheduleDate: formatScheduleDate(post.ScheduleDate),
	}

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal publish request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/posts", bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.send(req)
}

// PublishUpload posts resized media inline as a multipart body with a
// "media" file field.
func (c *UploadPostClient) PublishUpload(ctx context.Context, post *PublishRequest, media []byte, contentType string) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if err := mw.WriteField("post_text", post.PostText); err != nil {
		return fmt.Errorf("failed to write post_text field: %w", err)
	}
	for _, platform := range post.Platforms {
		if err := mw.WriteField("platforms[]", platform); err != nil {
			return fmt.Errorf("failed to write platform field: %w", err)
		}
	}
	if sched := formatScheduleDate(post.ScheduleDate); sched != nil {
		if err := mw.WriteField("scheduleDate", *sched); err != nil {
			return fmt.Errorf("failed to write scheduleDate field: %w", err)
		}
	}

	part, err := mw.CreateFormFile("media", "media"+extensionFor(contentType))
	if err != nil {
		return fmt.Errorf("failed to create media part: %w", err)
	}
	if _, err := part.Write(media); err != nil {
		return fmt.Errorf("failed to write media part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/posts", &buf)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return c.send(req)
}

func (c *UploadPostClient) send(req *http.Request) error {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	log.Printf("[Publish] POST %s", req.URL.String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("publish request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read publish response: %w", err)
	}

	log.Printf("[Publish] %d %s", resp.StatusCode, req.URL.String())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("publish provider error (status %d): %s", resp.StatusCode, string(respBody))
	}

	return nil
}

func formatScheduleDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	default:
		return ".jpg"
	}
}
