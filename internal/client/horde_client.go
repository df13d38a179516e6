package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/socialspark/api/internal/config"
)

// Image generation failure categories. Faulted and timed-out are distinct so
// callers can tell a provider-declared failure from an operational timeout.
var (
	ErrMissingRequestID = errors.New("no request id returned by provider")
	ErrFaulted          = errors.New("generation faulted on provider")
	ErrTimedOut         = errors.New("generation timed out after maximum attempts")
	ErrNoGenerations    = errors.New("no images were generated")
)

// ImageGenerator defines the interface for generative image operations
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt, style, aspectRatio string) (*GenerationResult, error)
}

// HordeClient implements ImageGenerator against the Stable Horde API. It
// drives the full submit/poll/fetch protocol; a single GenerateImage call
// blocks its goroutine for the whole poll window.
type HordeClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string

	// Poll tuning, overridable in tests.
	PollInterval time.Duration
	PollBackoff  time.Duration
	MaxAttempts  int
}

// GenerationResult represents one finished image generation
type GenerationResult struct {
	ImageURL   string `json:"image_url"`
	Seed       string `json:"seed"`
	WorkerID   string `json:"worker_id"`
	WorkerName string `json:"worker_name"`
	Model      string `json:"model"`
}

type generationParams struct {
	SamplerName string  `json:"sampler_name"`
	CfgScale    float64 `json:"cfg_scale"`
	Height      int     `json:"height"`
	Width       int     `json:"width"`
	Steps       int     `json:"steps"`
}

type generateRequest struct {
	Prompt         string           `json:"prompt"`
	Params         generationParams `json:"params"`
	NSFW           bool             `json:"nsfw"`
	TrustedWorkers bool             `json:"trusted_workers"`
	SlowWorkers    bool             `json:"slow_workers"`
	Models         []string         `json:"models"`
}

type submitResponse struct {
	ID string `json:"id"`
}

type checkResponse struct {
	Done          bool `json:"done"`
	Faulted       bool `json:"faulted"`
	QueuePosition int  `json:"queue_position"`
	WaitTime      int  `json:"wait_time"`
}

type generation struct {
	Img        string `json:"img"`
	Seed       string `json:"seed"`
	WorkerID   string `json:"worker_id"`
	WorkerName string `json:"worker_name"`
	Model      string `json:"model"`
}

type statusResponse struct {
	Generations []generation `json:"generations"`
}

// NewHordeClient creates a new Stable Horde API client
func NewHordeClient(cfg *config.HordeConfig) *HordeClient {
	return &HordeClient{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL:      cfg.BaseURL,
		apiKey:       cfg.APIKey,
		PollInterval: 30 * time.Second,
		PollBackoff:  10 * time.Second,
		MaxAttempts:  40, // ~20 minutes at the default interval
	}
}

// IsConfigured returns true if the client has valid configuration
func (c *HordeClient) IsConfigured() bool {
	return c.apiKey != "" && c.baseURL != ""
}

// GenerateImage submits a generation request and blocks until the provider
// reports done, faults, or the attempt budget runs out.
func (c *HordeClient) GenerateImage(ctx context.Context, prompt, style, aspectRatio string) (*GenerationResult, error) {
	width, height := dimensionsFor(aspectRatio)

	payload := generateRequest{
		Prompt: prompt,
		Params: generationParams{
			SamplerName: "k_euler",
			CfgScale:    7.5,
			Height:      height,
			Width:       width,
			Steps:       20,
		},
		NSFW:           false,
		TrustedWorkers: true,
		SlowWorkers:    true,
		Models:         []string{"stable_diffusion"},
	}

	log.Printf("[StableHorde] Submitting generation (%dx%d, style=%s)", width, height, style)

	requestID, err := c.submit(ctx, &payload)
	if err != nil {
		return nil, err
	}

	log.Printf("[StableHorde] Request ID: %s", requestID)

	return c.waitForGeneration(ctx, requestID)
}

// submit POSTs the generation request and captures the provider-assigned id
func (c *HordeClient) submit(ctx context.Context, payload *generateRequest) (string, error) {
	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/generate/async", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to submit generation request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read submit response: %w", err)
	}

	if resp.StatusCode != http.StatusAccepted {
		return "", fmt.Errorf("horde submit error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var submitResp submitResponse
	if err := json.Unmarshal(respBody, &submitResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal submit response: %w", err)
	}

	if submitResp.ID == "" {
		return "", fmt.Errorf("submit response %q: %w", string(respBody), ErrMissingRequestID)
	}

	return submitResp.ID, nil
}

// waitForGeneration polls the check endpoint on a fixed interval up to
// MaxAttempts. Non-200 responses and network timeouts are transient and
// spend attempts; a faulted flag aborts immediately.
func (c *HordeClient) waitForGeneration(ctx context.Context, requestID string) (*GenerationResult, error) {
	for attempt := 1; attempt <= c.MaxAttempts; attempt++ {
		log.Printf("[StableHorde] Checking status, attempt %d/%d (request=%s)", attempt, c.MaxAttempts, requestID)

		status, err := c.check(ctx, requestID)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Printf("[StableHorde] Status check failed: %v, retrying", err)
			if err := sleep(ctx, c.PollBackoff); err != nil {
				return nil, err
			}
			continue
		}

		if status.Faulted {
			return nil, fmt.Errorf("request %s: %w", requestID, ErrFaulted)
		}

		if status.Done {
			log.Printf("[StableHorde] Generation completed, fetching results...")
			return c.fetchResult(ctx, requestID)
		}

		if status.QueuePosition > 0 {
			log.Printf("[StableHorde] Queue position: %d, estimated wait: %ds", status.QueuePosition, status.WaitTime)
		}

		if err := sleep(ctx, c.PollInterval); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("request %s: %w", requestID, ErrTimedOut)
}

// check queries generation progress once
func (c *HordeClient) check(ctx context.Context, requestID string) (*checkResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/generate/check/"+requestID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("status check request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read status response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("horde status error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var status checkResponse
	if err := json.Unmarshal(respBody, &status); err != nil {
		return nil, fmt.Errorf("failed to unmarshal status response: %w", err)
	}

	return &status, nil
}

// fetchResult retrieves the final generation listing. Reaching done with an
// empty listing is still a hard failure.
func (c *HordeClient) fetchResult(ctx context.Context, requestID string) (*GenerationResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/generate/status/"+requestID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("result request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read result response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("horde result error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var result statusResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal result response: %w", err)
	}

	if len(result.Generations) == 0 {
		return nil, fmt.Errorf("request %s: %w", requestID, ErrNoGenerations)
	}

	gen := result.Generations[0]
	return &GenerationResult{
		ImageURL:   gen.Img,
		Seed:       gen.Seed,
		WorkerID:   gen.WorkerID,
		WorkerName: gen.WorkerName,
		Model:      gen.Model,
	}, nil
}

func (c *HordeClient) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.apiKey)
}

// dimensionsFor converts an aspect ratio to provider dimensions
func dimensionsFor(aspectRatio string) (int, int) {
	switch aspectRatio {
	case "16:9":
		return 768, 432
	case "9:16":
		return 432, 768
	case "4:3":
		return 640, 480
	case "3:4":
		return 480, 640
	default: // 1:1
		return 512, 512
	}
}

// sleep waits for d or until ctx is cancelled
func sleep(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
