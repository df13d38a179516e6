package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/socialspark/api/internal/config"
)

// ErrNoHits is returned when a stock search matches nothing. Callers decide
// whether that is fatal (strict renders) or skippable.
var ErrNoHits = errors.New("no search hits")

// StockMedia defines the interface for stock video and music lookups
type StockMedia interface {
	SearchVideo(ctx context.Context, query string) (string, error)
	SearchMusic(ctx context.Context, query string) (string, error)
}

// PixabayClient implements StockMedia for the Pixabay API
type PixabayClient struct {
	httpClient *http.Client
	apiKey     string
	videoURL   string
	musicURL   string
}

type videoSearchResponse struct {
	Hits []struct {
		Videos struct {
			Tiny struct {
				URL string `json:"url"`
			} `json:"tiny"`
		} `json:"videos"`
	} `json:"hits"`
}

type musicSearchResponse struct {
	Hits []struct {
		AudioURL string `json:"audio_url"`
		Duration int    `json:"duration"`
	} `json:"hits"`
}

// NewPixabayClient creates a new Pixabay API client
func NewPixabayClient(cfg *config.PixabayConfig) *PixabayClient {
	return &PixabayClient{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		apiKey:   cfg.APIKey,
		videoURL: cfg.VideoURL,
		musicURL: cfg.MusicURL,
	}
}

// IsConfigured returns true if the client has valid configuration
func (c *PixabayClient) IsConfigured() bool {
	return c.apiKey != ""
}

// SearchVideo finds stock footage for a search phrase and returns the URL of
// the first hit's small rendition.
func (c *PixabayClient) SearchVideo(ctx context.Context, query string) (string, error) {
	var result videoSearchResponse
	if err := c.search(ctx, c.videoURL, query, &result); err != nil {
		return "", fmt.Errorf("video search %q: %w", query, err)
	}

	if len(result.Hits) == 0 {
		return "", fmt.Errorf("video search %q: %w", query, ErrNoHits)
	}

	return result.Hits[0].Videos.Tiny.URL, nil
}

// SearchMusic finds a stock music track matching a description
func (c *PixabayClient) SearchMusic(ctx context.Context, query string) (string, error) {
	var result musicSearchResponse
	if err := c.search(ctx, c.musicURL, query, &result); err != nil {
		return "", fmt.Errorf("music search %q: %w", query, err)
	}

	if len(result.Hits) == 0 {
		return "", fmt.Errorf("music search %q: %w", query, ErrNoHits)
	}

	return result.Hits[0].AudioURL, nil
}

func (c *PixabayClient) search(ctx context.Context, base, query string, result interface{}) error {
	u, err := url.Parse(base)
	if err != nil {
		return fmt.Errorf("invalid search URL: %w", err)
	}

	params := u.Query()
	params.Set("key", c.apiKey)
	params.Set("q", query)
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	log.Printf("[Pixabay] GET %s?q=%s", base, url.QueryEscape(query))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read search response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("pixabay error (status %d): %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("failed to unmarshal search response: %w", err)
	}

	return nil
}
