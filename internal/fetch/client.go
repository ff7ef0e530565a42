package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
)

// Client retrieves raw page bodies over plain HTTP, presenting a fixed
// browser-like identity. One client is reused for every fetch of a run.
type Client struct {
	hc        *http.Client
	userAgent string
	maxBody   int64
}

// NewClient creates the fetcher for the plain path.
func NewClient(userAgent string, timeout time.Duration, maxBody int64) *Client {
	return &Client{
		hc:        &http.Client{Timeout: timeout},
		userAgent: userAgent,
		maxBody:   maxBody,
	}
}

// Fetch performs one GET of targetURL and returns the body. A failure
// status counts as a fetch error; bodies are read through the size cap.
func (c *Client) Fetch(ctx context.Context, targetURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request for %s: %w", targetURL, err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", targetURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("fetching %s returned status %d", targetURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody))
	if err != nil {
		return "", fmt.Errorf("failed to read response from %s: %w", targetURL, err)
	}

	log.Debug("page fetched", "url", targetURL, "status", resp.StatusCode, "bytes", len(body))
	return string(body), nil
}
