package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/mutuals/internal/config"
)

// Poster sends a JSON body to url and returns the response body.
// token is sent verbatim as the Authorization header when non-empty.
type Poster interface {
	PostJSON(ctx context.Context, url string, body []byte, token string) ([]byte, error)
}

// Client is the HTTP implementation of Poster.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger
}

var _ Poster = (*Client)(nil)

// NewClient creates a Client whose requests time out after cfg.Timeout.
func NewClient(cfg config.HTTPConfig, logger *slog.Logger) *Client {
	return NewClientWithHTTP(&http.Client{Timeout: cfg.Timeout}, logger)
}

// NewClientWithHTTP creates a Client around an existing http.Client.
func NewClientWithHTTP(hc *http.Client, logger *slog.Logger) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		httpClient: hc,
		logger:     logger.With("component", "transport"),
	}
}

// PostJSON implements Poster.
func (c *Client) PostJSON(ctx context.Context, url string, body []byte, token string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrRequestFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.Debug("failed to close response body", "error", cerr)
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response body: %v", ErrRequestFailed, err)
	}

	c.logger.Debug("request completed",
		"url", url,
		"status_code", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
		"response_bytes", len(respBody))

	if resp.StatusCode >= http.StatusBadRequest {
		snippet := respBody
		if len(snippet) > maxErrorBody {
			snippet = snippet[:maxErrorBody]
		}
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(bytes.TrimSpace(snippet)),
		}
	}

	return respBody, nil
}
