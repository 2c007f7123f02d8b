package registration

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/phrazzld/mutuals/internal/platform/transport"
	"github.com/phrazzld/mutuals/internal/redact"
)

// Client performs the registration call.
type Client struct {
	poster transport.Poster
	url    string
	logger *slog.Logger
}

// NewClient creates a Client that registers against url.
func NewClient(poster transport.Poster, url string, logger *slog.Logger) *Client {
	return &Client{
		poster: poster,
		url:    url,
		logger: logger.With("component", "registration"),
	}
}

// Register sends req and returns the validated response. Failures are not
// retried: without a webhook and token there is nothing left to do.
func (c *Client) Register(ctx context.Context, req Request) (*Response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to marshal request: %v", ErrRegistrationFailed, err)
	}

	c.logger.InfoContext(ctx, "registering", "url", c.url, "reg_no", req.RegNo)

	respBody, err := c.poster.PostJSON(ctx, c.url, body, "")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRegistrationFailed, err)
	}

	c.logger.InfoContext(ctx, "registration response received",
		"response", redact.JSON(respBody, "accessToken"))

	resp, err := ParseResponse(respBody)
	if err != nil {
		return nil, err
	}

	if resp.UsersMissing {
		c.logger.WarnContext(ctx, "registration response has no users list, continuing with an empty graph")
	}
	c.logger.InfoContext(ctx, "registration complete",
		"webhook", resp.Webhook,
		"users", len(resp.Users))

	return resp, nil
}
