// Package rebuild notifies the hosting provider that the site content
// changed, through a build webhook run off the request path.
package rebuild

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrNotConfigured is returned when no webhook URL is set.
var ErrNotConfigured = errors.New("rebuild: webhook url not configured")

// Trigger starts one rebuild.
type Trigger interface {
	Trigger(ctx context.Context) error
}

// Hook POSTs to a build webhook.
type Hook struct {
	url    string
	client *http.Client
}

// NewHook returns a Hook for url. A nil client gets a 15s timeout client.
func NewHook(url string, client *http.Client) *Hook {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Hook{url: strings.TrimSpace(url), client: client}
}

// Configured reports whether a webhook URL is set.
func (h *Hook) Configured() bool { return h != nil && h.url != "" }

// Trigger posts an empty JSON body. Any non-2xx response is an error.
func (h *Hook) Trigger(ctx context.Context) error {
	if !h.Configured() {
		return ErrNotConfigured
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, strings.NewReader("{}"))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("call webhook: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}
