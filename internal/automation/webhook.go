package automation

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
)

// ActionQuizCompleted is sent when a quiz session reaches its results
const ActionQuizCompleted = "quiz_completed"

// ErrDisabled is returned by Send when no webhook URL is configured
var ErrDisabled = errors.New("automation webhook not configured")

// Client posts wizard events to an automation workflow webhook
type Client struct {
	url   string
	httpc *http.Client
}

// NewClient creates a client for url. An empty url yields a disabled client.
func NewClient(url string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{url: url, httpc: &http.Client{Timeout: timeout}}
}

// Enabled reports whether a webhook URL is configured
func (c *Client) Enabled() bool {
	return c != nil && c.url != ""
}

// Send posts {"action": action, ...payload} as JSON
func (c *Client) Send(ctx context.Context, action string, payload map[string]any) error {
	if !c.Enabled() {
		return ErrDisabled
	}

	body := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		body[k] = v
	}
	body["action"] = action

	b, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", action, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("webhook %s: %w", action, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("webhook %s: status %d: %s", action, resp.StatusCode, string(msg))
	}
	return nil
}

// Notify sends an event in the background. Failures are logged and otherwise ignored.
func (c *Client) Notify(action string, payload map[string]any) {
	if !c.Enabled() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), c.httpc.Timeout)
		defer cancel()
		if err := c.Send(ctx, action, payload); err != nil {
			log.Printf("Failed to notify automation webhook: %v", err)
		}
	}()
}
