// Package chat delivers the rendered report to a Google Chat incoming
// webhook.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// maxTextLength is the Google Chat limit for a single text message.
const maxTextLength = 4000

// Webhook posts report text to a single incoming-webhook URL.
type Webhook struct {
	url    string
	client *http.Client
	logger *log.Logger
}

// NewWebhook creates a webhook sink for the given URL.
func NewWebhook(url string, logger *log.Logger) *Webhook {
	return &Webhook{
		url:    url,
		client: &http.Client{Timeout: 30 * time.Second},
		logger: logger,
	}
}

type message struct {
	Text string `json:"text"`
}

// Deliver posts the text to the webhook, truncating it to the chat message
// limit first. A delivery failure is an error for the caller to log; it
// never invalidates the snapshot that produced the text.
func (w *Webhook) Deliver(ctx context.Context, text string) error {
	body, err := json.Marshal(message{Text: truncate(text, maxTextLength)})
	if err != nil {
		return fmt.Errorf("failed to encode chat message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json; charset=UTF-8")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to post to webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("webhook returned status %d: %s", resp.StatusCode, detail)
	}

	w.logger.Println("Report delivered to chat webhook.")
	return nil
}

// truncate shortens s to at most limit characters without splitting a rune.
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
