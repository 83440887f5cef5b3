// Package notify formats per-owner alert payloads and delivers them to
// webhook sinks. Delivery is best-effort and decoupled from persistence:
// a failed send is logged and counted, never retried within the run, and
// never rolls back committed state.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/kt1928/building-monitor/internal/metrics"
)

// embedColor is the accent color used on every payload.
const embedColor = 0x3498db

// Embed is the structured alert payload accepted by the webhook sink.
type Embed struct {
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Color       int          `json:"color"`
	Timestamp   string       `json:"timestamp"`
	Fields      []EmbedField `json:"fields"`
	Footer      *EmbedFooter `json:"footer,omitempty"`
}

// EmbedField is one name/value block inside an Embed.
type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// EmbedFooter is the footer line of an Embed.
type EmbedFooter struct {
	Text string `json:"text"`
}

// webhookPayload is the top-level body posted to the sink.
type webhookPayload struct {
	Embeds []Embed `json:"embeds"`
}

// DeliveryError is a failed webhook send. Logged per owner, never
// escalated past the dispatcher.
type DeliveryError struct {
	URL        string
	StatusCode int // 0 for transport errors
	Err        error
}

func (e *DeliveryError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("webhook delivery to %s: status %d", truncateURL(e.URL), e.StatusCode)
	}
	return fmt.Sprintf("webhook delivery to %s: %v", truncateURL(e.URL), e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// IsDeliveryError reports whether err is a DeliveryError.
func IsDeliveryError(err error) bool {
	var de *DeliveryError
	return errors.As(err, &de)
}

// Sink delivers one embed to a webhook URL.
type Sink interface {
	Send(ctx context.Context, webhookURL string, embed Embed) error
}

// WebhookClient posts embeds as JSON to webhook URLs. Implements Sink.
type WebhookClient struct {
	client *http.Client
}

// NewWebhookClient returns a client with a 30s request timeout.
func NewWebhookClient() *WebhookClient {
	return &WebhookClient{client: &http.Client{Timeout: 30 * time.Second}}
}

// Send implements Sink. Any non-2xx response is a DeliveryError.
func (c *WebhookClient) Send(ctx context.Context, webhookURL string, embed Embed) error {
	body, err := json.Marshal(webhookPayload{Embeds: []Embed{embed}})
	if err != nil {
		return fmt.Errorf("encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.NotificationCounter.WithLabelValues("error").Inc()
		return &DeliveryError{URL: webhookURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.NotificationCounter.WithLabelValues("error").Inc()
		return &DeliveryError{URL: webhookURL, StatusCode: resp.StatusCode}
	}

	metrics.NotificationCounter.WithLabelValues("ok").Inc()
	return nil
}

// truncateURL keeps webhook tokens out of logs and error strings.
func truncateURL(u string) string {
	if len(u) <= 30 {
		return u
	}
	return u[:30] + "..."
}
