package testutil

import (
	"context"
	"sync"

	"github.com/kt1928/building-monitor/internal/notify"
)

// SentPayload is one delivery captured by CapturingSink.
type SentPayload struct {
	URL   string
	Embed notify.Embed
}

// CapturingSink is a notify.Sink fake that records deliveries and can be
// scripted to fail for specific URLs.
type CapturingSink struct {
	mu       sync.Mutex
	sent     []SentPayload
	failURLs map[string]bool
}

// NewCapturingSink returns an empty sink that accepts everything.
func NewCapturingSink() *CapturingSink {
	return &CapturingSink{failURLs: make(map[string]bool)}
}

// FailFor makes Send return a DeliveryError for the given URL.
func (s *CapturingSink) FailFor(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failURLs[url] = true
}

// Sent returns a copy of captured deliveries in order.
func (s *CapturingSink) Sent() []SentPayload {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]SentPayload, len(s.sent))
	copy(out, s.sent)
	return out
}

// Send implements notify.Sink.
func (s *CapturingSink) Send(_ context.Context, webhookURL string, embed notify.Embed) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failURLs[webhookURL] {
		return &notify.DeliveryError{URL: webhookURL, StatusCode: 500}
	}
	s.sent = append(s.sent, SentPayload{URL: webhookURL, Embed: embed})
	return nil
}
