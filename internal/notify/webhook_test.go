package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookClient_Send(t *testing.T) {
	var gotBody []byte
	var gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewWebhookClient()
	err := c.Send(context.Background(), srv.URL, Embed{Title: "test", Color: embedColor})
	require.NoError(t, err)

	assert.Equal(t, "application/json", gotContentType)

	var payload webhookPayload
	require.NoError(t, json.Unmarshal(gotBody, &payload))
	require.Len(t, payload.Embeds, 1)
	assert.Equal(t, "test", payload.Embeds[0].Title)
	assert.Equal(t, embedColor, payload.Embeds[0].Color)
}

func TestWebhookClient_Send_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewWebhookClient()
	err := c.Send(context.Background(), srv.URL, Embed{Title: "test"})
	require.Error(t, err)
	assert.True(t, IsDeliveryError(err))

	var de *DeliveryError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, http.StatusTooManyRequests, de.StatusCode)
}

func TestWebhookClient_Send_TransportError(t *testing.T) {
	c := NewWebhookClient()
	err := c.Send(context.Background(), "http://127.0.0.1:1/hook", Embed{})
	require.Error(t, err)
	assert.True(t, IsDeliveryError(err))
}

func TestDeliveryError_TruncatesURL(t *testing.T) {
	long := "https://hooks.example/api/webhooks/1234567890/secret-token-value"
	err := &DeliveryError{URL: long, StatusCode: 404}
	assert.NotContains(t, err.Error(), "secret-token-value")
	assert.Contains(t, err.Error(), "status 404")
}
