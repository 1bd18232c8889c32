package chat

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestWebhookDeliver(t *testing.T) {
	t.Run("posts the text as a JSON message", func(t *testing.T) {
		var got message
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Contains(t, r.Header.Get("Content-Type"), "application/json")
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		}))
		defer server.Close()

		err := NewWebhook(server.URL, discardLogger()).Deliver(context.Background(), "daily report")
		require.NoError(t, err)
		assert.Equal(t, "daily report", got.Text)
	})

	t.Run("truncates oversized reports to the chat limit", func(t *testing.T) {
		var got message
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		}))
		defer server.Close()

		long := strings.Repeat("x", maxTextLength+500)
		err := NewWebhook(server.URL, discardLogger()).Deliver(context.Background(), long)
		require.NoError(t, err)
		assert.Len(t, got.Text, maxTextLength)
	})

	t.Run("non-200 response is an error but carries the response detail", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			io.WriteString(w, "invalid webhook")
		}))
		defer server.Close()

		err := NewWebhook(server.URL, discardLogger()).Deliver(context.Background(), "report")
		assert.ErrorContains(t, err, "status 400")
		assert.ErrorContains(t, err, "invalid webhook")
	})
}

func TestTruncate(t *testing.T) {
	t.Run("short text passes through untouched", func(t *testing.T) {
		assert.Equal(t, "short", truncate("short", 10))
	})

	t.Run("multi-byte runes are never split", func(t *testing.T) {
		text := strings.Repeat("📘", 10)
		out := truncate(text, 7)
		assert.True(t, utf8.ValidString(out))
		assert.Equal(t, 7, utf8.RuneCountInString(out))
	})
}
