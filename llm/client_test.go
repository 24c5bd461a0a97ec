/*
 * AI-Shell - Natural language to shell commands
 * License: MIT
 */
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cheney-yan/ai-shell/models"
)

func sseFrame(content string) string {
	return fmt.Sprintf("data: {\"choices\":[{\"delta\":{\"content\":%q}}]}\n\n", content)
}

func newStreamServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestStreamCompletionDeliversChunks(t *testing.T) {
	srv := newStreamServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var payload struct {
			Model    string `json:"model"`
			Stream   bool   `json:"stream"`
			N        int    `json:"n"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.True(t, payload.Stream)
		assert.Equal(t, "gpt-4o-mini", payload.Model)
		assert.Equal(t, 1, payload.N)
		require.Len(t, payload.Messages, 2)
		assert.Equal(t, "system", payload.Messages[0].Role)

		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = fmt.Fprint(w, sseFrame("ls"))
		_, _ = fmt.Fprint(w, sseFrame(" -la"))
		_, _ = fmt.Fprint(w, "data: [DONE]\n\n")
	})

	client := NewStreamClient(zap.NewNop(), 1, time.Millisecond)

	var received strings.Builder
	err := client.StreamCompletion(context.Background(), Params{
		Key:      "test-key",
		Model:    "gpt-4o-mini",
		Endpoint: srv.URL,
		Number:   1,
		Messages: []models.Message{
			{Role: "system", Content: "generate a command"},
			{Role: "user", Content: "list files"},
		},
	}, func(chunk string) error {
		received.WriteString(chunk)
		return nil
	})

	require.NoError(t, err)
	assert.Contains(t, received.String(), "ls")
	assert.Contains(t, received.String(), "[DONE]")
}

func TestStreamCompletionPromptBecomesUserMessage(t *testing.T) {
	srv := newStreamServer(t, func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Len(t, payload.Messages, 1)
		assert.Equal(t, "user", payload.Messages[0].Role)
		assert.Equal(t, "list files", payload.Messages[0].Content)

		_, _ = fmt.Fprint(w, "data: [DONE]\n\n")
	})

	client := NewStreamClient(zap.NewNop(), 1, time.Millisecond)
	err := client.StreamCompletion(context.Background(), Params{
		Key:      "k",
		Endpoint: srv.URL,
		Prompt:   "list files",
	}, func(string) error { return nil })

	require.NoError(t, err)
}

func TestStreamCompletionInvalidRoleFallsBackToUser(t *testing.T) {
	srv := newStreamServer(t, func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Messages []struct {
				Role string `json:"role"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		require.Len(t, payload.Messages, 1)
		assert.Equal(t, "user", payload.Messages[0].Role)

		_, _ = fmt.Fprint(w, "data: [DONE]\n\n")
	})

	client := NewStreamClient(zap.NewNop(), 1, time.Millisecond)
	err := client.StreamCompletion(context.Background(), Params{
		Key:      "k",
		Endpoint: srv.URL,
		Messages: []models.Message{{Role: "robot", Content: "hi"}},
	}, func(string) error { return nil })

	require.NoError(t, err)
}

func TestStreamCompletionRateLimitBecomesKnownError(t *testing.T) {
	srv := newStreamServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": "rate limit exceeded"}`))
	})

	client := NewStreamClient(zap.NewNop(), 1, time.Millisecond)
	err := client.StreamCompletion(context.Background(), Params{
		Key:      "k",
		Endpoint: srv.URL,
		Prompt:   "hi",
	}, func(string) error { return nil })

	var known *KnownError
	require.ErrorAs(t, err, &known)
	assert.Equal(t, "RATE_LIMIT", known.Name)
}

func TestStreamCompletionServerErrorIsRetried(t *testing.T) {
	attempts := 0
	srv := newStreamServer(t, func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = fmt.Fprint(w, "data: [DONE]\n\n")
	})

	client := NewStreamClient(zap.NewNop(), 3, time.Millisecond)
	err := client.StreamCompletion(context.Background(), Params{
		Key:      "k",
		Endpoint: srv.URL,
		Prompt:   "hi",
	}, func(string) error { return nil })

	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
}

func TestStreamCompletionSinkErrorAborts(t *testing.T) {
	srv := newStreamServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = fmt.Fprint(w, sseFrame("a"))
	})

	client := NewStreamClient(zap.NewNop(), 1, time.Millisecond)
	sinkErr := fmt.Errorf("sink closed")
	err := client.StreamCompletion(context.Background(), Params{
		Key:      "k",
		Endpoint: srv.URL,
		Prompt:   "hi",
	}, func(string) error { return sinkErr })

	assert.ErrorIs(t, err, sinkErr)
}

func TestClassifyErrorPassesUnknownThrough(t *testing.T) {
	plain := fmt.Errorf("something odd")
	assert.Equal(t, plain, ClassifyError(plain))
	assert.NoError(t, ClassifyError(nil))
}
