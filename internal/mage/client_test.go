package mage

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chatReply(t *testing.T, w http.ResponseWriter, content string) {
	t.Helper()
	err := json.NewEncoder(w).Encode(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"role": "assistant", "content": content}},
		},
	})
	require.NoError(t, err)
}

func newTestClient(url string) *Client {
	c := New("test-key")
	c.baseURL = url
	c.http = &http.Client{Timeout: 2 * time.Second}
	return c
}

func TestTransformDisabledWithoutKey(t *testing.T) {
	c := New("")
	_, err := c.Transform(context.Background(), "feed my dog")
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestTransformReturnsFantasyDescription(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "feed my dog", req.Messages[1].Content)

		chatReply(t, w, "Feed the guardian beast of the royal palace")
	}))
	defer srv.Close()

	out, err := newTestClient(srv.URL).Transform(context.Background(), "feed my dog")
	require.NoError(t, err)
	assert.Equal(t, "Feed the guardian beast of the royal palace", out)
	assert.Equal(t, "Bearer test-key", gotAuth)
}

func TestTransformRetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		chatReply(t, w, "Slay the dragon of the east")
	}))
	defer srv.Close()

	out, err := newTestClient(srv.URL).Transform(context.Background(), "slay dragon")
	require.NoError(t, err)
	assert.Equal(t, "Slay the dragon of the east", out)
	assert.Equal(t, int32(2), calls.Load())
}

func TestTransformDoesNotRetryAuthFailure(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "Incorrect API key provided", "type": "invalid_request_error"},
		})
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Transform(context.Background(), "slay dragon")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Incorrect API key provided")
	assert.Equal(t, int32(1), calls.Load())
}

func TestTransformHonorsContextDuringBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := newTestClient(srv.URL).Transform(ctx, "slay dragon")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
