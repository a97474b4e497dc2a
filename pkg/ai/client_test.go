package ai

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

func newTestClient(url string) *Client {
	c := NewClient(url, 5*time.Second, 3)
	c.sleep = func(time.Duration) {}
	return c
}

func TestChatSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"response": "hello there", "tokens_used": 12, "model": "test-model"}`))
	}))
	defer srv.Close()

	reply, err := newTestClient(srv.URL).Chat(context.Background(), nil, "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello there", reply.Content)
	require.NotNil(t, reply.TokensUsed)
	assert.Equal(t, 12, *reply.TokensUsed)
	require.NotNil(t, reply.ModelUsed)
	assert.Equal(t, "test-model", *reply.ModelUsed)
	assert.GreaterOrEqual(t, reply.ResponseTimeMs, 0)
}

func TestChatRetriesTransportErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		if n < 3 {
			// Drop the connection to simulate a transport failure
			hj, ok := w.(http.Hijacker)
			require.True(t, ok)
			conn, _, err := hj.Hijack()
			require.NoError(t, err)
			conn.Close()
			return
		}
		w.Write([]byte(`{"response": "recovered"}`))
	}))
	defer srv.Close()

	reply, err := newTestClient(srv.URL).Chat(context.Background(), nil, "hello")
	require.NoError(t, err)
	assert.Equal(t, "recovered", reply.Content)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestChatExhaustsRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Millisecond)
		hj := w.(http.Hijacker)
		conn, _, _ := hj.Hijack()
		conn.Close()
	}))
	defer srv.Close()

	var calls int32
	c := newTestClient(srv.URL)
	c.HTTPClient.Transport = &countingTransport{calls: &calls}

	reply, err := c.Chat(context.Background(), nil, "hello")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))

	// Timing and a user-facing message survive the failure
	require.NotNil(t, reply)
	assert.True(t, reply.IsError)
	assert.Greater(t, reply.ResponseTimeMs, 0)
	assert.Equal(t, "Unable to connect to AI service. Please try again later.", reply.ErrorMessage)
}

func TestChatTimeoutMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 20*time.Millisecond, 2)
	c.sleep = func(time.Duration) {}

	reply, err := c.Chat(context.Background(), nil, "hello")
	require.ErrorIs(t, err, ErrUnavailable)
	require.NotNil(t, reply)
	assert.True(t, reply.IsError)
	assert.Greater(t, reply.ResponseTimeMs, 0)
	assert.Equal(t, "AI service timeout. Please try again.", reply.ErrorMessage)
}

func TestChatDoesNotRetryHTTPErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	reply, err := newTestClient(srv.URL).Chat(context.Background(), nil, "hello")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))

	require.NotNil(t, reply)
	assert.Equal(t, "AI service error: status 500", reply.ErrorMessage)
}

func TestChatSendsHistoryAndMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, decodeJSON(r, &req))
		assert.Equal(t, "second", req.Message)
		assert.Len(t, req.ConversationHistory, 2)
		// messages = history + the new user turn
		assert.Len(t, req.Messages, 3)
		assert.Equal(t, "user", req.Messages[2].Role)
		assert.Equal(t, "second", req.Messages[2].Content)
		w.Write([]byte(`{"response": "ok"}`))
	}))
	defer srv.Close()

	history := []Message{
		{Role: "user", Content: "first"},
		{Role: "assistant", Content: "first reply"},
	}
	_, err := newTestClient(srv.URL).Chat(context.Background(), history, "second")
	require.NoError(t, err)
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name        string
		healthCode  int
		chatCode    int
		wantHealthy bool
	}{
		{"health ok", http.StatusOK, 0, true},
		{"health down chat ok", http.StatusInternalServerError, http.StatusOK, true},
		{"health down chat 400 still counts", http.StatusNotFound, http.StatusBadRequest, true},
		{"everything down", http.StatusInternalServerError, http.StatusInternalServerError, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == "/health" {
					w.WriteHeader(tt.healthCode)
					return
				}
				w.WriteHeader(tt.chatCode)
			}))
			defer srv.Close()

			assert.Equal(t, tt.wantHealthy, newTestClient(srv.URL).HealthCheck(context.Background()))
		})
	}
}

// helpers

type countingTransport struct {
	calls *int32
}

func (c *countingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	atomic.AddInt32(c.calls, 1)
	return http.DefaultTransport.RoundTrip(req)
}

func decodeJSON(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
