package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

// ErrUnavailable wraps every failure to obtain a reply from the
// upstream AI service. Callers map it to a 503.
var ErrUnavailable = errors.New("ai service unavailable")

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Reply is the normalized result of one upstream chat call. On
// failure Content is empty and ErrorMessage carries a user-facing
// description of what went wrong; ResponseTimeMs is populated either
// way.
type Reply struct {
	Content        string
	TokensUsed     *int
	ModelUsed      *string
	ResponseTimeMs int
	IsError        bool
	ErrorMessage   string
}

type chatRequest struct {
	Messages            []Message `json:"messages"`
	Message             string    `json:"message"`
	ConversationHistory []Message `json:"conversation_history"`
}

// Client talks to the external AI chat service.
type Client struct {
	BaseURL    string
	MaxRetries int
	HTTPClient *http.Client

	// sleep is swappable for tests
	sleep func(time.Duration)
}

func NewClient(baseURL string, timeout time.Duration, maxRetries int) *Client {
	return &Client{
		BaseURL:    baseURL,
		MaxRetries: maxRetries,
		HTTPClient: &http.Client{
			Timeout: timeout,
		},
		sleep: time.Sleep,
	}
}

// Chat sends the conversation to the upstream service and normalizes
// whatever shape it answers with. Transport failures (timeouts,
// connection errors) are retried with a linear backoff; HTTP error
// statuses are not retried. ResponseTimeMs covers the whole exchange
// including retries.
func (c *Client) Chat(ctx context.Context, history []Message, userMessage string) (*Reply, error) {
	payload := chatRequest{
		Messages:            append(append([]Message{}, history...), Message{Role: "user", Content: userMessage}),
		Message:             userMessage,
		ConversationHistory: history,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	start := time.Now()

	var lastErr error
	var lastMsg string
	for attempt := 0; attempt < c.MaxRetries; attempt++ {
		reply, retryable, friendly, err := c.doChat(ctx, body)
		if err == nil {
			reply.ResponseTimeMs = int(time.Since(start).Milliseconds())
			return reply, nil
		}

		lastErr = err
		lastMsg = friendly
		if !retryable {
			break
		}
		if attempt < c.MaxRetries-1 {
			c.sleep(time.Duration(attempt+1) * time.Second)
		}
	}

	// A failed exchange still reports how long it took and a message
	// fit to show the user.
	failed := &Reply{
		ResponseTimeMs: int(time.Since(start).Milliseconds()),
		IsError:        true,
		ErrorMessage:   lastMsg,
	}
	return failed, fmt.Errorf("%w: %v", ErrUnavailable, lastErr)
}

// doChat performs a single POST /chat exchange. The second return
// value reports whether the failure is worth retrying, the third is a
// user-facing description of it.
func (c *Client) doChat(ctx context.Context, body []byte) (*Reply, bool, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/chat", bytes.NewReader(body))
	if err != nil {
		return nil, false, fmt.Sprintf("Unexpected error: %v", err), fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return nil, true, "AI service timeout. Please try again.", fmt.Errorf("ai request timed out: %w", err)
		}
		// Connection refused, reset, DNS.
		return nil, true, "Unable to connect to AI service. Please try again later.", fmt.Errorf("ai request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Sprintf("Unexpected error: %v", err), fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		friendly := fmt.Sprintf("AI service error: status %d", resp.StatusCode)
		return nil, false, friendly, fmt.Errorf("ai error: status %d, body: %s", resp.StatusCode, truncate(string(respBody), 512))
	}

	reply, err := parseReply(respBody)
	if err != nil {
		return nil, false, fmt.Sprintf("Unexpected error: %v", err), err
	}
	return reply, false, "", nil
}

// HealthCheck probes the upstream service. GET /health is tried first;
// services without a health endpoint get a minimal POST /chat ping
// instead, where even a 400 proves the service is answering.
func (c *Client) HealthCheck(ctx context.Context) bool {
	healthCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(healthCtx, http.MethodGet, c.BaseURL+"/health", nil)
	if err == nil {
		if resp, err := c.HTTPClient.Do(req); err == nil {
			defer resp.Body.Close()
			io.Copy(io.Discard, resp.Body)
			if resp.StatusCode == http.StatusOK {
				return true
			}
		}
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	body, _ := json.Marshal(chatRequest{Message: "ping", Messages: []Message{}})
	req, err = http.NewRequestWithContext(pingCtx, http.MethodPost, c.BaseURL+"/chat", bytes.NewReader(body))
	if err != nil {
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	return resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusBadRequest
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
