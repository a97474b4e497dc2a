package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReply(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantContent string
		wantTokens  *int
		wantModel   *string
	}{
		{
			name:        "bare string",
			body:        `"hi"`,
			wantContent: "hi",
		},
		{
			name:        "response key",
			body:        `{"response": "hi"}`,
			wantContent: "hi",
		},
		{
			name:        "message key",
			body:        `{"message": "hi"}`,
			wantContent: "hi",
		},
		{
			name:        "content key",
			body:        `{"content": "hi"}`,
			wantContent: "hi",
		},
		{
			name:        "openai chat shape",
			body:        `{"choices": [{"message": {"content": "hi"}}]}`,
			wantContent: "hi",
		},
		{
			name:        "openai completion shape",
			body:        `{"choices": [{"text": "hi"}]}`,
			wantContent: "hi",
		},
		{
			name:        "data string",
			body:        `{"data": "hi"}`,
			wantContent: "hi",
		},
		{
			name:        "data object",
			body:        `{"data": {"response": "hi"}}`,
			wantContent: "hi",
		},
		{
			name:        "result key",
			body:        `{"result": "hi"}`,
			wantContent: "hi",
		},
		{
			name:        "answer key",
			body:        `{"answer": "hi"}`,
			wantContent: "hi",
		},
		{
			name:        "response wins over answer",
			body:        `{"answer": "no", "response": "hi"}`,
			wantContent: "hi",
		},
		{
			name:        "unknown shape falls back to raw body",
			body:        `{"weird": true}`,
			wantContent: `{"weird": true}`,
		},
		{
			name:        "top level tokens and model",
			body:        `{"response": "hi", "tokens_used": 42, "model": "gpt-x"}`,
			wantContent: "hi",
			wantTokens:  intPtr(42),
			wantModel:   strPtr("gpt-x"),
		},
		{
			name:        "usage tokens and model_used",
			body:        `{"response": "hi", "usage": {"total_tokens": 7}, "model_used": "llama"}`,
			wantContent: "hi",
			wantTokens:  intPtr(7),
			wantModel:   strPtr("llama"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply, err := parseReply([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.wantContent, reply.Content)
			assert.Equal(t, tt.wantTokens, reply.TokensUsed)
			assert.Equal(t, tt.wantModel, reply.ModelUsed)
		})
	}
}

func TestParseReplyInvalidJSON(t *testing.T) {
	_, err := parseReply([]byte("not json"))
	assert.Error(t, err)
}

func intPtr(v int) *int       { return &v }
func strPtr(s string) *string { return &s }
