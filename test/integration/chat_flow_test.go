package integration

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ai-chat-be/internal/dto"
	"ai-chat-be/internal/model"
	"ai-chat-be/internal/pkg/serverutils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// stubAiUpstream mimics the Python AI service contract.
func stubAiUpstream(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func getJSON(t *testing.T, app *fiber.App, path, token string) *serverutils.BaseResponse[json.RawMessage] {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var result serverutils.BaseResponse[json.RawMessage]
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	result.Code = resp.StatusCode
	return &result
}

func jsonBody(t *testing.T, v interface{}) *strings.Reader {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	return strings.NewReader(string(raw))
}

func cleanupChatUser(db *gorm.DB, userId interface{}) {
	var sessionIds []string
	db.Model(&model.ChatSession{}).Where("user_id = ?", userId).Pluck("id", &sessionIds)
	if len(sessionIds) > 0 {
		db.Where("session_id IN ?", sessionIds).Delete(&model.ChatMessage{})
	}
	db.Where("user_id = ?", userId).Delete(&model.ChatSession{})
	db.Where("user_id = ?", userId).Delete(&model.UserRefreshToken{})
	db.Unscoped().Delete(&model.User{}, userId)
}

func TestChatFlow(t *testing.T) {
	upstream := stubAiUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&payload)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"response":    "Here is my answer.",
			"tokens_used": 17,
			"model":       "stub-model",
		})
	})
	t.Setenv("AI_SERVICE_URL", upstream.URL)

	app, db, _ := setupApp(t)

	email := fmt.Sprintf("chat-%d@example.com", time.Now().UnixNano())
	user := seedActiveUser(t, db, email, "password123", "user")
	defer cleanupChatUser(db, user.Id)

	tokens := login(t, app, email, "password123")

	var sessionId string
	t.Run("Send message creates and titles session", func(t *testing.T) {
		res := postJSON(t, app, "/api/chat/send", dto.SendMessageRequest{
			Message: "What is the capital of France?",
		}, tokens.AccessToken)
		require.True(t, res.Success)

		var turn dto.SendMessageResponse
		require.NoError(t, json.Unmarshal(res.Data, &turn))
		assert.Equal(t, "What is the capital of France?", turn.SessionTitle)
		require.NotNil(t, turn.AssistantMessage)
		assert.Equal(t, "Here is my answer.", turn.AssistantMessage.Content)
		require.NotNil(t, turn.AssistantMessage.TokensUsed)
		assert.Equal(t, 17, *turn.AssistantMessage.TokensUsed)
		require.NotNil(t, turn.AssistantMessage.ModelUsed)
		assert.Equal(t, "stub-model", *turn.AssistantMessage.ModelUsed)
		require.NotNil(t, turn.AssistantMessage.ResponseTimeMs)

		sessionId = turn.SessionId.String()
	})

	t.Run("Session list includes the new session", func(t *testing.T) {
		res := getJSON(t, app, "/api/chat/sessions?page=1&page_size=10", tokens.AccessToken)
		require.True(t, res.Success)

		var page dto.PaginatedResponse[dto.SessionResponse]
		require.NoError(t, json.Unmarshal(res.Data, &page))
		require.NotEmpty(t, page.Items)
		assert.Equal(t, sessionId, page.Items[0].Id.String())
	})

	t.Run("Both turn sides are persisted in order", func(t *testing.T) {
		res := getJSON(t, app, "/api/chat/sessions/"+sessionId+"/history?page=1&page_size=50", tokens.AccessToken)
		require.True(t, res.Success)

		var page dto.PaginatedResponse[dto.MessageResponse]
		require.NoError(t, json.Unmarshal(res.Data, &page))
		require.Len(t, page.Items, 2)
		assert.Equal(t, "user", page.Items[0].Role)
		assert.Equal(t, "assistant", page.Items[1].Role)
		assert.False(t, page.Items[1].IsError)
	})

	t.Run("Session detail carries the transcript", func(t *testing.T) {
		res := getJSON(t, app, "/api/chat/sessions/"+sessionId, tokens.AccessToken)
		require.True(t, res.Success)

		var detail dto.SessionDetailResponse
		require.NoError(t, json.Unmarshal(res.Data, &detail))
		assert.Equal(t, sessionId, detail.Id.String())
		require.Len(t, detail.Messages, 2)
		assert.Equal(t, "What is the capital of France?", detail.Messages[0].Content)
	})

	t.Run("Another user cannot read the session", func(t *testing.T) {
		otherEmail := fmt.Sprintf("chat-other-%d@example.com", time.Now().UnixNano())
		other := seedActiveUser(t, db, otherEmail, "password123", "user")
		defer cleanupChatUser(db, other.Id)

		otherTokens := login(t, app, otherEmail, "password123")
		res := getJSON(t, app, "/api/chat/sessions/"+sessionId+"/history", otherTokens.AccessToken)
		assert.Equal(t, 404, res.Code)
	})

	t.Run("Archive toggle flips the active flag", func(t *testing.T) {
		res := postJSON(t, app, "/api/chat/sessions/"+sessionId+"/archive", nil, tokens.AccessToken)
		require.True(t, res.Success)

		var session dto.SessionResponse
		require.NoError(t, json.Unmarshal(res.Data, &session))
		assert.False(t, session.IsActive)

		list := getJSON(t, app, "/api/chat/sessions?is_active=true", tokens.AccessToken)
		require.True(t, list.Success)
		var page dto.PaginatedResponse[dto.SessionResponse]
		require.NoError(t, json.Unmarshal(list.Data, &page))
		for _, item := range page.Items {
			assert.NotEqual(t, sessionId, item.Id.String())
		}

		res = postJSON(t, app, "/api/chat/sessions/"+sessionId+"/archive", nil, tokens.AccessToken)
		require.True(t, res.Success)
		require.NoError(t, json.Unmarshal(res.Data, &session))
		assert.True(t, session.IsActive)
	})

	t.Run("Clear empties the session and resets the title", func(t *testing.T) {
		res := postJSON(t, app, "/api/chat/sessions/"+sessionId+"/clear", nil, tokens.AccessToken)
		require.True(t, res.Success)

		var session dto.SessionResponse
		require.NoError(t, json.Unmarshal(res.Data, &session))
		assert.Equal(t, "New Chat", session.Title)

		history := getJSON(t, app, "/api/chat/sessions/"+sessionId+"/history", tokens.AccessToken)
		require.True(t, history.Success)
		var page dto.PaginatedResponse[dto.MessageResponse]
		require.NoError(t, json.Unmarshal(history.Data, &page))
		assert.Empty(t, page.Items)
	})

	t.Run("Rename and delete session", func(t *testing.T) {
		req := httptest.NewRequest("PATCH", "/api/chat/sessions/"+sessionId,
			jsonBody(t, dto.RenameSessionRequest{Title: "Geography"}))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		del := httptest.NewRequest("DELETE", "/api/chat/sessions/"+sessionId, nil)
		del.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
		resp, err = app.Test(del, -1)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)

		var count int64
		db.Model(&model.ChatMessage{}).Where("session_id = ?", sessionId).Count(&count)
		assert.Zero(t, count)
	})

	t.Run("AI health endpoint reports healthy", func(t *testing.T) {
		res := getJSON(t, app, "/api/chat/health", tokens.AccessToken)
		// The stub answers every route with 200, including /health
		assert.True(t, res.Success)
	})
}

func TestChatFlowUpstreamDown(t *testing.T) {
	upstream := stubAiUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	t.Setenv("AI_SERVICE_URL", upstream.URL)
	t.Setenv("AI_SERVICE_MAX_RETRIES", "1")

	app, db, _ := setupApp(t)

	email := fmt.Sprintf("chat-down-%d@example.com", time.Now().UnixNano())
	user := seedActiveUser(t, db, email, "password123", "user")
	defer cleanupChatUser(db, user.Id)

	tokens := login(t, app, email, "password123")

	res := postJSON(t, app, "/api/chat/send", dto.SendMessageRequest{
		Message: "hello?",
	}, tokens.AccessToken)

	// 503, but the recorded turn still comes back
	assert.Equal(t, 503, res.Code)
	assert.False(t, res.Success)
	require.NotEmpty(t, res.Data)

	var turn dto.SendMessageResponse
	require.NoError(t, json.Unmarshal(res.Data, &turn))
	require.NotNil(t, turn.AssistantMessage)
	assert.True(t, turn.AssistantMessage.IsError)
	assert.Equal(t, "AI service error: status 500", turn.AssistantMessage.Content)
	require.NotNil(t, turn.AssistantMessage.ErrorMessage)
	require.NotNil(t, turn.AssistantMessage.ResponseTimeMs)

	// Assistant error row is durable, timing included
	var stored model.ChatMessage
	require.NoError(t, db.Where("session_id = ? AND is_error = ?", turn.SessionId, true).First(&stored).Error)
	require.NotNil(t, stored.ResponseTimeMs)
}
