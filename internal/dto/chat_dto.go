package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateSessionRequest struct {
	Title string `json:"title" validate:"omitempty,max=255"`
}

type SessionResponse struct {
	Id        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type SessionDetailResponse struct {
	SessionResponse
	Messages []MessageResponse `json:"messages"`
}

type RenameSessionRequest struct {
	Title string `json:"title" validate:"required,max=255"`
}

type MessageResponse struct {
	Id             uuid.UUID `json:"id"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	TokensUsed     *int      `json:"tokens_used,omitempty"`
	ModelUsed      *string   `json:"model_used,omitempty"`
	ResponseTimeMs *int      `json:"response_time_ms,omitempty"`
	IsError        bool      `json:"is_error"`
	ErrorMessage   *string   `json:"error_message,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type SendMessageRequest struct {
	SessionId *uuid.UUID `json:"session_id"`
	Message   string     `json:"message" validate:"required,max=10000"`
}

type SendMessageResponse struct {
	SessionId        uuid.UUID        `json:"session_id"`
	SessionTitle     string           `json:"session_title"`
	UserMessage      *MessageResponse `json:"user_message"`
	AssistantMessage *MessageResponse `json:"assistant_message"`
}

type AiHealthResponse struct {
	Healthy bool   `json:"healthy"`
	Service string `json:"service"`
}
