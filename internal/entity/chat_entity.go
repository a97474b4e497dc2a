package entity

import (
	"time"

	"github.com/google/uuid"
)

const DefaultSessionTitle = "New Chat"

type ChatSession struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	Title     string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

type MessageRole string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
	MessageRoleSystem    MessageRole = "system"
)

type ChatMessage struct {
	Id             uuid.UUID
	SessionId      uuid.UUID
	Role           MessageRole
	Content        string
	TokensUsed     *int
	ModelUsed      *string
	ResponseTimeMs *int
	IsError        bool
	ErrorMessage   *string
	CreatedAt      time.Time
}
