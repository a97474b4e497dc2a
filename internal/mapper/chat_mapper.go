package mapper

import (
	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/model"
)

type ChatMapper struct{}

func NewChatMapper() *ChatMapper {
	return &ChatMapper{}
}

// Session Mappers

func (m *ChatMapper) ChatSessionToEntity(s *model.ChatSession) *entity.ChatSession {
	if s == nil {
		return nil
	}

	return &entity.ChatSession{
		Id:        s.Id,
		UserId:    s.UserId,
		Title:     s.Title,
		IsActive:  s.IsActive,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

func (m *ChatMapper) ChatSessionToModel(s *entity.ChatSession) *model.ChatSession {
	if s == nil {
		return nil
	}

	return &model.ChatSession{
		Id:        s.Id,
		UserId:    s.UserId,
		Title:     s.Title,
		IsActive:  s.IsActive,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}

// Message Mappers

func (m *ChatMapper) ChatMessageToEntity(msg *model.ChatMessage) *entity.ChatMessage {
	if msg == nil {
		return nil
	}

	return &entity.ChatMessage{
		Id:             msg.Id,
		SessionId:      msg.SessionId,
		Role:           entity.MessageRole(msg.Role),
		Content:        msg.Content,
		TokensUsed:     msg.TokensUsed,
		ModelUsed:      msg.ModelUsed,
		ResponseTimeMs: msg.ResponseTimeMs,
		IsError:        msg.IsError,
		ErrorMessage:   msg.ErrorMessage,
		CreatedAt:      msg.CreatedAt,
	}
}

func (m *ChatMapper) ChatMessageToModel(msg *entity.ChatMessage) *model.ChatMessage {
	if msg == nil {
		return nil
	}

	return &model.ChatMessage{
		Id:             msg.Id,
		SessionId:      msg.SessionId,
		Role:           string(msg.Role),
		Content:        msg.Content,
		TokensUsed:     msg.TokensUsed,
		ModelUsed:      msg.ModelUsed,
		ResponseTimeMs: msg.ResponseTimeMs,
		IsError:        msg.IsError,
		ErrorMessage:   msg.ErrorMessage,
		CreatedAt:      msg.CreatedAt,
	}
}
