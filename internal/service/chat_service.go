package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ai-chat-be/internal/dto"
	"ai-chat-be/internal/entity"
	"ai-chat-be/internal/pkg/logger"
	"ai-chat-be/internal/repository/specification"
	"ai-chat-be/internal/repository/unitofwork"
	"ai-chat-be/pkg/ai"
	"ai-chat-be/pkg/events"
	pkgNats "ai-chat-be/pkg/nats"

	"github.com/google/uuid"
)

const fallbackReply = "No response from AI"

// AiClient is the slice of pkg/ai the chat service needs, kept small
// so tests can stub the upstream.
type AiClient interface {
	Chat(ctx context.Context, history []ai.Message, userMessage string) (*ai.Reply, error)
	HealthCheck(ctx context.Context) bool
}

type IChatService interface {
	CreateSession(ctx context.Context, userId uuid.UUID, req *dto.CreateSessionRequest) (*dto.SessionResponse, error)
	ListSessions(ctx context.Context, userId uuid.UUID, page, pageSize int, isActive *bool) (*dto.PaginatedResponse[dto.SessionResponse], error)
	GetSession(ctx context.Context, userId, sessionId uuid.UUID) (*dto.SessionDetailResponse, error)
	GetMessages(ctx context.Context, userId, sessionId uuid.UUID, page, pageSize int) (*dto.PaginatedResponse[dto.MessageResponse], error)
	RenameSession(ctx context.Context, userId, sessionId uuid.UUID, req *dto.RenameSessionRequest) (*dto.SessionResponse, error)
	ClearSession(ctx context.Context, userId, sessionId uuid.UUID) (*dto.SessionResponse, error)
	ArchiveSession(ctx context.Context, userId, sessionId uuid.UUID) (*dto.SessionResponse, error)
	DeleteSession(ctx context.Context, userId, sessionId uuid.UUID) error
	DeleteAllSessions(ctx context.Context, userId uuid.UUID) error
	SendMessage(ctx context.Context, userId uuid.UUID, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error)
	Health(ctx context.Context) *dto.AiHealthResponse
}

type chatService struct {
	uowFactory     unitofwork.RepositoryFactory
	aiClient       AiClient
	eventPublisher *pkgNats.Publisher
	log            logger.ILogger

	// One lock per session so concurrent sends to the same conversation
	// are serialized and history stays coherent.
	sessionLocks sync.Map
}

func NewChatService(
	uowFactory unitofwork.RepositoryFactory,
	aiClient AiClient,
	eventPublisher *pkgNats.Publisher,
	log logger.ILogger,
) IChatService {
	return &chatService{
		uowFactory:     uowFactory,
		aiClient:       aiClient,
		eventPublisher: eventPublisher,
		log:            log,
	}
}

func (s *chatService) lockSession(id uuid.UUID) func() {
	v, _ := s.sessionLocks.LoadOrStore(id, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (s *chatService) CreateSession(ctx context.Context, userId uuid.UUID, req *dto.CreateSessionRequest) (*dto.SessionResponse, error) {
	title := entity.DefaultSessionTitle
	if req != nil && req.Title != "" {
		title = req.Title
	}

	session := &entity.ChatSession{
		Id:        uuid.New(),
		UserId:    userId,
		Title:     title,
		IsActive:  true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.ChatSessionRepository().Create(ctx, session); err != nil {
		return nil, err
	}

	resp := sessionToDto(session)
	return &resp, nil
}

func (s *chatService) ListSessions(ctx context.Context, userId uuid.UUID, page, pageSize int, isActive *bool) (*dto.PaginatedResponse[dto.SessionResponse], error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.ChatSessionRepository()

	filters := []specification.Specification{specification.UserOwnedBy{UserID: userId}}
	if isActive != nil {
		filters = append(filters, specification.ByActive{Active: *isActive})
	}

	total, err := repo.Count(ctx, filters...)
	if err != nil {
		return nil, err
	}

	sessions, err := repo.FindAll(ctx, append(filters,
		specification.OrderBy{Field: "updated_at", Desc: true},
		specification.Pagination{Limit: pageSize, Offset: (page - 1) * pageSize},
	)...)
	if err != nil {
		return nil, err
	}

	items := make([]dto.SessionResponse, len(sessions))
	for i, sess := range sessions {
		items[i] = sessionToDto(sess)
	}

	return &dto.PaginatedResponse[dto.SessionResponse]{
		Items:      items,
		Pagination: dto.NewPagination(page, pageSize, total),
	}, nil
}

// findOwnedSession loads a session and enforces ownership.
func (s *chatService) findOwnedSession(ctx context.Context, uow unitofwork.UnitOfWork, userId, sessionId uuid.UUID) (*entity.ChatSession, error) {
	session, err := uow.ChatSessionRepository().FindOne(ctx,
		specification.ByID{ID: sessionId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// GetSession returns one session together with its full ordered
// transcript.
func (s *chatService) GetSession(ctx context.Context, userId, sessionId uuid.UUID) (*dto.SessionDetailResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := s.findOwnedSession(ctx, uow, userId, sessionId)
	if err != nil {
		return nil, err
	}

	messages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.BySessionID{SessionID: sessionId},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	detail := &dto.SessionDetailResponse{
		SessionResponse: sessionToDto(session),
		Messages:        make([]dto.MessageResponse, len(messages)),
	}
	for i, msg := range messages {
		detail.Messages[i] = messageToDto(msg)
	}
	return detail, nil
}

func (s *chatService) GetMessages(ctx context.Context, userId, sessionId uuid.UUID, page, pageSize int) (*dto.PaginatedResponse[dto.MessageResponse], error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if _, err := s.findOwnedSession(ctx, uow, userId, sessionId); err != nil {
		return nil, err
	}

	repo := uow.ChatMessageRepository()
	inSession := specification.BySessionID{SessionID: sessionId}

	total, err := repo.Count(ctx, inSession)
	if err != nil {
		return nil, err
	}

	messages, err := repo.FindAll(ctx,
		inSession,
		specification.OrderBy{Field: "created_at", Desc: false},
		specification.Pagination{Limit: pageSize, Offset: (page - 1) * pageSize},
	)
	if err != nil {
		return nil, err
	}

	items := make([]dto.MessageResponse, len(messages))
	for i, msg := range messages {
		items[i] = messageToDto(msg)
	}
	return &dto.PaginatedResponse[dto.MessageResponse]{
		Items:      items,
		Pagination: dto.NewPagination(page, pageSize, total),
	}, nil
}

// ClearSession drops every message in the session and resets it to a
// fresh, default-titled state.
func (s *chatService) ClearSession(ctx context.Context, userId, sessionId uuid.UUID) (*dto.SessionResponse, error) {
	unlock := s.lockSession(sessionId)
	defer unlock()

	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := s.findOwnedSession(ctx, uow, userId, sessionId)
	if err != nil {
		return nil, err
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.ChatMessageRepository().DeleteBySessionId(ctx, sessionId); err != nil {
		return nil, err
	}

	session.Title = entity.DefaultSessionTitle
	session.UpdatedAt = time.Now()
	if err := uow.ChatSessionRepository().Update(ctx, session); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	resp := sessionToDto(session)
	return &resp, nil
}

// ArchiveSession flips the active flag, so the same endpoint archives
// and unarchives.
func (s *chatService) ArchiveSession(ctx context.Context, userId, sessionId uuid.UUID) (*dto.SessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := s.findOwnedSession(ctx, uow, userId, sessionId)
	if err != nil {
		return nil, err
	}

	session.IsActive = !session.IsActive
	session.UpdatedAt = time.Now()
	if err := uow.ChatSessionRepository().Update(ctx, session); err != nil {
		return nil, err
	}

	resp := sessionToDto(session)
	return &resp, nil
}

func (s *chatService) RenameSession(ctx context.Context, userId, sessionId uuid.UUID, req *dto.RenameSessionRequest) (*dto.SessionResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	session, err := s.findOwnedSession(ctx, uow, userId, sessionId)
	if err != nil {
		return nil, err
	}

	session.Title = req.Title
	session.UpdatedAt = time.Now()
	if err := uow.ChatSessionRepository().Update(ctx, session); err != nil {
		return nil, err
	}

	resp := sessionToDto(session)
	return &resp, nil
}

func (s *chatService) DeleteSession(ctx context.Context, userId, sessionId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if _, err := s.findOwnedSession(ctx, uow, userId, sessionId); err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	// Messages first, the session row last
	if err := uow.ChatMessageRepository().DeleteBySessionId(ctx, sessionId); err != nil {
		return err
	}
	if err := uow.ChatSessionRepository().Delete(ctx, sessionId); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	// The session is gone, drop its lock entry too
	s.sessionLocks.Delete(sessionId)
	return nil
}

func (s *chatService) DeleteAllSessions(ctx context.Context, userId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	sessions, err := uow.ChatSessionRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.ChatMessageRepository().DeleteAllByUserId(ctx, userId); err != nil {
		return err
	}
	if err := uow.ChatSessionRepository().DeleteAllByUserId(ctx, userId); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	for _, sess := range sessions {
		s.sessionLocks.Delete(sess.Id)
	}
	return nil
}

// SendMessage runs one full chat turn. The user message is committed
// before the upstream call so it survives an AI outage, and an
// assistant message is written no matter what the upstream did. When
// the upstream failed the returned response still carries the recorded
// turn alongside ErrAiUnavailable.
func (s *chatService) SendMessage(ctx context.Context, userId uuid.UUID, req *dto.SendMessageRequest) (*dto.SendMessageResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	// Resolve or create the session
	var session *entity.ChatSession
	var err error
	if req.SessionId != nil {
		session, err = s.findOwnedSession(ctx, uow, userId, *req.SessionId)
		if err != nil {
			return nil, err
		}
	} else {
		session = &entity.ChatSession{
			Id:        uuid.New(),
			UserId:    userId,
			Title:     entity.DefaultSessionTitle,
			IsActive:  true,
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}
		if err := uow.ChatSessionRepository().Create(ctx, session); err != nil {
			return nil, err
		}
	}

	unlock := s.lockSession(session.Id)
	defer unlock()

	// History is read before the new message is stored, the upstream
	// gets prior turns plus the fresh message separately.
	priorMessages, err := uow.ChatMessageRepository().FindAll(ctx,
		specification.BySessionID{SessionID: session.Id},
		specification.OrderBy{Field: "created_at", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	userMsg := &entity.ChatMessage{
		Id:        uuid.New(),
		SessionId: session.Id,
		Role:      entity.MessageRoleUser,
		Content:   req.Message,
		CreatedAt: time.Now(),
	}
	if err := uow.ChatMessageRepository().Create(ctx, userMsg); err != nil {
		return nil, err
	}

	history := make([]ai.Message, len(priorMessages))
	for i, msg := range priorMessages {
		history[i] = ai.Message{Role: string(msg.Role), Content: msg.Content}
	}

	reply, aiErr := s.aiClient.Chat(ctx, history, req.Message)

	assistantMsg := &entity.ChatMessage{
		Id:        uuid.New(),
		SessionId: session.Id,
		Role:      entity.MessageRoleAssistant,
		CreatedAt: time.Now(),
	}
	if aiErr != nil {
		// The gateway reports elapsed time and a user-facing message
		// even for failed exchanges; both land on the stored turn.
		errText := aiErr.Error()
		content := fallbackReply
		if reply != nil {
			if reply.ErrorMessage != "" {
				content = reply.ErrorMessage
				errText = reply.ErrorMessage
			}
			rt := reply.ResponseTimeMs
			assistantMsg.ResponseTimeMs = &rt
		}
		assistantMsg.Content = content
		assistantMsg.IsError = true
		assistantMsg.ErrorMessage = &errText
		s.log.Error("chat", "ai upstream call failed", map[string]interface{}{
			"session_id": session.Id.String(),
			"error":      aiErr.Error(),
		})
	} else {
		assistantMsg.Content = reply.Content
		assistantMsg.TokensUsed = reply.TokensUsed
		assistantMsg.ModelUsed = reply.ModelUsed
		rt := reply.ResponseTimeMs
		assistantMsg.ResponseTimeMs = &rt
	}

	txUow := s.uowFactory.NewUnitOfWork(ctx)
	if err := txUow.Begin(ctx); err != nil {
		return nil, err
	}
	defer txUow.Rollback()

	if err := txUow.ChatMessageRepository().Create(ctx, assistantMsg); err != nil {
		return nil, err
	}

	// First exchange on an untitled session names it after the opener
	if session.Title == entity.DefaultSessionTitle && len(priorUserMessages(priorMessages)) == 0 {
		session.Title = deriveTitle(req.Message)
		session.UpdatedAt = time.Now()
		if err := txUow.ChatSessionRepository().Update(ctx, session); err != nil {
			return nil, err
		}
	} else {
		if err := txUow.ChatSessionRepository().Touch(ctx, session.Id); err != nil {
			return nil, err
		}
	}

	if err := txUow.Commit(); err != nil {
		return nil, err
	}

	userDto := messageToDto(userMsg)
	assistantDto := messageToDto(assistantMsg)
	resp := &dto.SendMessageResponse{
		SessionId:        session.Id,
		SessionTitle:     session.Title,
		UserMessage:      &userDto,
		AssistantMessage: &assistantDto,
	}

	if s.eventPublisher != nil {
		event := events.NewBaseEvent(events.TypeChatTurnRecorded, map[string]interface{}{
			"session_id": session.Id,
			"user_id":    userId,
			"is_error":   assistantMsg.IsError,
		})
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			fmt.Printf("Error publishing chat event: %v\n", err)
		}
	}

	if aiErr != nil {
		return resp, ErrAiUnavailable
	}
	return resp, nil
}

func (s *chatService) Health(ctx context.Context) *dto.AiHealthResponse {
	return &dto.AiHealthResponse{
		Healthy: s.aiClient.HealthCheck(ctx),
		Service: "ai-chat",
	}
}

func priorUserMessages(messages []*entity.ChatMessage) []*entity.ChatMessage {
	var result []*entity.ChatMessage
	for _, msg := range messages {
		if msg.Role == entity.MessageRoleUser {
			result = append(result, msg)
		}
	}
	return result
}

// deriveTitle names a session after its opening message, truncated on
// rune boundaries.
func deriveTitle(message string) string {
	runes := []rune(message)
	if len(runes) <= 50 {
		return message
	}
	return string(runes[:50]) + "..."
}

func sessionToDto(session *entity.ChatSession) dto.SessionResponse {
	return dto.SessionResponse{
		Id:        session.Id,
		Title:     session.Title,
		IsActive:  session.IsActive,
		CreatedAt: session.CreatedAt,
		UpdatedAt: session.UpdatedAt,
	}
}

func messageToDto(msg *entity.ChatMessage) dto.MessageResponse {
	return dto.MessageResponse{
		Id:             msg.Id,
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
