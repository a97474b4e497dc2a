package events

import (
	"context"

	"ai-chat-be/internal/pkg/logger"
	pkgEvents "ai-chat-be/pkg/events"
	pkgNats "ai-chat-be/pkg/nats"

	"github.com/google/uuid"
)

// Publisher abstracts event publishing for admin operations
type Publisher interface {
	PublishUserBlocked(ctx context.Context, userId uuid.UUID, email, actor string)
	PublishUserUnblocked(ctx context.Context, userId uuid.UUID, email, actor string)
	PublishUserDeleted(ctx context.Context, userId uuid.UUID, email, actor string)
	PublishAdminCreated(ctx context.Context, adminId uuid.UUID, email, actor string)
	PublishAdminRemoved(ctx context.Context, adminId uuid.UUID, email, actor string)
}

// NatsPublisher implements Publisher using NATS
type NatsPublisher struct {
	publisher *pkgNats.Publisher
	logger    logger.ILogger
}

func NewNatsPublisher(publisher *pkgNats.Publisher, logger logger.ILogger) *NatsPublisher {
	return &NatsPublisher{
		publisher: publisher,
		logger:    logger,
	}
}

func (p *NatsPublisher) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if p.publisher == nil {
		return
	}
	evt := pkgEvents.NewBaseEvent(eventType, data)
	if err := p.publisher.Publish(ctx, evt); err != nil {
		p.logger.Error("ADMIN", "Failed to publish "+eventType+" event", map[string]interface{}{"error": err.Error()})
	}
}

func (p *NatsPublisher) PublishUserBlocked(ctx context.Context, userId uuid.UUID, email, actor string) {
	p.publish(ctx, pkgEvents.TypeUserBlocked, map[string]interface{}{
		"user_id": userId,
		"email":   email,
		"actor":   actor,
	})
}

func (p *NatsPublisher) PublishUserUnblocked(ctx context.Context, userId uuid.UUID, email, actor string) {
	p.publish(ctx, "USER_UNBLOCKED", map[string]interface{}{
		"user_id": userId,
		"email":   email,
		"actor":   actor,
	})
}

func (p *NatsPublisher) PublishUserDeleted(ctx context.Context, userId uuid.UUID, email, actor string) {
	p.publish(ctx, pkgEvents.TypeUserDeleted, map[string]interface{}{
		"user_id": userId,
		"email":   email,
		"actor":   actor,
	})
}

func (p *NatsPublisher) PublishAdminCreated(ctx context.Context, adminId uuid.UUID, email, actor string) {
	p.publish(ctx, "ADMIN_CREATED", map[string]interface{}{
		"admin_id": adminId,
		"email":    email,
		"actor":    actor,
	})
}

func (p *NatsPublisher) PublishAdminRemoved(ctx context.Context, adminId uuid.UUID, email, actor string) {
	p.publish(ctx, "ADMIN_REMOVED", map[string]interface{}{
		"admin_id": adminId,
		"email":    email,
		"actor":    actor,
	})
}
