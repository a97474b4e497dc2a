package service

import (
	"context"
	"encoding/json"

	"ai-chat-be/internal/dto"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// IMailPublisherService queues outbound emails so request handlers
// never block on SMTP.
type IMailPublisherService interface {
	PublishOtp(ctx context.Context, to, otp, purpose string) error
	PublishWelcome(ctx context.Context, to, fullName string) error
	PublishAdminCredentials(ctx context.Context, to, fullName, password string) error
}

type mailPublisherService struct {
	topicName string
	pubSub    *gochannel.GoChannel
}

func NewMailPublisherService(topicName string, pubSub *gochannel.GoChannel) IMailPublisherService {
	return &mailPublisherService{
		topicName: topicName,
		pubSub:    pubSub,
	}
}

func (s *mailPublisherService) publish(job dto.MailJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return err
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	return s.pubSub.Publish(s.topicName, msg)
}

func (s *mailPublisherService) PublishOtp(ctx context.Context, to, otp, purpose string) error {
	return s.publish(dto.MailJob{
		Kind:    dto.MailKindOtp,
		To:      to,
		Otp:     otp,
		Purpose: purpose,
	})
}

func (s *mailPublisherService) PublishWelcome(ctx context.Context, to, fullName string) error {
	return s.publish(dto.MailJob{
		Kind:     dto.MailKindWelcome,
		To:       to,
		FullName: fullName,
	})
}

func (s *mailPublisherService) PublishAdminCredentials(ctx context.Context, to, fullName, password string) error {
	return s.publish(dto.MailJob{
		Kind:     dto.MailKindAdminCredentials,
		To:       to,
		FullName: fullName,
		Password: password,
	})
}
