package service

import (
	"context"
	"encoding/json"

	"ai-chat-be/internal/dto"
	"ai-chat-be/internal/pkg/logger"
	"ai-chat-be/internal/pkg/mailer"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IMailConsumerService interface {
	Consume(ctx context.Context) error
}

type mailConsumerService struct {
	pubSub       *gochannel.GoChannel
	topicName    string
	emailService mailer.IEmailService
	log          logger.ILogger
}

func NewMailConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	emailService mailer.IEmailService,
	log logger.ILogger,
) IMailConsumerService {
	return &mailConsumerService{
		pubSub:       pubSub,
		topicName:    topicName,
		emailService: emailService,
		log:          log,
	}
}

func (s *mailConsumerService) Consume(ctx context.Context) error {
	messages, err := s.pubSub.Subscribe(ctx, s.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			s.processMessage(msg)
		}
	}()

	return nil
}

func (s *mailConsumerService) processMessage(msg *message.Message) {
	var job dto.MailJob
	if err := json.Unmarshal(msg.Payload, &job); err != nil {
		// Malformed jobs are dropped, retrying cannot fix them
		s.log.Error("mailer", "failed to unmarshal mail job", map[string]interface{}{"error": err.Error()})
		msg.Ack()
		return
	}

	var err error
	switch job.Kind {
	case dto.MailKindOtp:
		err = s.emailService.SendOTP(job.To, job.Otp, job.Purpose)
	case dto.MailKindWelcome:
		err = s.emailService.SendWelcome(job.To, job.FullName)
	case dto.MailKindAdminCredentials:
		err = s.emailService.SendAdminCredentials(job.To, job.FullName, job.Password)
	default:
		s.log.Warn("mailer", "unknown mail job kind", map[string]interface{}{"kind": job.Kind})
		msg.Ack()
		return
	}

	if err != nil {
		s.log.Error("mailer", "failed to send email", map[string]interface{}{
			"kind":  job.Kind,
			"to":    job.To,
			"error": err.Error(),
		})
		msg.Nack()
		return
	}

	s.log.Info("mailer", "email sent", map[string]interface{}{"kind": job.Kind, "to": job.To})
	msg.Ack()
}
