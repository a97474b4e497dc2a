package bootstrap

import (
	"context"
	"log"

	"ai-chat-be/internal/config"
	"ai-chat-be/internal/controller"
	"ai-chat-be/internal/pkg/logger"
	"ai-chat-be/internal/pkg/mailer"
	"ai-chat-be/internal/repository/unitofwork"
	"ai-chat-be/internal/service"
	"ai-chat-be/pkg/admin/dashboard"
	adminEvents "ai-chat-be/pkg/admin/events"
	adminUser "ai-chat-be/pkg/admin/user"
	"ai-chat-be/pkg/ai"

	pkgNats "ai-chat-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController  controller.IAuthController
	UserController  controller.IUserController
	ChatController  controller.IChatController
	AdminController controller.IAdminController

	// Background Services (Exposed for main.go to run)
	MailConsumer service.IMailConsumerService

	// Shared facades
	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.Email,
		cfg.SMTP.SenderName,
	)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	// NATS
	natsPub, err := pkgNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	// Redis
	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// AI upstream
	aiClient := ai.NewClient(cfg.Ai.ServiceURL, cfg.Ai.Timeout, cfg.Ai.MaxRetries)
	log.Printf("[INFO] Using AI service at %s", cfg.Ai.ServiceURL)

	// 3. Services
	mailPublisher := service.NewMailPublisherService(cfg.App.MailTopic, pubSub)
	mailConsumer := service.NewMailConsumerService(pubSub, cfg.App.MailTopic, emailService, sysLogger)

	authService := service.NewAuthService(uowFactory, mailPublisher, natsPub, rdb, cfg.Auth)
	userService := service.NewUserService(uowFactory)
	chatService := service.NewChatService(uowFactory, aiClient, natsPub, sysLogger)

	// Admin Domain Components
	adminEventPublisher := adminEvents.NewNatsPublisher(natsPub, sysLogger)
	userManager := adminUser.NewManager(sysLogger, adminEventPublisher)
	dashboardAggregator := dashboard.NewAggregator(sysLogger)

	adminService := service.NewAdminService(
		uowFactory,
		userManager,
		dashboardAggregator,
		mailPublisher,
		sysLogger,
	)

	// 4. Controllers
	return &Container{
		AuthController:  controller.NewAuthController(authService),
		UserController:  controller.NewUserController(userService),
		ChatController:  controller.NewChatController(chatService),
		AdminController: controller.NewAdminController(adminService),

		MailConsumer: mailConsumer,
		Logger:       sysLogger,
	}
}
