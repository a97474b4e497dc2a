package controller

import (
	"errors"

	"ai-chat-be/internal/dto"
	"ai-chat-be/internal/pkg/serverutils"
	"ai-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	SendMessage(ctx *fiber.Ctx) error
	Health(ctx *fiber.Ctx) error
	CreateSession(ctx *fiber.Ctx) error
	ListSessions(ctx *fiber.Ctx) error
	GetSession(ctx *fiber.Ctx) error
	GetMessages(ctx *fiber.Ctx) error
	RenameSession(ctx *fiber.Ctx) error
	ClearSession(ctx *fiber.Ctx) error
	ArchiveSession(ctx *fiber.Ctx) error
	DeleteSession(ctx *fiber.Ctx) error
	DeleteAllSessions(ctx *fiber.Ctx) error
}

type chatController struct {
	service service.IChatService
}

func NewChatController(service service.IChatService) IChatController {
	return &chatController{service: service}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat")
	h.Use(serverutils.JwtMiddleware)
	h.Post("/send", c.SendMessage)
	h.Get("/health", c.Health)

	s := h.Group("/sessions")
	s.Post("", c.CreateSession)
	s.Get("", c.ListSessions)
	s.Delete("", c.DeleteAllSessions)
	s.Get("/:id/history", c.GetMessages)
	s.Post("/:id/clear", c.ClearSession)
	s.Post("/:id/archive", c.ArchiveSession)
	s.Get("/:id", c.GetSession)
	s.Patch("/:id", c.RenameSession)
	s.Delete("/:id", c.DeleteSession)
}

func (c *chatController) SendMessage(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(401, "Invalid token claims"))
	}

	var req dto.SendMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ValidationErrorResponse(err.Error(), serverutils.ValidationDetails(req)))
	}

	res, err := c.service.SendMessage(ctx.Context(), userId, &req)
	if err != nil {
		// The failed turn is still recorded, so return it with the 503
		if errors.Is(err, service.ErrAiUnavailable) && res != nil {
			return ctx.Status(fiber.StatusServiceUnavailable).JSON(serverutils.BaseResponse[*dto.SendMessageResponse]{
				Success: false,
				Code:    fiber.StatusServiceUnavailable,
				Message: err.Error(),
				Data:    res,
			})
		}
		return errorJSON(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Message sent", res))
}

func (c *chatController) Health(ctx *fiber.Ctx) error {
	res := c.service.Health(ctx.Context())
	if !res.Healthy {
		return ctx.Status(fiber.StatusServiceUnavailable).JSON(serverutils.BaseResponse[*dto.AiHealthResponse]{
			Success: false,
			Code:    fiber.StatusServiceUnavailable,
			Message: "AI service is unreachable",
			Data:    res,
		})
	}
	return ctx.JSON(serverutils.SuccessResponse("AI service is healthy", res))
}

func (c *chatController) CreateSession(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(401, "Invalid token claims"))
	}

	var req dto.CreateSessionRequest
	if err := ctx.BodyParser(&req); err != nil && len(ctx.Body()) > 0 {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}

	res, err := c.service.CreateSession(ctx.Context(), userId, &req)
	if err != nil {
		return errorJSON(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Session created", res))
}

func (c *chatController) ListSessions(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(401, "Invalid token claims"))
	}

	page := ctx.QueryInt("page", 1)
	pageSize := ctx.QueryInt("page_size", 20)

	var isActive *bool
	if raw := ctx.Query("is_active"); raw != "" {
		active := raw == "true" || raw == "1"
		isActive = &active
	}

	res, err := c.service.ListSessions(ctx.Context(), userId, page, pageSize, isActive)
	if err != nil {
		return errorJSON(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Sessions retrieved", res))
}

func (c *chatController) GetSession(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(401, "Invalid token claims"))
	}

	sessionId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid session ID"))
	}

	res, err := c.service.GetSession(ctx.Context(), userId, sessionId)
	if err != nil {
		return errorJSON(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Session retrieved", res))
}

func (c *chatController) GetMessages(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(401, "Invalid token claims"))
	}

	sessionId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid session ID"))
	}

	page := ctx.QueryInt("page", 1)
	pageSize := ctx.QueryInt("page_size", 50)

	res, err := c.service.GetMessages(ctx.Context(), userId, sessionId, page, pageSize)
	if err != nil {
		return errorJSON(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Messages retrieved", res))
}

func (c *chatController) ClearSession(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(401, "Invalid token claims"))
	}

	sessionId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid session ID"))
	}

	res, err := c.service.ClearSession(ctx.Context(), userId, sessionId)
	if err != nil {
		return errorJSON(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Session cleared", res))
}

func (c *chatController) ArchiveSession(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(401, "Invalid token claims"))
	}

	sessionId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid session ID"))
	}

	res, err := c.service.ArchiveSession(ctx.Context(), userId, sessionId)
	if err != nil {
		return errorJSON(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Session archive state updated", res))
}

func (c *chatController) RenameSession(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(401, "Invalid token claims"))
	}

	sessionId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid session ID"))
	}

	var req dto.RenameSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ValidationErrorResponse(err.Error(), serverutils.ValidationDetails(req)))
	}

	res, err := c.service.RenameSession(ctx.Context(), userId, sessionId, &req)
	if err != nil {
		return errorJSON(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Session renamed", res))
}

func (c *chatController) DeleteSession(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(401, "Invalid token claims"))
	}

	sessionId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid session ID"))
	}

	if err := c.service.DeleteSession(ctx.Context(), userId, sessionId); err != nil {
		return errorJSON(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Session deleted", nil))
}

func (c *chatController) DeleteAllSessions(ctx *fiber.Ctx) error {
	userId, err := currentUserId(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusUnauthorized).JSON(serverutils.ErrorResponse(401, "Invalid token claims"))
	}

	if err := c.service.DeleteAllSessions(ctx.Context(), userId); err != nil {
		return errorJSON(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("All sessions deleted", nil))
}
