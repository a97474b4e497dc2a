package controller

import (
	"errors"

	"ai-chat-be/internal/pkg/serverutils"
	"ai-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func statusForError(err error) int {
	switch {
	case errors.Is(err, service.ErrEmailTaken):
		return fiber.StatusConflict
	case errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrAdminNotFound),
		errors.Is(err, service.ErrLogNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidToken):
		return fiber.StatusUnauthorized
	case errors.Is(err, service.ErrEmailNotVerified),
		errors.Is(err, service.ErrAccountBlocked),
		errors.Is(err, service.ErrForbidden):
		return fiber.StatusForbidden
	case errors.Is(err, service.ErrInvalidOtp),
		errors.Is(err, service.ErrOtpExpired),
		errors.Is(err, service.ErrInvalidResetToken),
		errors.Is(err, service.ErrInvalidConfirm),
		errors.Is(err, service.ErrWrongPassword):
		return fiber.StatusBadRequest
	case errors.Is(err, service.ErrOtpCooldown):
		return fiber.StatusTooManyRequests
	case errors.Is(err, service.ErrAiUnavailable):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

func errorJSON(ctx *fiber.Ctx, err error) error {
	code := statusForError(err)
	return ctx.Status(code).JSON(serverutils.ErrorResponse(code, err.Error()))
}

// currentUserId reads the user id the JWT middleware stashed in locals.
func currentUserId(ctx *fiber.Ctx) (uuid.UUID, error) {
	userIdStr, ok := ctx.Locals("user_id").(string)
	if !ok {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid token claims")
	}
	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		return uuid.Nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid token claims")
	}
	return userId, nil
}
