package controller

import (
	"ai-chat-be/internal/dto"
	"ai-chat-be/internal/pkg/serverutils"
	"ai-chat-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IAdminController interface {
	RegisterRoutes(r fiber.Router)
}

type adminController struct {
	service service.IAdminService
}

func NewAdminController(service service.IAdminService) IAdminController {
	return &adminController{service: service}
}

func (c *adminController) RegisterRoutes(r fiber.Router) {
	admin := r.Group("/admin")
	admin.Use(serverutils.RequireRoles("staff_admin", "super_admin"))

	users := admin.Group("/users")
	users.Get("", c.ListUsers)
	users.Post("/delete/confirm", c.ConfirmDeleteUser)
	users.Post("/delete/cancel", c.CancelDeleteUser)
	users.Post("/:id/disable", c.DisableUser)
	users.Post("/:id/enable", c.EnableUser)
	users.Post("/:id/delete/initiate", c.InitiateDeleteUser)

	dash := admin.Group("/dashboard")
	dash.Get("/chat-users", c.ChatUsersStats)
	dash.Get("/growth/monthly", c.MonthlyGrowth)
	dash.Get("/growth/yearly", c.YearlyGrowth)

	admin.Get("/logs", c.ListLogs)
	admin.Get("/logs/:id", c.GetLog)

	admins := admin.Group("/administrators")
	admins.Use(serverutils.RequireRoles("super_admin"))
	admins.Get("", c.ListAdmins)
	admins.Post("", c.CreateAdmin)
	admins.Patch("/:id", c.UpdateAdmin)
	admins.Delete("/:id", c.DeleteAdmin)
}

func actor(ctx *fiber.Ctx) string {
	if id, ok := ctx.Locals("user_id").(string); ok {
		return id
	}
	return ""
}

func (c *adminController) ListUsers(ctx *fiber.Ctx) error {
	var query dto.ListUsersQuery
	if err := ctx.QueryParser(&query); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid query parameters"))
	}
	if err := serverutils.ValidateRequest(query); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ValidationErrorResponse(err.Error(), serverutils.ValidationDetails(query)))
	}

	res, err := c.service.ListUsers(ctx.Context(), query)
	if err != nil {
		return errorJSON(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Users retrieved", res))
}

func (c *adminController) DisableUser(ctx *fiber.Ctx) error {
	userId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid user ID"))
	}

	res, err := c.service.DisableUser(ctx.Context(), userId, actor(ctx))
	if err != nil {
		return errorJSON(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("User disabled", res))
}

func (c *adminController) EnableUser(ctx *fiber.Ctx) error {
	userId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid user ID"))
	}

	res, err := c.service.EnableUser(ctx.Context(), userId, actor(ctx))
	if err != nil {
		return errorJSON(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("User enabled", res))
}

func (c *adminController) InitiateDeleteUser(ctx *fiber.Ctx) error {
	userId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid user ID"))
	}

	res, err := c.service.InitiateDeleteUser(ctx.Context(), userId)
	if err != nil {
		return errorJSON(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Deletion pending confirmation", res))
}

func (c *adminController) ConfirmDeleteUser(ctx *fiber.Ctx) error {
	var req dto.DeleteUserConfirmRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ValidationErrorResponse(err.Error(), serverutils.ValidationDetails(req)))
	}

	if err := c.service.ConfirmDeleteUser(ctx.Context(), req.ConfirmationToken, actor(ctx)); err != nil {
		return errorJSON(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("User deleted", nil))
}

func (c *adminController) CancelDeleteUser(ctx *fiber.Ctx) error {
	var req dto.DeleteUserConfirmRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ValidationErrorResponse(err.Error(), serverutils.ValidationDetails(req)))
	}

	if err := c.service.CancelDeleteUser(req.ConfirmationToken); err != nil {
		return errorJSON(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Deletion cancelled", nil))
}

func (c *adminController) ListAdmins(ctx *fiber.Ctx) error {
	var query dto.ListAdminsQuery
	if err := ctx.QueryParser(&query); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid query parameters"))
	}
	if err := serverutils.ValidateRequest(query); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ValidationErrorResponse(err.Error(), serverutils.ValidationDetails(query)))
	}

	res, err := c.service.ListAdmins(ctx.Context(), query)
	if err != nil {
		return errorJSON(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Administrators retrieved", res))
}

func (c *adminController) CreateAdmin(ctx *fiber.Ctx) error {
	var req dto.CreateAdminRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ValidationErrorResponse(err.Error(), serverutils.ValidationDetails(req)))
	}

	res, err := c.service.CreateAdmin(ctx.Context(), &req, actor(ctx))
	if err != nil {
		return errorJSON(ctx, err)
	}
	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Administrator created", res))
}

func (c *adminController) UpdateAdmin(ctx *fiber.Ctx) error {
	adminId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid administrator ID"))
	}

	var req dto.UpdateAdminRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ValidationErrorResponse(err.Error(), serverutils.ValidationDetails(req)))
	}

	res, err := c.service.UpdateAdmin(ctx.Context(), adminId, &req)
	if err != nil {
		return errorJSON(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Administrator updated", res))
}

func (c *adminController) DeleteAdmin(ctx *fiber.Ctx) error {
	adminId, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid administrator ID"))
	}

	if err := c.service.DeleteAdmin(ctx.Context(), adminId, actor(ctx)); err != nil {
		return errorJSON(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Administrator removed", nil))
}

func (c *adminController) ChatUsersStats(ctx *fiber.Ctx) error {
	res, err := c.service.GetChatUsersStats(ctx.Context())
	if err != nil {
		return errorJSON(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Chat user stats retrieved", res))
}

func (c *adminController) MonthlyGrowth(ctx *fiber.Ctx) error {
	year := ctx.QueryInt("year", 0)

	res, err := c.service.GetMonthlyGrowth(ctx.Context(), year)
	if err != nil {
		return errorJSON(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Monthly growth retrieved", res))
}

func (c *adminController) YearlyGrowth(ctx *fiber.Ctx) error {
	res, err := c.service.GetYearlyGrowth(ctx.Context())
	if err != nil {
		return errorJSON(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Yearly growth retrieved", res))
}

func (c *adminController) ListLogs(ctx *fiber.Ctx) error {
	var query dto.ListLogsQuery
	if err := ctx.QueryParser(&query); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid query parameters"))
	}

	res, err := c.service.GetLogs(query)
	if err != nil {
		return errorJSON(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Logs retrieved", res))
}

func (c *adminController) GetLog(ctx *fiber.Ctx) error {
	res, err := c.service.GetLogById(ctx.Params("id"))
	if err != nil {
		return errorJSON(ctx, err)
	}
	return ctx.JSON(serverutils.SuccessResponse("Log retrieved", res))
}
