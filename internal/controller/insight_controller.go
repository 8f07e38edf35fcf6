package controller

import (
	"ai-academy-be/internal/dto"
	"ai-academy-be/internal/pkg/serverutils"
	"ai-academy-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IInsightController interface {
	RegisterRoutes(r fiber.Router)
	List(ctx *fiber.Ctx) error
	ListPending(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	Validate(ctx *fiber.Ctx) error
	ApprovePending(ctx *fiber.Ctx) error
	DeclinePending(ctx *fiber.Ctx) error
}

type insightController struct {
	insightService service.IInsightService
}

func NewInsightController(insightService service.IInsightService) IInsightController {
	return &insightController{
		insightService: insightService,
	}
}

func (c *insightController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/insight/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("", c.List)
	h.Get("pending/session/:sessionId", c.ListPending)
	h.Post("pending/:id/approve", c.ApprovePending)
	h.Post("pending/:id/decline", c.DeclinePending)
	h.Patch(":id/validate", c.Validate)
	h.Delete(":id", c.Delete)
}

func (c *insightController) List(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	res, err := c.insightService.List(ctx.Context(), userId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list insights", res))
}

func (c *insightController) Delete(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid insight id")
	}

	if err := c.insightService.Delete(ctx.Context(), userId, id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete insight", nil))
}

func (c *insightController) Validate(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid insight id")
	}

	var req dto.ValidateInsightRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.Id = id

	if err := c.insightService.Validate(ctx.Context(), userId, &req); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success validate insight", nil))
}

func (c *insightController) ListPending(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	sessionId, err := uuid.Parse(ctx.Params("sessionId"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid session id")
	}

	res := c.insightService.ListPending(userId, sessionId)
	return ctx.JSON(serverutils.SuccessResponse("Pending insights", res))
}

func (c *insightController) ApprovePending(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	action, err := c.insightService.ApprovePending(ctx.Context(), userId, ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}

	return ctx.JSON(serverutils.SuccessResponse("Pending insight approved", map[string]string{
		"action": action,
	}))
}

func (c *insightController) DeclinePending(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	if err := c.insightService.DeclinePending(ctx.Context(), userId, ctx.Params("id")); err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Pending insight declined", nil))
}
