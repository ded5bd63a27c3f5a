package controller

import (
	"ai-storywriting-be/internal/dto"
	"ai-storywriting-be/internal/pkg/serverutils"
	"ai-storywriting-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IChapterController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	GetAll(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Reorder(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
	UpdatePlan(ctx *fiber.Ctx) error
	UpdateSynopsis(ctx *fiber.Ctx) error
}

type chapterController struct {
	chapterService service.IChapterService
}

func NewChapterController(chapterService service.IChapterService) IChapterController {
	return &chapterController{
		chapterService: chapterService,
	}
}

func (c *chapterController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chapter/v1")
	h.Use(serverutils.JwtMiddleware)
	// Literal segments before :id so "project" is not swallowed as an id.
	h.Post("project/:projectId", c.Create)
	h.Get("project/:projectId", c.GetAll)
	h.Get(":id", c.Show)
	h.Put(":id", c.Update)
	h.Put(":id/reorder", c.Reorder)
	h.Delete(":id", c.Delete)
	h.Put(":id/plan", c.UpdatePlan)
	h.Put(":id/synopsis", c.UpdateSynopsis)
}

func (c *chapterController) Create(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	projectId, _ := uuid.Parse(ctx.Params("projectId"))

	var req dto.CreateChapterRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.ProjectId = projectId

	err := serverutils.ValidateRequest(req)
	if err != nil {
		return err
	}

	res, err := c.chapterService.Create(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success create chapter", res))
}

func (c *chapterController) Show(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	id, _ := uuid.Parse(ctx.Params("id"))

	res, err := c.chapterService.Show(ctx.Context(), userId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show chapter", res))
}

func (c *chapterController) GetAll(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	projectId, _ := uuid.Parse(ctx.Params("projectId"))

	res, err := c.chapterService.GetAll(ctx.Context(), userId, projectId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get all chapters", res))
}

func (c *chapterController) Update(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	id, _ := uuid.Parse(ctx.Params("id"))

	var req dto.UpdateChapterRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.Id = id

	err := serverutils.ValidateRequest(req)
	if err != nil {
		return err
	}

	if err := c.chapterService.Update(ctx.Context(), userId, &req); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success update chapter", nil))
}

func (c *chapterController) Reorder(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	id, _ := uuid.Parse(ctx.Params("id"))

	var req dto.ReorderChapterRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.Id = id

	err := serverutils.ValidateRequest(req)
	if err != nil {
		return err
	}

	if err := c.chapterService.Reorder(ctx.Context(), userId, &req); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success reorder chapter", nil))
}

func (c *chapterController) Delete(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	id, _ := uuid.Parse(ctx.Params("id"))

	if err := c.chapterService.Delete(ctx.Context(), userId, id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete chapter", nil))
}

func (c *chapterController) UpdatePlan(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	id, _ := uuid.Parse(ctx.Params("id"))

	var req dto.UpdateDocRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.Id = id

	if err := c.chapterService.UpdatePlan(ctx.Context(), userId, &req); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success update chapter plan", nil))
}

func (c *chapterController) UpdateSynopsis(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	id, _ := uuid.Parse(ctx.Params("id"))

	var req dto.UpdateDocRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.Id = id

	if err := c.chapterService.UpdateSynopsis(ctx.Context(), userId, &req); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success update chapter synopsis", nil))
}
