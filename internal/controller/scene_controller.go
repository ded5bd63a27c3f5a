package controller

import (
	"ai-storywriting-be/internal/dto"
	"ai-storywriting-be/internal/pkg/serverutils"
	"ai-storywriting-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ISceneController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	CreateBulk(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Update(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type sceneController struct {
	sceneService service.ISceneService
}

func NewSceneController(sceneService service.ISceneService) ISceneController {
	return &sceneController{
		sceneService: sceneService,
	}
}

func (c *sceneController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/scene/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("chapter/:chapterId", c.Create)
	h.Post("chapter/:chapterId/bulk", c.CreateBulk)
	h.Get(":id", c.Show)
	h.Put(":id", c.Update)
	h.Delete(":id", c.Delete)
}

func (c *sceneController) Create(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	chapterId, _ := uuid.Parse(ctx.Params("chapterId"))

	var req dto.CreateSceneRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.ChapterId = chapterId

	err := serverutils.ValidateRequest(req)
	if err != nil {
		return err
	}

	res, err := c.sceneService.Create(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success create scene", res))
}

func (c *sceneController) CreateBulk(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	chapterId, _ := uuid.Parse(ctx.Params("chapterId"))

	var req dto.CreateScenesBulkRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.ChapterId = chapterId

	err := serverutils.ValidateRequest(req)
	if err != nil {
		return err
	}

	res, err := c.sceneService.CreateBulk(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success create scenes", res))
}

func (c *sceneController) Show(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	id, _ := uuid.Parse(ctx.Params("id"))

	res, err := c.sceneService.Show(ctx.Context(), userId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show scene", res))
}

func (c *sceneController) Update(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	id, _ := uuid.Parse(ctx.Params("id"))

	var req dto.UpdateSceneRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.Id = id

	err := serverutils.ValidateRequest(req)
	if err != nil {
		return err
	}

	if err := c.sceneService.Update(ctx.Context(), userId, &req); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success update scene", nil))
}

func (c *sceneController) Delete(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	id, _ := uuid.Parse(ctx.Params("id"))

	if err := c.sceneService.Delete(ctx.Context(), userId, id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete scene", nil))
}
