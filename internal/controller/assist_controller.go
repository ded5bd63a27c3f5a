package controller

import (
	"errors"

	"ai-storywriting-be/internal/dto"
	"ai-storywriting-be/internal/pkg/serverutils"
	"ai-storywriting-be/internal/service"
	"ai-storywriting-be/pkg/rag/executor"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IAssistController interface {
	RegisterRoutes(r fiber.Router)
	CreateSession(ctx *fiber.Ctx) error
	GetAllSessions(ctx *fiber.Ctx) error
	GetHistory(ctx *fiber.Ctx) error
	RenameSession(ctx *fiber.Ctx) error
	DeleteSession(ctx *fiber.Ctx) error
	Ask(ctx *fiber.Ctx) error
	DraftScene(ctx *fiber.Ctx) error
	SplitChapter(ctx *fiber.Ctx) error
	Rephrase(ctx *fiber.Ctx) error
}

type assistController struct {
	assistService service.IAssistService
}

func NewAssistController(assistService service.IAssistService) IAssistController {
	return &assistController{
		assistService: assistService,
	}
}

func (c *assistController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/assist/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("session", c.CreateSession)
	h.Get("session", c.GetAllSessions)
	h.Get("session/:id/history", c.GetHistory)
	h.Put("session/:id", c.RenameSession)
	h.Delete("session/:id", c.DeleteSession)
	h.Post("ask", c.Ask)
	h.Post("draft-scene", c.DraftScene)
	h.Post("split-chapter", c.SplitChapter)
	h.Post("rephrase", c.Rephrase)
}

// assistError maps generation pipeline failures onto HTTP statuses. Rate
// limit exhaustion reads as 429 so clients back off; retrieval and empty
// generation failures read as 502 because the fault is upstream, not in
// the request. Usage limit errors pass through untouched for the error
// handler's 429 pricing payload.
func assistError(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, executor.ErrRateLimited):
		return fiber.NewError(fiber.StatusTooManyRequests, "The model is rate limited right now, try again shortly")
	case errors.Is(err, executor.ErrRetrieval):
		return fiber.NewError(fiber.StatusBadGateway, "Context retrieval failed, try again")
	case errors.Is(err, executor.ErrEmptyGeneration):
		return fiber.NewError(fiber.StatusBadGateway, "The model returned nothing, try rewording the request")
	}
	return err
}

func (c *assistController) CreateSession(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.CreateAssistSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	err := serverutils.ValidateRequest(req)
	if err != nil {
		return err
	}

	res, err := c.assistService.CreateSession(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success create session", res))
}

func (c *assistController) GetAllSessions(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var projectId *uuid.UUID
	if raw := ctx.Query("project_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Invalid project_id")
		}
		projectId = &id
	}

	res, err := c.assistService.GetAllSessions(ctx.Context(), userId, projectId)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get all sessions", res))
}

func (c *assistController) GetHistory(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	id, _ := uuid.Parse(ctx.Params("id"))

	res, err := c.assistService.GetHistory(ctx.Context(), userId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get history", res))
}

func (c *assistController) RenameSession(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	id, _ := uuid.Parse(ctx.Params("id"))

	var req dto.RenameAssistSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}
	req.Id = id

	err := serverutils.ValidateRequest(req)
	if err != nil {
		return err
	}

	if err := c.assistService.RenameSession(ctx.Context(), userId, &req); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success rename session", nil))
}

func (c *assistController) DeleteSession(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	id, _ := uuid.Parse(ctx.Params("id"))

	if err := c.assistService.DeleteSession(ctx.Context(), userId, id); err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse[any]("Success delete session", nil))
}

func (c *assistController) Ask(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.AskAssistRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	err := serverutils.ValidateRequest(req)
	if err != nil {
		return err
	}

	res, err := c.assistService.Ask(ctx.Context(), userId, &req)
	if err != nil {
		return assistError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success ask assistant", res))
}

func (c *assistController) DraftScene(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.DraftSceneRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	err := serverutils.ValidateRequest(req)
	if err != nil {
		return err
	}

	res, err := c.assistService.DraftScene(ctx.Context(), userId, &req)
	if err != nil {
		return assistError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success draft scene", res))
}

func (c *assistController) SplitChapter(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.SplitChapterRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	err := serverutils.ValidateRequest(req)
	if err != nil {
		return err
	}

	res, err := c.assistService.SplitChapter(ctx.Context(), userId, &req)
	if err != nil {
		return assistError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success split chapter", res))
}

func (c *assistController) Rephrase(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.RephraseRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	err := serverutils.ValidateRequest(req)
	if err != nil {
		return err
	}

	res, err := c.assistService.Rephrase(ctx.Context(), userId, &req)
	if err != nil {
		return assistError(err)
	}

	return ctx.JSON(serverutils.SuccessResponse("Success rephrase", res))
}
