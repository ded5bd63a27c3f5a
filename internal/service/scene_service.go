package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"ai-storywriting-be/internal/dto"
	"ai-storywriting-be/internal/entity"
	"ai-storywriting-be/internal/repository/memory"
	"ai-storywriting-be/internal/repository/specification"
	"ai-storywriting-be/internal/repository/unitofwork"
	"ai-storywriting-be/pkg/events"
	pktNats "ai-storywriting-be/pkg/nats"
	"ai-storywriting-be/pkg/rag"
	"ai-storywriting-be/pkg/store"

	"github.com/google/uuid"
)

type ISceneService interface {
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateSceneRequest) (*dto.CreateSceneResponse, error)
	CreateBulk(ctx context.Context, userId uuid.UUID, req *dto.CreateScenesBulkRequest) (*dto.CreateScenesBulkResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowSceneResponse, error)
	Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateSceneRequest) error
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
}

type sceneService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	workspace        *store.Workspace
	docCache         *memory.DocCache
	eventPublisher   *pktNats.Publisher
}

func NewSceneService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	workspace *store.Workspace,
	docCache *memory.DocCache,
	eventPublisher *pktNats.Publisher,
) ISceneService {
	return &sceneService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		workspace:        workspace,
		docCache:         docCache,
		eventPublisher:   eventPublisher,
	}
}

func (c *sceneService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateSceneRequest) (*dto.CreateSceneResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	chapter, err := c.findOwnedChapter(ctx, uow, userId, req.ChapterId)
	if err != nil {
		return nil, err
	}
	if chapter == nil {
		return nil, fmt.Errorf("chapter not found")
	}

	maxPos, err := uow.SceneRepository().MaxPosition(ctx, req.ChapterId)
	if err != nil {
		return nil, err
	}

	scene := entity.Scene{
		Id:        uuid.New(),
		ChapterId: req.ChapterId,
		ProjectId: chapter.ProjectId,
		Title:     req.Title,
		Position:  maxPos + 1,
		Status:    entity.SceneStatusDraft,
		WordCount: countWords(req.Content),
		CreatedAt: time.Now(),
	}

	if err := uow.SceneRepository().Create(ctx, &scene); err != nil {
		return nil, err
	}

	path := c.workspace.ScenePath(scene.ProjectId, scene.ChapterId, scene.Id)
	if err := c.workspace.Write(path, req.Content); err != nil {
		return nil, err
	}

	if err := c.publishIndex(ctx, dto.PublishIndexDocMessage{
		DocId:     scene.Id,
		ProjectId: scene.ProjectId,
		DocType:   string(rag.DocTypeScene),
		DocTitle:  scene.Title,
		Path:      path,
	}); err != nil {
		return nil, err
	}

	c.publishEvent(ctx, "SCENE_CREATED", map[string]interface{}{
		"title":      scene.Title,
		"scene_id":   scene.Id,
		"chapter_id": scene.ChapterId,
		"project_id": scene.ProjectId,
		"user_id":    userId,
	})

	return &dto.CreateSceneResponse{
		Id:       scene.Id,
		Position: scene.Position,
	}, nil
}

// CreateBulk appends a batch of scenes to a chapter in request order. It is
// the apply step for a reviewed chapter-split proposal.
func (c *sceneService) CreateBulk(ctx context.Context, userId uuid.UUID, req *dto.CreateScenesBulkRequest) (*dto.CreateScenesBulkResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	chapter, err := c.findOwnedChapter(ctx, uow, userId, req.ChapterId)
	if err != nil {
		return nil, err
	}
	if chapter == nil {
		return nil, fmt.Errorf("chapter not found")
	}

	maxPos, err := uow.SceneRepository().MaxPosition(ctx, req.ChapterId)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	scenes := make([]*entity.Scene, 0, len(req.Scenes))
	for i, item := range req.Scenes {
		scenes = append(scenes, &entity.Scene{
			Id:        uuid.New(),
			ChapterId: req.ChapterId,
			ProjectId: chapter.ProjectId,
			Title:     item.Title,
			Position:  maxPos + i + 1,
			Status:    entity.SceneStatusDraft,
			WordCount: countWords(item.Content),
			CreatedAt: now,
		})
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.SceneRepository().CreateBulk(ctx, scenes); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(scenes))
	for i, scene := range scenes {
		path := c.workspace.ScenePath(scene.ProjectId, scene.ChapterId, scene.Id)
		if err := c.workspace.Write(path, req.Scenes[i].Content); err != nil {
			return nil, err
		}
		if err := c.publishIndex(ctx, dto.PublishIndexDocMessage{
			DocId:     scene.Id,
			ProjectId: scene.ProjectId,
			DocType:   string(rag.DocTypeScene),
			DocTitle:  scene.Title,
			Path:      path,
		}); err != nil {
			return nil, err
		}
		ids = append(ids, scene.Id)
	}

	c.publishEvent(ctx, "SCENES_SPLIT_APPLIED", map[string]interface{}{
		"chapter_id": req.ChapterId,
		"project_id": chapter.ProjectId,
		"count":      len(scenes),
		"user_id":    userId,
	})

	return &dto.CreateScenesBulkResponse{Ids: ids}, nil
}

func (c *sceneService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowSceneResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	scene, err := c.findOwnedScene(ctx, uow, userId, id)
	if err != nil || scene == nil {
		return nil, err
	}

	return &dto.ShowSceneResponse{
		Id:        scene.Id,
		ChapterId: scene.ChapterId,
		Title:     scene.Title,
		Position:  scene.Position,
		Status:    string(scene.Status),
		WordCount: scene.WordCount,
		Content:   c.readDoc(c.workspace.ScenePath(scene.ProjectId, scene.ChapterId, scene.Id)),
		CreatedAt: scene.CreatedAt,
		UpdatedAt: scene.UpdatedAt,
	}, nil
}

func (c *sceneService) Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateSceneRequest) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	scene, err := c.findOwnedScene(ctx, uow, userId, req.Id)
	if err != nil {
		return err
	}
	if scene == nil {
		return fmt.Errorf("scene not found")
	}

	now := time.Now()
	scene.Title = req.Title
	scene.WordCount = countWords(req.Content)
	scene.UpdatedAt = &now
	if req.Status != "" {
		scene.Status = entity.SceneStatus(req.Status)
	}

	if err := uow.SceneRepository().Update(ctx, scene); err != nil {
		return err
	}

	path := c.workspace.ScenePath(scene.ProjectId, scene.ChapterId, scene.Id)
	if err := c.workspace.Write(path, req.Content); err != nil {
		return err
	}
	c.docCache.Invalidate(path)

	return c.publishIndex(ctx, dto.PublishIndexDocMessage{
		DocId:     scene.Id,
		ProjectId: scene.ProjectId,
		DocType:   string(rag.DocTypeScene),
		DocTitle:  scene.Title,
		Path:      path,
	})
}

func (c *sceneService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	scene, err := c.findOwnedScene(ctx, uow, userId, id)
	if err != nil {
		return err
	}
	if scene == nil {
		return nil
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.SceneRepository().Delete(ctx, id); err != nil {
		return err
	}
	// Close the position gap left behind.
	if err := uow.SceneRepository().ShiftPositions(ctx, scene.ChapterId, scene.Position+1, -1); err != nil {
		return err
	}
	if err := uow.DocEmbeddingRepository().DeleteByDocId(ctx, id); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	path := c.workspace.ScenePath(scene.ProjectId, scene.ChapterId, scene.Id)
	c.docCache.Invalidate(path)
	if err := c.workspace.Remove(path); err != nil {
		return err
	}

	c.publishEvent(ctx, "SCENE_DELETED", map[string]interface{}{
		"title":      scene.Title,
		"scene_id":   scene.Id,
		"chapter_id": scene.ChapterId,
		"project_id": scene.ProjectId,
		"user_id":    userId,
	})

	return nil
}

func (c *sceneService) findOwnedScene(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, id uuid.UUID) (*entity.Scene, error) {
	scene, err := uow.SceneRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if scene == nil {
		return nil, nil
	}

	project, err := uow.ProjectRepository().FindOne(ctx,
		specification.ByID{ID: scene.ProjectId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, nil
	}
	return scene, nil
}

func (c *sceneService) findOwnedChapter(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, id uuid.UUID) (*entity.Chapter, error) {
	chapter, err := uow.ChapterRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if chapter == nil {
		return nil, nil
	}

	project, err := uow.ProjectRepository().FindOne(ctx,
		specification.ByID{ID: chapter.ProjectId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, nil
	}
	return chapter, nil
}

func (c *sceneService) readDoc(path string) string {
	if cached, ok := c.docCache.Get(path); ok {
		return cached
	}
	content, err := c.workspace.Read(path)
	if err != nil {
		return ""
	}
	c.docCache.Set(path, content)
	return content
}

func (c *sceneService) publishIndex(ctx context.Context, msg dto.PublishIndexDocMessage) error {
	msgJson, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return c.publisherService.Publish(ctx, msgJson)
}

func (c *sceneService) publishEvent(ctx context.Context, eventType string, data map[string]interface{}) {
	if c.eventPublisher == nil {
		return
	}
	evt := events.BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: time.Now(),
	}
	if err := c.eventPublisher.Publish(ctx, evt); err != nil {
		fmt.Printf("[WARN] Failed to publish %s event: %v\n", eventType, err)
	}
}

func countWords(s string) int {
	return len(strings.Fields(s))
}
