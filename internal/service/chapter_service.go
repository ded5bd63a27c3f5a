package service

import (
	"context"
	"encoding/json"
	"fmt"
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

type IChapterService interface {
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateChapterRequest) (*dto.CreateChapterResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowChapterResponse, error)
	GetAll(ctx context.Context, userId uuid.UUID, projectId uuid.UUID) ([]*dto.GetAllChaptersResponse, error)
	Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateChapterRequest) error
	Reorder(ctx context.Context, userId uuid.UUID, req *dto.ReorderChapterRequest) error
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
	UpdatePlan(ctx context.Context, userId uuid.UUID, req *dto.UpdateDocRequest) error
	UpdateSynopsis(ctx context.Context, userId uuid.UUID, req *dto.UpdateDocRequest) error
}

type chapterService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	workspace        *store.Workspace
	docCache         *memory.DocCache
	eventPublisher   *pktNats.Publisher
}

func NewChapterService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	workspace *store.Workspace,
	docCache *memory.DocCache,
	eventPublisher *pktNats.Publisher,
) IChapterService {
	return &chapterService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		workspace:        workspace,
		docCache:         docCache,
		eventPublisher:   eventPublisher,
	}
}

func (c *chapterService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateChapterRequest) (*dto.CreateChapterResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	project, err := uow.ProjectRepository().FindOne(ctx,
		specification.ByID{ID: req.ProjectId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, fmt.Errorf("project not found")
	}

	maxPos, err := uow.ChapterRepository().MaxPosition(ctx, req.ProjectId)
	if err != nil {
		return nil, err
	}

	chapter := entity.Chapter{
		Id:        uuid.New(),
		ProjectId: req.ProjectId,
		Title:     req.Title,
		Position:  maxPos + 1,
		CreatedAt: time.Now(),
	}

	if err := uow.ChapterRepository().Create(ctx, &chapter); err != nil {
		return nil, err
	}

	c.publishEvent(ctx, "CHAPTER_CREATED", map[string]interface{}{
		"title":      chapter.Title,
		"chapter_id": chapter.Id,
		"project_id": chapter.ProjectId,
		"user_id":    userId,
	})

	return &dto.CreateChapterResponse{
		Id:       chapter.Id,
		Position: chapter.Position,
	}, nil
}

func (c *chapterService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowChapterResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	chapter, err := c.findOwnedChapter(ctx, uow, userId, id)
	if err != nil || chapter == nil {
		return nil, err
	}

	scenes, err := uow.SceneRepository().FindAll(ctx,
		specification.ByChapterID{ChapterID: id},
		specification.ByPositionAsc{},
	)
	if err != nil {
		return nil, err
	}

	sceneItems := make([]dto.GetAllScenesResponse, 0, len(scenes))
	for _, s := range scenes {
		sceneItems = append(sceneItems, dto.GetAllScenesResponse{
			Id:        s.Id,
			Title:     s.Title,
			Position:  s.Position,
			Status:    string(s.Status),
			WordCount: s.WordCount,
			CreatedAt: s.CreatedAt,
			UpdatedAt: s.UpdatedAt,
		})
	}

	return &dto.ShowChapterResponse{
		Id:        chapter.Id,
		ProjectId: chapter.ProjectId,
		Title:     chapter.Title,
		Position:  chapter.Position,
		Plan:      c.readDoc(c.workspace.ChapterPlanPath(chapter.ProjectId, id)),
		Synopsis:  c.readDoc(c.workspace.ChapterSynopsisPath(chapter.ProjectId, id)),
		Scenes:    sceneItems,
		CreatedAt: chapter.CreatedAt,
		UpdatedAt: chapter.UpdatedAt,
	}, nil
}

func (c *chapterService) GetAll(ctx context.Context, userId uuid.UUID, projectId uuid.UUID) ([]*dto.GetAllChaptersResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	project, err := uow.ProjectRepository().FindOne(ctx,
		specification.ByID{ID: projectId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, fmt.Errorf("project not found")
	}

	chapters, err := uow.ChapterRepository().FindAll(ctx,
		specification.ByProjectID{ProjectID: projectId},
		specification.ByPositionAsc{},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.GetAllChaptersResponse, 0, len(chapters))
	for _, ch := range chapters {
		count, err := uow.SceneRepository().Count(ctx, specification.ByChapterID{ChapterID: ch.Id})
		if err != nil {
			return nil, err
		}
		res = append(res, &dto.GetAllChaptersResponse{
			Id:         ch.Id,
			Title:      ch.Title,
			Position:   ch.Position,
			SceneCount: int(count),
			CreatedAt:  ch.CreatedAt,
			UpdatedAt:  ch.UpdatedAt,
		})
	}
	return res, nil
}

func (c *chapterService) Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateChapterRequest) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	chapter, err := c.findOwnedChapter(ctx, uow, userId, req.Id)
	if err != nil {
		return err
	}
	if chapter == nil {
		return fmt.Errorf("chapter not found")
	}

	now := time.Now()
	chapter.Title = req.Title
	chapter.UpdatedAt = &now

	if err := uow.ChapterRepository().Update(ctx, chapter); err != nil {
		return err
	}

	// The title is baked into the indexed chunks, so a rename means the
	// chapter docs need a fresh pass.
	return c.reindexChapterDocs(ctx, chapter)
}

func (c *chapterService) Reorder(ctx context.Context, userId uuid.UUID, req *dto.ReorderChapterRequest) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	chapter, err := c.findOwnedChapter(ctx, uow, userId, req.Id)
	if err != nil {
		return err
	}
	if chapter == nil {
		return fmt.Errorf("chapter not found")
	}
	if chapter.Position == req.Position {
		return nil
	}

	chapters, err := uow.ChapterRepository().FindAll(ctx,
		specification.ByProjectID{ProjectID: chapter.ProjectId},
		specification.ByPositionAsc{},
	)
	if err != nil {
		return err
	}

	target := req.Position
	if target < 1 {
		target = 1
	}
	if target > len(chapters) {
		target = len(chapters)
	}

	// Rebuild the ordering in memory, then persist every shifted row in
	// one transaction.
	reordered := make([]*entity.Chapter, 0, len(chapters))
	for _, ch := range chapters {
		if ch.Id != chapter.Id {
			reordered = append(reordered, ch)
		}
	}
	idx := target - 1
	reordered = append(reordered[:idx], append([]*entity.Chapter{chapter}, reordered[idx:]...)...)

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	now := time.Now()
	for i, ch := range reordered {
		if ch.Position == i+1 {
			continue
		}
		ch.Position = i + 1
		ch.UpdatedAt = &now
		if err := uow.ChapterRepository().Update(ctx, ch); err != nil {
			return err
		}
	}

	return uow.Commit()
}

func (c *chapterService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	chapter, err := c.findOwnedChapter(ctx, uow, userId, id)
	if err != nil {
		return err
	}
	if chapter == nil {
		return nil
	}

	scenes, err := uow.SceneRepository().FindAll(ctx, specification.ByChapterID{ChapterID: id})
	if err != nil {
		return err
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.SceneRepository().DeleteByChapterId(ctx, id); err != nil {
		return err
	}
	if err := uow.ChapterRepository().Delete(ctx, id); err != nil {
		return err
	}

	// Chapter docs index under the chapter id, scene docs under their own.
	if err := uow.DocEmbeddingRepository().DeleteByDocId(ctx, id); err != nil {
		return err
	}
	for _, s := range scenes {
		if err := uow.DocEmbeddingRepository().DeleteByDocId(ctx, s.Id); err != nil {
			return err
		}
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	c.docCache.Invalidate(c.workspace.ChapterPlanPath(chapter.ProjectId, id))
	c.docCache.Invalidate(c.workspace.ChapterSynopsisPath(chapter.ProjectId, id))
	for _, s := range scenes {
		c.docCache.Invalidate(c.workspace.ScenePath(chapter.ProjectId, id, s.Id))
	}
	if err := c.workspace.RemoveChapter(chapter.ProjectId, id); err != nil {
		return err
	}

	c.publishEvent(ctx, "CHAPTER_DELETED", map[string]interface{}{
		"title":      chapter.Title,
		"chapter_id": chapter.Id,
		"project_id": chapter.ProjectId,
		"user_id":    userId,
	})

	return nil
}

func (c *chapterService) UpdatePlan(ctx context.Context, userId uuid.UUID, req *dto.UpdateDocRequest) error {
	return c.updateDoc(ctx, userId, req, rag.DocTypePlan)
}

func (c *chapterService) UpdateSynopsis(ctx context.Context, userId uuid.UUID, req *dto.UpdateDocRequest) error {
	return c.updateDoc(ctx, userId, req, rag.DocTypeSynopsis)
}

func (c *chapterService) updateDoc(ctx context.Context, userId uuid.UUID, req *dto.UpdateDocRequest, docType rag.DocumentType) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	chapter, err := c.findOwnedChapter(ctx, uow, userId, req.Id)
	if err != nil {
		return err
	}
	if chapter == nil {
		return fmt.Errorf("chapter not found")
	}

	path := c.workspace.ChapterPlanPath(chapter.ProjectId, chapter.Id)
	if docType == rag.DocTypeSynopsis {
		path = c.workspace.ChapterSynopsisPath(chapter.ProjectId, chapter.Id)
	}

	if err := c.workspace.Write(path, req.Content); err != nil {
		return err
	}
	c.docCache.Invalidate(path)

	return c.publishIndex(ctx, dto.PublishIndexDocMessage{
		DocId:     chapter.Id,
		ProjectId: chapter.ProjectId,
		DocType:   string(docType),
		DocTitle:  chapter.Title,
		Path:      path,
	})
}

// findOwnedChapter resolves a chapter and verifies the project belongs to
// the caller. Chapters carry no user id themselves.
func (c *chapterService) findOwnedChapter(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, id uuid.UUID) (*entity.Chapter, error) {
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

func (c *chapterService) reindexChapterDocs(ctx context.Context, chapter *entity.Chapter) error {
	planPath := c.workspace.ChapterPlanPath(chapter.ProjectId, chapter.Id)
	synopsisPath := c.workspace.ChapterSynopsisPath(chapter.ProjectId, chapter.Id)

	if c.workspace.Exists(planPath) {
		if err := c.publishIndex(ctx, dto.PublishIndexDocMessage{
			DocId:     chapter.Id,
			ProjectId: chapter.ProjectId,
			DocType:   string(rag.DocTypePlan),
			DocTitle:  chapter.Title,
			Path:      planPath,
		}); err != nil {
			return err
		}
	}
	if c.workspace.Exists(synopsisPath) {
		if err := c.publishIndex(ctx, dto.PublishIndexDocMessage{
			DocId:     chapter.Id,
			ProjectId: chapter.ProjectId,
			DocType:   string(rag.DocTypeSynopsis),
			DocTitle:  chapter.Title,
			Path:      synopsisPath,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (c *chapterService) readDoc(path string) string {
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

func (c *chapterService) publishIndex(ctx context.Context, msg dto.PublishIndexDocMessage) error {
	msgJson, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return c.publisherService.Publish(ctx, msgJson)
}

func (c *chapterService) publishEvent(ctx context.Context, eventType string, data map[string]interface{}) {
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
