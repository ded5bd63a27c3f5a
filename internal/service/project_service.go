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

type IProjectService interface {
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateProjectRequest) (*dto.CreateProjectResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowProjectResponse, error)
	GetAll(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllProjectsResponse, error)
	Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateProjectRequest) error
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
	UpdatePlan(ctx context.Context, userId uuid.UUID, req *dto.UpdateDocRequest) error
	UpdateSynopsis(ctx context.Context, userId uuid.UUID, req *dto.UpdateDocRequest) error
	ShowPlan(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowDocResponse, error)
	ShowSynopsis(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowDocResponse, error)
}

type projectService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	planService      PlanService
	workspace        *store.Workspace
	docCache         *memory.DocCache
	eventPublisher   *pktNats.Publisher
}

func NewProjectService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	planService PlanService,
	workspace *store.Workspace,
	docCache *memory.DocCache,
	eventPublisher *pktNats.Publisher,
) IProjectService {
	return &projectService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		planService:      planService,
		workspace:        workspace,
		docCache:         docCache,
		eventPublisher:   eventPublisher,
	}
}

func (c *projectService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateProjectRequest) (*dto.CreateProjectResponse, error) {
	if err := c.planService.CheckCanCreateProject(ctx, userId); err != nil {
		return nil, err
	}

	uow := c.uowFactory.NewUnitOfWork(ctx)
	project := entity.Project{
		Id:        uuid.New(),
		UserId:    userId,
		Title:     req.Title,
		Language:  req.Language,
		CreatedAt: time.Now(),
	}

	err := uow.ProjectRepository().Create(ctx, &project)
	if err != nil {
		return nil, err
	}

	// Seed the workspace so plan and synopsis exist from day one.
	if err := c.workspace.Write(c.workspace.ProjectPlanPath(project.Id), ""); err != nil {
		return nil, err
	}
	if err := c.workspace.Write(c.workspace.ProjectSynopsisPath(project.Id), req.Synopsis); err != nil {
		return nil, err
	}

	if req.Synopsis != "" {
		if err := c.publishIndex(ctx, dto.PublishIndexDocMessage{
			DocId:     project.Id,
			ProjectId: project.Id,
			DocType:   string(rag.DocTypeSynopsis),
			DocTitle:  project.Title,
			Path:      c.workspace.ProjectSynopsisPath(project.Id),
		}); err != nil {
			return nil, err
		}
	}

	c.publishEvent(ctx, "PROJECT_CREATED", map[string]interface{}{
		"title":      project.Title,
		"project_id": project.Id,
		"user_id":    userId,
	})

	return &dto.CreateProjectResponse{
		Id: project.Id,
	}, nil
}

func (c *projectService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowProjectResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	project, err := uow.ProjectRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, nil // Not found
	}

	chapterCount, err := uow.ChapterRepository().Count(ctx, specification.ByProjectID{ProjectID: id})
	if err != nil {
		return nil, err
	}

	res := dto.ShowProjectResponse{
		Id:           project.Id,
		Title:        project.Title,
		Language:     project.Language,
		Plan:         c.readDoc(c.workspace.ProjectPlanPath(id)),
		Synopsis:     c.readDoc(c.workspace.ProjectSynopsisPath(id)),
		ChapterCount: int(chapterCount),
		CreatedAt:    project.CreatedAt,
		UpdatedAt:    project.UpdatedAt,
	}

	return &res, nil
}

func (c *projectService) GetAll(ctx context.Context, userId uuid.UUID) ([]*dto.GetAllProjectsResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	projects, err := uow.ProjectRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.GetAllProjectsResponse, 0, len(projects))
	for _, p := range projects {
		res = append(res, &dto.GetAllProjectsResponse{
			Id:        p.Id,
			Title:     p.Title,
			Language:  p.Language,
			CreatedAt: p.CreatedAt,
			UpdatedAt: p.UpdatedAt,
		})
	}
	return res, nil
}

func (c *projectService) Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateProjectRequest) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	project, err := uow.ProjectRepository().FindOne(ctx,
		specification.ByID{ID: req.Id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return err
	}
	if project == nil {
		return fmt.Errorf("project not found")
	}

	now := time.Now()
	project.Title = req.Title
	project.Language = req.Language
	project.UpdatedAt = &now

	return uow.ProjectRepository().Update(ctx, project)
}

func (c *projectService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	project, err := uow.ProjectRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return err
	}
	if project == nil {
		return nil
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.ProjectRepository().Delete(ctx, id); err != nil {
		return err
	}
	if err := uow.DocEmbeddingRepository().DeleteByProjectIdUnscoped(ctx, id); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	// The workspace tree goes last. A failure here leaves orphan files,
	// not orphan rows.
	if err := c.workspace.RemoveProject(id); err != nil {
		return err
	}
	c.docCache.Flush()

	c.publishEvent(ctx, "PROJECT_DELETED", map[string]interface{}{
		"title":      project.Title,
		"project_id": project.Id,
		"user_id":    userId,
	})

	return nil
}

func (c *projectService) UpdatePlan(ctx context.Context, userId uuid.UUID, req *dto.UpdateDocRequest) error {
	return c.updateDoc(ctx, userId, req, rag.DocTypePlan)
}

func (c *projectService) UpdateSynopsis(ctx context.Context, userId uuid.UUID, req *dto.UpdateDocRequest) error {
	return c.updateDoc(ctx, userId, req, rag.DocTypeSynopsis)
}

func (c *projectService) ShowPlan(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowDocResponse, error) {
	if ok, err := c.ownsProject(ctx, userId, id); err != nil || !ok {
		return nil, err
	}
	return &dto.ShowDocResponse{Content: c.readDoc(c.workspace.ProjectPlanPath(id))}, nil
}

func (c *projectService) ShowSynopsis(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowDocResponse, error) {
	if ok, err := c.ownsProject(ctx, userId, id); err != nil || !ok {
		return nil, err
	}
	return &dto.ShowDocResponse{Content: c.readDoc(c.workspace.ProjectSynopsisPath(id))}, nil
}

func (c *projectService) updateDoc(ctx context.Context, userId uuid.UUID, req *dto.UpdateDocRequest, docType rag.DocumentType) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	project, err := uow.ProjectRepository().FindOne(ctx,
		specification.ByID{ID: req.Id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return err
	}
	if project == nil {
		return fmt.Errorf("project not found")
	}

	path := c.workspace.ProjectPlanPath(req.Id)
	if docType == rag.DocTypeSynopsis {
		path = c.workspace.ProjectSynopsisPath(req.Id)
	}

	if err := c.workspace.Write(path, req.Content); err != nil {
		return err
	}
	c.docCache.Invalidate(path)

	return c.publishIndex(ctx, dto.PublishIndexDocMessage{
		DocId:     project.Id,
		ProjectId: project.Id,
		DocType:   string(docType),
		DocTitle:  project.Title,
		Path:      path,
	})
}

func (c *projectService) ownsProject(ctx context.Context, userId uuid.UUID, id uuid.UUID) (bool, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)
	project, err := uow.ProjectRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return false, err
	}
	return project != nil, nil
}

// readDoc returns the cached document body, or empty when the file was
// never written. Missing project docs are normal for fresh projects.
func (c *projectService) readDoc(path string) string {
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

func (c *projectService) publishIndex(ctx context.Context, msg dto.PublishIndexDocMessage) error {
	msgJson, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return c.publisherService.Publish(ctx, msgJson)
}

func (c *projectService) publishEvent(ctx context.Context, eventType string, data map[string]interface{}) {
	if c.eventPublisher == nil {
		return
	}
	evt := events.BaseEvent{
		Type:       eventType,
		Data:       data,
		OccurredAt: time.Now(),
	}
	// We log error but don't fail the request as notification is auxiliary
	if err := c.eventPublisher.Publish(ctx, evt); err != nil {
		fmt.Printf("[WARN] Failed to publish %s event: %v\n", eventType, err)
	}
}
