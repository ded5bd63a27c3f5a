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

type INoteService interface {
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateNoteRequest) (*dto.CreateNoteResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowNoteResponse, error)
	GetAll(ctx context.Context, userId uuid.UUID, projectId uuid.UUID) ([]*dto.GetAllNotesResponse, error)
	Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateNoteRequest) error
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
}

type noteService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	workspace        *store.Workspace
	docCache         *memory.DocCache
	eventPublisher   *pktNats.Publisher
}

func NewNoteService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	workspace *store.Workspace,
	docCache *memory.DocCache,
	eventPublisher *pktNats.Publisher,
) INoteService {
	return &noteService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		workspace:        workspace,
		docCache:         docCache,
		eventPublisher:   eventPublisher,
	}
}

func (c *noteService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateNoteRequest) (*dto.CreateNoteResponse, error) {
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

	note := entity.Note{
		Id:        uuid.New(),
		ProjectId: req.ProjectId,
		Title:     req.Title,
		Kind:      noteKind(req.Kind),
		CreatedAt: time.Now(),
	}

	if err := uow.NoteRepository().Create(ctx, &note); err != nil {
		return nil, err
	}

	path := c.workspace.NotePath(note.ProjectId, note.Id)
	if err := c.workspace.Write(path, req.Content); err != nil {
		return nil, err
	}

	if err := c.publishIndex(ctx, &note, path); err != nil {
		return nil, err
	}

	c.publishEvent(ctx, "NOTE_CREATED", map[string]interface{}{
		"title":      note.Title,
		"note_id":    note.Id,
		"project_id": note.ProjectId,
		"user_id":    userId,
	})

	return &dto.CreateNoteResponse{Id: note.Id}, nil
}

func (c *noteService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowNoteResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	note, err := c.findOwnedNote(ctx, uow, userId, id)
	if err != nil || note == nil {
		return nil, err
	}

	return &dto.ShowNoteResponse{
		Id:        note.Id,
		ProjectId: note.ProjectId,
		Title:     note.Title,
		Kind:      string(note.Kind),
		Content:   c.readDoc(c.workspace.NotePath(note.ProjectId, note.Id)),
		CreatedAt: note.CreatedAt,
		UpdatedAt: note.UpdatedAt,
	}, nil
}

func (c *noteService) GetAll(ctx context.Context, userId uuid.UUID, projectId uuid.UUID) ([]*dto.GetAllNotesResponse, error) {
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

	notes, err := uow.NoteRepository().FindAll(ctx,
		specification.ByProjectID{ProjectID: projectId},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.GetAllNotesResponse, 0, len(notes))
	for _, n := range notes {
		res = append(res, &dto.GetAllNotesResponse{
			Id:        n.Id,
			Title:     n.Title,
			Kind:      string(n.Kind),
			CreatedAt: n.CreatedAt,
			UpdatedAt: n.UpdatedAt,
		})
	}
	return res, nil
}

func (c *noteService) Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateNoteRequest) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	note, err := c.findOwnedNote(ctx, uow, userId, req.Id)
	if err != nil {
		return err
	}
	if note == nil {
		return fmt.Errorf("note not found")
	}

	now := time.Now()
	note.Title = req.Title
	note.Kind = noteKind(req.Kind)
	note.UpdatedAt = &now

	if err := uow.NoteRepository().Update(ctx, note); err != nil {
		return err
	}

	path := c.workspace.NotePath(note.ProjectId, note.Id)
	if err := c.workspace.Write(path, req.Content); err != nil {
		return err
	}
	c.docCache.Invalidate(path)

	return c.publishIndex(ctx, note, path)
}

func (c *noteService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	note, err := c.findOwnedNote(ctx, uow, userId, id)
	if err != nil {
		return err
	}
	if note == nil {
		return nil
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.NoteRepository().Delete(ctx, id); err != nil {
		return err
	}
	if err := uow.DocEmbeddingRepository().DeleteByDocId(ctx, id); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	path := c.workspace.NotePath(note.ProjectId, note.Id)
	c.docCache.Invalidate(path)
	if err := c.workspace.Remove(path); err != nil {
		return err
	}

	c.publishEvent(ctx, "NOTE_DELETED", map[string]interface{}{
		"title":      note.Title,
		"note_id":    note.Id,
		"project_id": note.ProjectId,
		"user_id":    userId,
	})

	return nil
}

func (c *noteService) findOwnedNote(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, id uuid.UUID) (*entity.Note, error) {
	note, err := uow.NoteRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if note == nil {
		return nil, nil
	}

	project, err := uow.ProjectRepository().FindOne(ctx,
		specification.ByID{ID: note.ProjectId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, nil
	}
	return note, nil
}

func (c *noteService) readDoc(path string) string {
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

func (c *noteService) publishIndex(ctx context.Context, note *entity.Note, path string) error {
	docType := rag.DocTypeNote
	if note.Kind == entity.NoteKindWorld {
		docType = rag.DocTypeWorld
	}
	msg := dto.PublishIndexDocMessage{
		DocId:     note.Id,
		ProjectId: note.ProjectId,
		DocType:   string(docType),
		DocTitle:  note.Title,
		Path:      path,
	}
	msgJson, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return c.publisherService.Publish(ctx, msgJson)
}

func (c *noteService) publishEvent(ctx context.Context, eventType string, data map[string]interface{}) {
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

func noteKind(s string) entity.NoteKind {
	if s == string(entity.NoteKindWorld) {
		return entity.NoteKindWorld
	}
	return entity.NoteKindFree
}
