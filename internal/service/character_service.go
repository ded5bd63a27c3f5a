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

type ICharacterService interface {
	Create(ctx context.Context, userId uuid.UUID, req *dto.CreateCharacterRequest) (*dto.CreateCharacterResponse, error)
	Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowCharacterResponse, error)
	GetAll(ctx context.Context, userId uuid.UUID, projectId uuid.UUID) ([]*dto.GetAllCharactersResponse, error)
	Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateCharacterRequest) error
	Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error
}

type characterService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	workspace        *store.Workspace
	docCache         *memory.DocCache
	eventPublisher   *pktNats.Publisher
}

func NewCharacterService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	workspace *store.Workspace,
	docCache *memory.DocCache,
	eventPublisher *pktNats.Publisher,
) ICharacterService {
	return &characterService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		workspace:        workspace,
		docCache:         docCache,
		eventPublisher:   eventPublisher,
	}
}

func (c *characterService) Create(ctx context.Context, userId uuid.UUID, req *dto.CreateCharacterRequest) (*dto.CreateCharacterResponse, error) {
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

	character := entity.Character{
		Id:        uuid.New(),
		ProjectId: req.ProjectId,
		Name:      req.Name,
		Aliases:   req.Aliases,
		CreatedAt: time.Now(),
	}

	if err := uow.CharacterRepository().Create(ctx, &character); err != nil {
		return nil, err
	}

	path := c.workspace.CharacterPath(character.ProjectId, character.Id)
	if err := c.workspace.Write(path, req.Sheet); err != nil {
		return nil, err
	}

	if req.Sheet != "" {
		if err := c.publishIndex(ctx, &character, path); err != nil {
			return nil, err
		}
	}

	c.publishEvent(ctx, "CHARACTER_CREATED", map[string]interface{}{
		"name":         character.Name,
		"character_id": character.Id,
		"project_id":   character.ProjectId,
		"user_id":      userId,
	})

	return &dto.CreateCharacterResponse{Id: character.Id}, nil
}

func (c *characterService) Show(ctx context.Context, userId uuid.UUID, id uuid.UUID) (*dto.ShowCharacterResponse, error) {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	character, err := c.findOwnedCharacter(ctx, uow, userId, id)
	if err != nil || character == nil {
		return nil, err
	}

	return &dto.ShowCharacterResponse{
		Id:        character.Id,
		ProjectId: character.ProjectId,
		Name:      character.Name,
		Aliases:   character.Aliases,
		Sheet:     c.readDoc(c.workspace.CharacterPath(character.ProjectId, character.Id)),
		CreatedAt: character.CreatedAt,
		UpdatedAt: character.UpdatedAt,
	}, nil
}

func (c *characterService) GetAll(ctx context.Context, userId uuid.UUID, projectId uuid.UUID) ([]*dto.GetAllCharactersResponse, error) {
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

	characters, err := uow.CharacterRepository().FindAll(ctx,
		specification.ByProjectID{ProjectID: projectId},
		specification.OrderBy{Field: "name", Desc: false},
	)
	if err != nil {
		return nil, err
	}

	res := make([]*dto.GetAllCharactersResponse, 0, len(characters))
	for _, ch := range characters {
		res = append(res, &dto.GetAllCharactersResponse{
			Id:        ch.Id,
			Name:      ch.Name,
			Aliases:   ch.Aliases,
			CreatedAt: ch.CreatedAt,
			UpdatedAt: ch.UpdatedAt,
		})
	}
	return res, nil
}

func (c *characterService) Update(ctx context.Context, userId uuid.UUID, req *dto.UpdateCharacterRequest) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	character, err := c.findOwnedCharacter(ctx, uow, userId, req.Id)
	if err != nil {
		return err
	}
	if character == nil {
		return fmt.Errorf("character not found")
	}

	now := time.Now()
	character.Name = req.Name
	character.Aliases = req.Aliases
	character.UpdatedAt = &now

	if err := uow.CharacterRepository().Update(ctx, character); err != nil {
		return err
	}

	path := c.workspace.CharacterPath(character.ProjectId, character.Id)
	if err := c.workspace.Write(path, req.Sheet); err != nil {
		return err
	}
	c.docCache.Invalidate(path)

	return c.publishIndex(ctx, character, path)
}

func (c *characterService) Delete(ctx context.Context, userId uuid.UUID, id uuid.UUID) error {
	uow := c.uowFactory.NewUnitOfWork(ctx)

	character, err := c.findOwnedCharacter(ctx, uow, userId, id)
	if err != nil {
		return err
	}
	if character == nil {
		return nil
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.CharacterRepository().Delete(ctx, id); err != nil {
		return err
	}
	if err := uow.DocEmbeddingRepository().DeleteByDocId(ctx, id); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	path := c.workspace.CharacterPath(character.ProjectId, character.Id)
	c.docCache.Invalidate(path)
	if err := c.workspace.Remove(path); err != nil {
		return err
	}

	c.publishEvent(ctx, "CHARACTER_DELETED", map[string]interface{}{
		"name":         character.Name,
		"character_id": character.Id,
		"project_id":   character.ProjectId,
		"user_id":      userId,
	})

	return nil
}

func (c *characterService) findOwnedCharacter(ctx context.Context, uow unitofwork.UnitOfWork, userId uuid.UUID, id uuid.UUID) (*entity.Character, error) {
	character, err := uow.CharacterRepository().FindOne(ctx, specification.ByID{ID: id})
	if err != nil {
		return nil, err
	}
	if character == nil {
		return nil, nil
	}

	project, err := uow.ProjectRepository().FindOne(ctx,
		specification.ByID{ID: character.ProjectId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, nil
	}
	return character, nil
}

func (c *characterService) readDoc(path string) string {
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

func (c *characterService) publishIndex(ctx context.Context, character *entity.Character, path string) error {
	msg := dto.PublishIndexDocMessage{
		DocId:         character.Id,
		ProjectId:     character.ProjectId,
		DocType:       string(rag.DocTypeCharacter),
		DocTitle:      character.Name,
		CharacterName: character.Name,
		Path:          path,
	}
	msgJson, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return c.publisherService.Publish(ctx, msgJson)
}

func (c *characterService) publishEvent(ctx context.Context, eventType string, data map[string]interface{}) {
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
