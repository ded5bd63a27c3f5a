package mapper

import (
	"time"

	"ai-storywriting-be/internal/entity"
	"ai-storywriting-be/internal/model"

	"gorm.io/gorm"
)

type CharacterMapper struct{}

func NewCharacterMapper() *CharacterMapper {
	return &CharacterMapper{}
}

func (m *CharacterMapper) ToEntity(c *model.Character) *entity.Character {
	if c == nil {
		return nil
	}

	var deletedAt *time.Time
	if c.DeletedAt.Valid {
		t := c.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !c.UpdatedAt.IsZero() {
		t := c.UpdatedAt
		updatedAt = &t
	}

	return &entity.Character{
		Id:        c.Id,
		ProjectId: c.ProjectId,
		Name:      c.Name,
		Aliases:   c.Aliases,
		CreatedAt: c.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
		IsDeleted: c.DeletedAt.Valid,
	}
}

func (m *CharacterMapper) ToModel(c *entity.Character) *model.Character {
	if c == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if c.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *c.DeletedAt, Valid: true}
	} else if c.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if c.UpdatedAt != nil {
		updatedAt = *c.UpdatedAt
	}

	return &model.Character{
		Id:        c.Id,
		ProjectId: c.ProjectId,
		Name:      c.Name,
		Aliases:   c.Aliases,
		CreatedAt: c.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
	}
}

func (m *CharacterMapper) ToEntities(characters []*model.Character) []*entity.Character {
	entities := make([]*entity.Character, len(characters))
	for i, c := range characters {
		entities[i] = m.ToEntity(c)
	}
	return entities
}
