package mapper

import (
	"time"

	"ai-storywriting-be/internal/entity"
	"ai-storywriting-be/internal/model"

	"gorm.io/gorm"
)

type ChapterMapper struct{}

func NewChapterMapper() *ChapterMapper {
	return &ChapterMapper{}
}

func (m *ChapterMapper) ToEntity(c *model.Chapter) *entity.Chapter {
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

	return &entity.Chapter{
		Id:        c.Id,
		ProjectId: c.ProjectId,
		Title:     c.Title,
		Position:  c.Position,
		CreatedAt: c.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
		IsDeleted: c.DeletedAt.Valid,
	}
}

func (m *ChapterMapper) ToModel(c *entity.Chapter) *model.Chapter {
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

	return &model.Chapter{
		Id:        c.Id,
		ProjectId: c.ProjectId,
		Title:     c.Title,
		Position:  c.Position,
		CreatedAt: c.CreatedAt,
		UpdatedAt: updatedAt,
		DeletedAt: deletedAt,
	}
}

func (m *ChapterMapper) ToEntities(chapters []*model.Chapter) []*entity.Chapter {
	entities := make([]*entity.Chapter, len(chapters))
	for i, c := range chapters {
		entities[i] = m.ToEntity(c)
	}
	return entities
}
