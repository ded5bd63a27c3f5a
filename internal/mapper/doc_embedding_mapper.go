package mapper

import (
	"time"

	"ai-storywriting-be/internal/entity"
	"ai-storywriting-be/internal/model"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type DocEmbeddingMapper struct{}

func NewDocEmbeddingMapper() *DocEmbeddingMapper {
	return &DocEmbeddingMapper{}
}

func (m *DocEmbeddingMapper) ToEntity(e *model.DocEmbedding) *entity.DocEmbedding {
	if e == nil {
		return nil
	}

	var deletedAt *time.Time
	if e.DeletedAt.Valid {
		t := e.DeletedAt.Time
		deletedAt = &t
	}

	var updatedAt *time.Time
	if !e.UpdatedAt.IsZero() {
		t := e.UpdatedAt
		updatedAt = &t
	}

	return &entity.DocEmbedding{
		Id:             e.Id,
		ProjectId:      e.ProjectId,
		DocId:          e.DocId,
		DocType:        e.DocType,
		DocTitle:       e.DocTitle,
		CharacterName:  e.CharacterName,
		SourcePath:     e.SourcePath,
		Chunk:          e.Chunk,
		ChunkIndex:     e.ChunkIndex,
		EmbeddingValue: e.EmbeddingValue.Slice(),
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      updatedAt,
		DeletedAt:      deletedAt,
		IsDeleted:      e.DeletedAt.Valid,
	}
}

func (m *DocEmbeddingMapper) ToModel(e *entity.DocEmbedding) *model.DocEmbedding {
	if e == nil {
		return nil
	}

	var deletedAt gorm.DeletedAt
	if e.DeletedAt != nil {
		deletedAt = gorm.DeletedAt{Time: *e.DeletedAt, Valid: true}
	} else if e.IsDeleted {
		deletedAt = gorm.DeletedAt{Time: time.Now(), Valid: true}
	}

	var updatedAt time.Time
	if e.UpdatedAt != nil {
		updatedAt = *e.UpdatedAt
	}

	return &model.DocEmbedding{
		Id:             e.Id,
		ProjectId:      e.ProjectId,
		DocId:          e.DocId,
		DocType:        e.DocType,
		DocTitle:       e.DocTitle,
		CharacterName:  e.CharacterName,
		SourcePath:     e.SourcePath,
		Chunk:          e.Chunk,
		ChunkIndex:     e.ChunkIndex,
		EmbeddingValue: pgvector.NewVector(e.EmbeddingValue),
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      updatedAt,
		DeletedAt:      deletedAt,
	}
}

func (m *DocEmbeddingMapper) ToEntities(embeddings []*model.DocEmbedding) []*entity.DocEmbedding {
	entities := make([]*entity.DocEmbedding, len(embeddings))
	for i, e := range embeddings {
		entities[i] = m.ToEntity(e)
	}
	return entities
}
