package contract

import (
	"context"

	"ai-storywriting-be/internal/entity"
	"ai-storywriting-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ScoredDocEmbedding wraps DocEmbedding with its similarity score
type ScoredDocEmbedding struct {
	Embedding  *entity.DocEmbedding
	Similarity float64 // 0.0 to 1.0 (1.0 = identical)
}

type DocEmbeddingRepository interface {
	Create(ctx context.Context, embedding *entity.DocEmbedding) error
	CreateBulk(ctx context.Context, embeddings []*entity.DocEmbedding) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByDocId(ctx context.Context, docId uuid.UUID) error
	DeleteByProjectIdUnscoped(ctx context.Context, projectId uuid.UUID) error // Hard delete all
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.DocEmbedding, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocEmbedding, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// SearchSimilarWithScore returns embeddings with their similarity scores, filtered by threshold
	SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, projectId uuid.UUID, threshold float64) ([]*ScoredDocEmbedding, error)
}
