package implementation

import (
	"context"
	"errors"

	"ai-storywriting-be/internal/entity"
	"ai-storywriting-be/internal/mapper"
	"ai-storywriting-be/internal/model"
	"ai-storywriting-be/internal/repository/contract"
	"ai-storywriting-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type DocEmbeddingRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.DocEmbeddingMapper
}

func NewDocEmbeddingRepository(db *gorm.DB) contract.DocEmbeddingRepository {
	return &DocEmbeddingRepositoryImpl{
		db:     db,
		mapper: mapper.NewDocEmbeddingMapper(),
	}
}

func (r *DocEmbeddingRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *DocEmbeddingRepositoryImpl) Create(ctx context.Context, embedding *entity.DocEmbedding) error {
	m := r.mapper.ToModel(embedding)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*embedding = *r.mapper.ToEntity(m)
	return nil
}

func (r *DocEmbeddingRepositoryImpl) CreateBulk(ctx context.Context, embeddings []*entity.DocEmbedding) error {
	if len(embeddings) == 0 {
		return nil
	}
	models := make([]*model.DocEmbedding, len(embeddings))
	for i, e := range embeddings {
		models[i] = r.mapper.ToModel(e)
	}

	if err := r.db.WithContext(ctx).Create(models).Error; err != nil {
		return err
	}

	// Update IDs back to entities
	for i, m := range models {
		*embeddings[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *DocEmbeddingRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.DocEmbedding{}, id).Error
}

func (r *DocEmbeddingRepositoryImpl) DeleteByDocId(ctx context.Context, docId uuid.UUID) error {
	return r.db.WithContext(ctx).Unscoped().Where("doc_id = ?", docId).Delete(&model.DocEmbedding{}).Error
}

func (r *DocEmbeddingRepositoryImpl) DeleteByProjectIdUnscoped(ctx context.Context, projectId uuid.UUID) error {
	return r.db.WithContext(ctx).Unscoped().Where("project_id = ?", projectId).Delete(&model.DocEmbedding{}).Error
}

func (r *DocEmbeddingRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.DocEmbedding, error) {
	var m model.DocEmbedding
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *DocEmbeddingRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocEmbedding, error) {
	var models []*model.DocEmbedding
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.DocEmbedding, len(models))
	for i, m := range models {
		entities[i] = r.mapper.ToEntity(m)
	}
	return entities, nil
}

func (r *DocEmbeddingRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.DocEmbedding{}).Count(&count).Error
	return count, err
}

// SearchSimilarWithScore returns embeddings with similarity scores, filtered by threshold.
// Embeddings carry project_id directly, so no join is needed to scope the search.
func (r *DocEmbeddingRepositoryImpl) SearchSimilarWithScore(ctx context.Context, embedding []float32, limit int, projectId uuid.UUID, threshold float64) ([]*contract.ScoredDocEmbedding, error) {
	if limit <= 0 {
		limit = 5
	}

	// Cosine distance in pgvector is: 1 - cosine_similarity
	// So we compute: 1 - (embedding_value <=> query_vector) = cosine_similarity
	type result struct {
		model.DocEmbedding
		Similarity float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	err := r.db.WithContext(ctx).
		Table("doc_embeddings").
		Select("doc_embeddings.*, 1 - (embedding_value <=> ?) as similarity", queryVector).
		Where("project_id = ?", projectId).
		Where("deleted_at IS NULL").
		Where("1 - (embedding_value <=> ?) >= ?", queryVector, threshold).
		Order("similarity DESC").
		Limit(limit).
		Scan(&results).Error

	if err != nil {
		return nil, err
	}

	scoredEmbeddings := make([]*contract.ScoredDocEmbedding, len(results))
	for i, res := range results {
		scoredEmbeddings[i] = &contract.ScoredDocEmbedding{
			Embedding:  r.mapper.ToEntity(&res.DocEmbedding),
			Similarity: res.Similarity,
		}
	}
	return scoredEmbeddings, nil
}
