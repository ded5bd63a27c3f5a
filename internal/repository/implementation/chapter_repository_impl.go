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
	"gorm.io/gorm"
)

type ChapterRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChapterMapper
}

func NewChapterRepository(db *gorm.DB) contract.ChapterRepository {
	return &ChapterRepositoryImpl{
		db:     db,
		mapper: mapper.NewChapterMapper(),
	}
}

func (r *ChapterRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ChapterRepositoryImpl) Create(ctx context.Context, chapter *entity.Chapter) error {
	m := r.mapper.ToModel(chapter)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*chapter = *r.mapper.ToEntity(m)
	return nil
}

func (r *ChapterRepositoryImpl) Update(ctx context.Context, chapter *entity.Chapter) error {
	m := r.mapper.ToModel(chapter)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*chapter = *r.mapper.ToEntity(m)
	return nil
}

func (r *ChapterRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Chapter{}, id).Error
}

func (r *ChapterRepositoryImpl) DeleteAllByProjectIdUnscoped(ctx context.Context, projectId uuid.UUID) error {
	return r.db.WithContext(ctx).Unscoped().Where("project_id = ?", projectId).Delete(&model.Chapter{}).Error
}

func (r *ChapterRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Chapter, error) {
	var m model.Chapter
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *ChapterRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Chapter, error) {
	var models []*model.Chapter
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *ChapterRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Chapter{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ChapterRepositoryImpl) MaxPosition(ctx context.Context, projectId uuid.UUID) (int, error) {
	var max int
	err := r.db.WithContext(ctx).
		Model(&model.Chapter{}).
		Where("project_id = ?", projectId).
		Select("COALESCE(MAX(position), 0)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max, nil
}
