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

type AssistSessionRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.AssistMapper
}

func NewAssistSessionRepository(db *gorm.DB) contract.AssistSessionRepository {
	return &AssistSessionRepositoryImpl{
		db:     db,
		mapper: mapper.NewAssistMapper(),
	}
}

func (r *AssistSessionRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *AssistSessionRepositoryImpl) Create(ctx context.Context, session *entity.AssistSession) error {
	m := r.mapper.SessionToModel(session)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*session = *r.mapper.SessionToEntity(m)
	return nil
}

func (r *AssistSessionRepositoryImpl) Update(ctx context.Context, session *entity.AssistSession) error {
	m := r.mapper.SessionToModel(session)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*session = *r.mapper.SessionToEntity(m)
	return nil
}

func (r *AssistSessionRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.AssistSession{}, id).Error
}

func (r *AssistSessionRepositoryImpl) DeleteAllByProjectIdUnscoped(ctx context.Context, projectId uuid.UUID) error {
	return r.db.WithContext(ctx).Unscoped().Where("project_id = ?", projectId).Delete(&model.AssistSession{}).Error
}

func (r *AssistSessionRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.AssistSession, error) {
	var m model.AssistSession
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.SessionToEntity(&m), nil
}

func (r *AssistSessionRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AssistSession, error) {
	var models []*model.AssistSession
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.SessionsToEntities(models), nil
}

func (r *AssistSessionRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.AssistSession{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
