package implementation

import (
	"context"

	"ai-storywriting-be/internal/entity"
	"ai-storywriting-be/internal/mapper"
	"ai-storywriting-be/internal/model"
	"ai-storywriting-be/internal/repository/contract"
	"ai-storywriting-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AssistMessageRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.AssistMapper
}

func NewAssistMessageRepository(db *gorm.DB) contract.AssistMessageRepository {
	return &AssistMessageRepositoryImpl{
		db:     db,
		mapper: mapper.NewAssistMapper(),
	}
}

func (r *AssistMessageRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *AssistMessageRepositoryImpl) Create(ctx context.Context, message *entity.AssistMessage) error {
	m := r.mapper.MessageToModel(message)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*message = *r.mapper.MessageToEntity(m)
	return nil
}

func (r *AssistMessageRepositoryImpl) DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("session_id = ?", sessionId).Delete(&model.AssistMessage{}).Error
}

func (r *AssistMessageRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AssistMessage, error) {
	var models []*model.AssistMessage
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.MessagesToEntities(models), nil
}

func (r *AssistMessageRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.AssistMessage{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindRecent fetches the newest messages first, then reverses so callers get
// chronological order ready for prompt history.
func (r *AssistMessageRepositoryImpl) FindRecent(ctx context.Context, sessionId uuid.UUID, limit int) ([]*entity.AssistMessage, error) {
	if limit <= 0 {
		limit = 20
	}
	var models []*model.AssistMessage
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionId).
		Order("created_at DESC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}

	for i, j := 0, len(models)-1; i < j; i, j = i+1, j-1 {
		models[i], models[j] = models[j], models[i]
	}
	return r.mapper.MessagesToEntities(models), nil
}
