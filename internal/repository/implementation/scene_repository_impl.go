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

type SceneRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.SceneMapper
}

func NewSceneRepository(db *gorm.DB) contract.SceneRepository {
	return &SceneRepositoryImpl{
		db:     db,
		mapper: mapper.NewSceneMapper(),
	}
}

func (r *SceneRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *SceneRepositoryImpl) Create(ctx context.Context, scene *entity.Scene) error {
	m := r.mapper.ToModel(scene)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*scene = *r.mapper.ToEntity(m)
	return nil
}

func (r *SceneRepositoryImpl) CreateBulk(ctx context.Context, scenes []*entity.Scene) error {
	if len(scenes) == 0 {
		return nil
	}
	models := make([]*model.Scene, len(scenes))
	for i, s := range scenes {
		models[i] = r.mapper.ToModel(s)
	}
	if err := r.db.WithContext(ctx).Create(&models).Error; err != nil {
		return err
	}
	for i, m := range models {
		*scenes[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *SceneRepositoryImpl) Update(ctx context.Context, scene *entity.Scene) error {
	m := r.mapper.ToModel(scene)
	if err := r.db.WithContext(ctx).Save(m).Error; err != nil {
		return err
	}
	*scene = *r.mapper.ToEntity(m)
	return nil
}

func (r *SceneRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&model.Scene{}, id).Error
}

func (r *SceneRepositoryImpl) DeleteAllByProjectIdUnscoped(ctx context.Context, projectId uuid.UUID) error {
	return r.db.WithContext(ctx).Unscoped().Where("project_id = ?", projectId).Delete(&model.Scene{}).Error
}

func (r *SceneRepositoryImpl) DeleteByChapterId(ctx context.Context, chapterId uuid.UUID) error {
	return r.db.WithContext(ctx).Where("chapter_id = ?", chapterId).Delete(&model.Scene{}).Error
}

func (r *SceneRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Scene, error) {
	var m model.Scene
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ToEntity(&m), nil
}

func (r *SceneRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Scene, error) {
	var models []*model.Scene
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}

func (r *SceneRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Scene{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *SceneRepositoryImpl) MaxPosition(ctx context.Context, chapterId uuid.UUID) (int, error) {
	var max int
	err := r.db.WithContext(ctx).
		Model(&model.Scene{}).
		Where("chapter_id = ?", chapterId).
		Select("COALESCE(MAX(position), 0)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max, nil
}

func (r *SceneRepositoryImpl) ShiftPositions(ctx context.Context, chapterId uuid.UUID, fromPosition int, delta int) error {
	return r.db.WithContext(ctx).
		Model(&model.Scene{}).
		Where("chapter_id = ? AND position >= ?", chapterId, fromPosition).
		UpdateColumn("position", gorm.Expr("position + ?", delta)).Error
}
