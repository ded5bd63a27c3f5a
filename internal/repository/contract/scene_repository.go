package contract

import (
	"context"

	"ai-storywriting-be/internal/entity"
	"ai-storywriting-be/internal/repository/specification"

	"github.com/google/uuid"
)

type SceneRepository interface {
	Create(ctx context.Context, scene *entity.Scene) error
	CreateBulk(ctx context.Context, scenes []*entity.Scene) error
	Update(ctx context.Context, scene *entity.Scene) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAllByProjectIdUnscoped(ctx context.Context, projectId uuid.UUID) error // Hard delete all
	DeleteByChapterId(ctx context.Context, chapterId uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Scene, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Scene, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// MaxPosition returns the highest position among a chapter's scenes, 0 when none exist.
	MaxPosition(ctx context.Context, chapterId uuid.UUID) (int, error)
	// ShiftPositions moves every scene of the chapter at or after position by delta.
	ShiftPositions(ctx context.Context, chapterId uuid.UUID, fromPosition int, delta int) error
}
