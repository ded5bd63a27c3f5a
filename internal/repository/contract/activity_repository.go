package contract

import (
	"context"

	"ai-storywriting-be/internal/entity"
	"ai-storywriting-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ActivityRepository interface {
	Create(ctx context.Context, activity *entity.Activity) error
	DeleteAllByProjectIdUnscoped(ctx context.Context, projectId uuid.UUID) error // Hard delete all
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Activity, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
