package contract

import (
	"context"

	"ai-storywriting-be/internal/entity"
	"ai-storywriting-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ChapterRepository interface {
	Create(ctx context.Context, chapter *entity.Chapter) error
	Update(ctx context.Context, chapter *entity.Chapter) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAllByProjectIdUnscoped(ctx context.Context, projectId uuid.UUID) error // Hard delete all
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Chapter, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Chapter, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// MaxPosition returns the highest position among a project's chapters, 0 when none exist.
	MaxPosition(ctx context.Context, projectId uuid.UUID) (int, error)
}
