package contract

import (
	"context"

	"ai-storywriting-be/internal/entity"
	"ai-storywriting-be/internal/repository/specification"

	"github.com/google/uuid"
)

type CharacterRepository interface {
	Create(ctx context.Context, character *entity.Character) error
	Update(ctx context.Context, character *entity.Character) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAllByProjectIdUnscoped(ctx context.Context, projectId uuid.UUID) error // Hard delete all
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Character, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Character, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
