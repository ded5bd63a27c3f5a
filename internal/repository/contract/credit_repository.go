package contract

import (
	"context"

	"ai-storywriting-be/internal/entity"
	"ai-storywriting-be/internal/repository/specification"

	"github.com/google/uuid"
)

type CreditRepository interface {
	Create(ctx context.Context, transaction *entity.CreditTransaction) error
	DeleteAllByUserIdUnscoped(ctx context.Context, userId uuid.UUID) error // Hard delete all
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.CreditTransaction, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// Balance sums all transaction amounts for the user. Usage rows carry
	// negative amounts, so the sum is the remaining credit.
	Balance(ctx context.Context, userId uuid.UUID) (int, error)
}
