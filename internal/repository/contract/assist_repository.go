package contract

import (
	"context"

	"ai-storywriting-be/internal/entity"
	"ai-storywriting-be/internal/repository/specification"

	"github.com/google/uuid"
)

type AssistSessionRepository interface {
	Create(ctx context.Context, session *entity.AssistSession) error
	Update(ctx context.Context, session *entity.AssistSession) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteAllByProjectIdUnscoped(ctx context.Context, projectId uuid.UUID) error // Hard delete all
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.AssistSession, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AssistSession, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}

type AssistMessageRepository interface {
	Create(ctx context.Context, message *entity.AssistMessage) error
	DeleteBySessionId(ctx context.Context, sessionId uuid.UUID) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.AssistMessage, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	// FindRecent returns the session's newest messages in chronological order.
	FindRecent(ctx context.Context, sessionId uuid.UUID, limit int) ([]*entity.AssistMessage, error)
}
