package unitofwork

import (
	"context"

	"ai-storywriting-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	ProjectRepository() contract.ProjectRepository
	ChapterRepository() contract.ChapterRepository
	SceneRepository() contract.SceneRepository
	CharacterRepository() contract.CharacterRepository
	NoteRepository() contract.NoteRepository
	DocEmbeddingRepository() contract.DocEmbeddingRepository

	AssistSessionRepository() contract.AssistSessionRepository
	AssistMessageRepository() contract.AssistMessageRepository
	SubscriptionRepository() contract.SubscriptionRepository
	CreditRepository() contract.CreditRepository
	ActivityRepository() contract.ActivityRepository
}
