package entity

import (
	"time"

	"github.com/google/uuid"
)

type SceneStatus string

const (
	SceneStatusDraft   SceneStatus = "draft"
	SceneStatusRevised SceneStatus = "revised"
	SceneStatusFinal   SceneStatus = "final"
)

type Scene struct {
	Id        uuid.UUID
	ChapterId uuid.UUID
	ProjectId uuid.UUID
	Title     string
	Position  int
	Status    SceneStatus
	WordCount int
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}
