package entity

import (
	"time"

	"github.com/google/uuid"
)

// Project metadata. The manuscript itself (plan, synopsis, chapters, scenes)
// lives as markdown in the workspace store; the row only carries identity.
type Project struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	Title     string
	Language  string
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}
