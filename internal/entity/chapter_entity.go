package entity

import (
	"time"

	"github.com/google/uuid"
)

type Chapter struct {
	Id        uuid.UUID
	ProjectId uuid.UUID
	Title     string
	Position  int
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}
