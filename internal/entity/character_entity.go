package entity

import (
	"time"

	"github.com/google/uuid"
)

type Character struct {
	Id        uuid.UUID
	ProjectId uuid.UUID
	Name      string
	Aliases   string
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}
