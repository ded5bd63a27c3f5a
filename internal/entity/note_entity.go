package entity

import (
	"time"

	"github.com/google/uuid"
)

type NoteKind string

const (
	// NoteKindWorld marks worldbuilding reference documents (places, lore, rules).
	NoteKindWorld NoteKind = "world"
	// NoteKindFree marks loose research or scratch notes.
	NoteKindFree NoteKind = "note"
)

type Note struct {
	Id        uuid.UUID
	ProjectId uuid.UUID
	Title     string
	Kind      NoteKind
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}
