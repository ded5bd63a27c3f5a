package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateNoteRequest struct {
	ProjectId uuid.UUID
	Title     string `json:"title" validate:"required,min=1,max=200"`
	Kind      string `json:"kind" validate:"omitempty,oneof=world note"`
	Content   string `json:"content"`
}

type CreateNoteResponse struct {
	Id uuid.UUID `json:"id"`
}

type UpdateNoteRequest struct {
	Id      uuid.UUID
	Title   string `json:"title" validate:"required,min=1,max=200"`
	Kind    string `json:"kind" validate:"omitempty,oneof=world note"`
	Content string `json:"content"`
}

type ShowNoteResponse struct {
	Id        uuid.UUID  `json:"id"`
	ProjectId uuid.UUID  `json:"project_id"`
	Title     string     `json:"title"`
	Kind      string     `json:"kind"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type GetAllNotesResponse struct {
	Id        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	Kind      string     `json:"kind"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}
