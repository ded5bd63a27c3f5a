package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateProjectRequest struct {
	Title    string `json:"title" validate:"required,min=1,max=200"`
	Language string `json:"language" validate:"omitempty,max=20"`
	Synopsis string `json:"synopsis"`
}

type CreateProjectResponse struct {
	Id uuid.UUID `json:"id"`
}

type UpdateProjectRequest struct {
	Id       uuid.UUID
	Title    string `json:"title" validate:"required,min=1,max=200"`
	Language string `json:"language" validate:"omitempty,max=20"`
}

type ShowProjectResponse struct {
	Id           uuid.UUID  `json:"id"`
	Title        string     `json:"title"`
	Language     string     `json:"language"`
	Plan         string     `json:"plan"`
	Synopsis     string     `json:"synopsis"`
	ChapterCount int        `json:"chapter_count"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    *time.Time `json:"updated_at"`
}

type GetAllProjectsResponse struct {
	Id        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	Language  string     `json:"language"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

// UpdateDocRequest carries the new markdown body for a plan or synopsis
// document owned by a project or chapter.
type UpdateDocRequest struct {
	Id      uuid.UUID
	Content string `json:"content"`
}

type ShowDocResponse struct {
	Content string `json:"content"`
}
