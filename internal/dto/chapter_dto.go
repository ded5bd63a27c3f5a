package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateChapterRequest struct {
	ProjectId uuid.UUID
	Title     string `json:"title" validate:"required,min=1,max=200"`
}

type CreateChapterResponse struct {
	Id       uuid.UUID `json:"id"`
	Position int       `json:"position"`
}

type UpdateChapterRequest struct {
	Id    uuid.UUID
	Title string `json:"title" validate:"required,min=1,max=200"`
}

type ReorderChapterRequest struct {
	Id       uuid.UUID
	Position int `json:"position" validate:"required,min=1"`
}

type ShowChapterResponse struct {
	Id        uuid.UUID              `json:"id"`
	ProjectId uuid.UUID              `json:"project_id"`
	Title     string                 `json:"title"`
	Position  int                    `json:"position"`
	Plan      string                 `json:"plan"`
	Synopsis  string                 `json:"synopsis"`
	Scenes    []GetAllScenesResponse `json:"scenes"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt *time.Time             `json:"updated_at"`
}

type GetAllChaptersResponse struct {
	Id         uuid.UUID  `json:"id"`
	Title      string     `json:"title"`
	Position   int        `json:"position"`
	SceneCount int        `json:"scene_count"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  *time.Time `json:"updated_at"`
}
