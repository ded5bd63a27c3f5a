package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateSceneRequest struct {
	ChapterId uuid.UUID
	Title     string `json:"title" validate:"required,min=1,max=200"`
	Content   string `json:"content"`
}

type CreateSceneResponse struct {
	Id       uuid.UUID `json:"id"`
	Position int       `json:"position"`
}

type UpdateSceneRequest struct {
	Id      uuid.UUID
	Title   string `json:"title" validate:"required,min=1,max=200"`
	Content string `json:"content"`
	Status  string `json:"status" validate:"omitempty,oneof=draft revised final"`
}

type ShowSceneResponse struct {
	Id        uuid.UUID  `json:"id"`
	ChapterId uuid.UUID  `json:"chapter_id"`
	Title     string     `json:"title"`
	Position  int        `json:"position"`
	Status    string     `json:"status"`
	WordCount int        `json:"word_count"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type GetAllScenesResponse struct {
	Id        uuid.UUID  `json:"id"`
	Title     string     `json:"title"`
	Position  int        `json:"position"`
	Status    string     `json:"status"`
	WordCount int        `json:"word_count"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

// CreateScenesBulkRequest appends a batch of scenes to a chapter in order.
// It is how a reviewed chapter-split proposal gets applied.
type CreateScenesBulkRequest struct {
	ChapterId uuid.UUID
	Scenes    []BulkSceneItem `json:"scenes" validate:"required,min=1,max=50,dive"`
}

type BulkSceneItem struct {
	Title   string `json:"title" validate:"required,min=1,max=200"`
	Content string `json:"content" validate:"required"`
}

type CreateScenesBulkResponse struct {
	Ids []uuid.UUID `json:"ids"`
}
