package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateCharacterRequest struct {
	ProjectId uuid.UUID
	Name      string `json:"name" validate:"required,min=1,max=120"`
	Aliases   string `json:"aliases" validate:"omitempty,max=500"`
	Sheet     string `json:"sheet"`
}

type CreateCharacterResponse struct {
	Id uuid.UUID `json:"id"`
}

type UpdateCharacterRequest struct {
	Id      uuid.UUID
	Name    string `json:"name" validate:"required,min=1,max=120"`
	Aliases string `json:"aliases" validate:"omitempty,max=500"`
	Sheet   string `json:"sheet"`
}

type ShowCharacterResponse struct {
	Id        uuid.UUID  `json:"id"`
	ProjectId uuid.UUID  `json:"project_id"`
	Name      string     `json:"name"`
	Aliases   string     `json:"aliases"`
	Sheet     string     `json:"sheet"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

type GetAllCharactersResponse struct {
	Id        uuid.UUID  `json:"id"`
	Name      string     `json:"name"`
	Aliases   string     `json:"aliases"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}
