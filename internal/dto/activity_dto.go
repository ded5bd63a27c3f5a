package dto

import (
	"time"

	"github.com/google/uuid"
)

type ActivityResponse struct {
	Id        uuid.UUID              `json:"id"`
	ProjectId uuid.UUID              `json:"project_id"`
	Kind      string                 `json:"kind"`
	Message   string                 `json:"message"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}
