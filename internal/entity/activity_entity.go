package entity

import (
	"time"

	"github.com/google/uuid"
)

type Activity struct {
	Id        uuid.UUID
	ProjectId uuid.UUID
	UserId    uuid.UUID
	Kind      string
	Message   string
	Payload   map[string]interface{}
	CreatedAt time.Time
}
