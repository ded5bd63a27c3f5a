package entity

import (
	"time"

	"github.com/google/uuid"
)

type AssistRole string

const (
	AssistRoleUser      AssistRole = "user"
	AssistRoleAssistant AssistRole = "assistant"
)

type AssistSession struct {
	Id        uuid.UUID
	ProjectId uuid.UUID
	UserId    uuid.UUID
	Title     string
	CreatedAt time.Time
	UpdatedAt *time.Time
	DeletedAt *time.Time
	IsDeleted bool
}

// SourceUse records one snippet or direct document that shaped an answer.
type SourceUse struct {
	Path     string  `json:"path,omitempty"`
	DocType  string  `json:"doc_type"`
	DocTitle string  `json:"doc_title"`
	Score    float64 `json:"score,omitempty"`
	Direct   bool    `json:"direct,omitempty"`
}

type AssistMessage struct {
	Id        uuid.UUID
	SessionId uuid.UUID
	Role      AssistRole
	Content   string
	Sources   []SourceUse
	CreatedAt time.Time
}
