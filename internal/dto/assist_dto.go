package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateAssistSessionRequest struct {
	ProjectId uuid.UUID `json:"project_id" validate:"required"`
	Title     string    `json:"title" validate:"omitempty,max=200"`
}

type CreateSessionResponse struct {
	Id uuid.UUID `json:"id"`
}

type RenameAssistSessionRequest struct {
	Id    uuid.UUID
	Title string `json:"title" validate:"required,min=1,max=200"`
}

type GetAllSessionsResponse struct {
	Id        uuid.UUID  `json:"id"`
	ProjectId uuid.UUID  `json:"project_id"`
	Title     string     `json:"title"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

// AttachmentRef pins one document into an assist request. The document's
// content is quoted to the model verbatim and its file is excluded from
// similarity retrieval so it cannot appear twice.
type AttachmentRef struct {
	Kind string `json:"kind" validate:"required,oneof=project_plan project_synopsis chapter_plan chapter_synopsis scene character note"`
	// Id of the owning record. Optional for project_plan and
	// project_synopsis, which resolve through the session's project.
	Id uuid.UUID `json:"id,omitempty"`
}

// SourceUseDTO describes one document that shaped a reply, either a
// retrieved snippet (with a similarity score) or a pinned attachment.
type SourceUseDTO struct {
	Path     string  `json:"path,omitempty"`
	DocType  string  `json:"doc_type"`
	DocTitle string  `json:"doc_title"`
	Score    float64 `json:"score,omitempty"`
	Direct   bool    `json:"direct,omitempty"`
}

type AssistMessageDTO struct {
	Id        uuid.UUID      `json:"id"`
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	Sources   []SourceUseDTO `json:"sources,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

type AskAssistRequest struct {
	SessionId   uuid.UUID       `json:"session_id" validate:"required"`
	Question    string          `json:"question" validate:"required,min=1,max=4000"`
	Attachments []AttachmentRef `json:"attachments,omitempty" validate:"max=5,dive"`
}

type AskAssistResponse struct {
	SessionId    uuid.UUID         `json:"session_id"`
	SessionTitle string            `json:"title"`
	Sent         *AssistMessageDTO `json:"sent"`
	Reply        *AssistMessageDTO `json:"reply"`
}

type GetAssistHistoryResponse struct {
	Id        uuid.UUID      `json:"id"`
	Role      string         `json:"role"`
	Content   string         `json:"content"`
	Sources   []SourceUseDTO `json:"sources,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

type DraftSceneRequest struct {
	ChapterId   uuid.UUID       `json:"chapter_id" validate:"required"`
	Brief       string          `json:"brief" validate:"required,min=1,max=4000"`
	Guidance    string          `json:"guidance" validate:"omitempty,max=2000"`
	Attachments []AttachmentRef `json:"attachments,omitempty" validate:"max=5,dive"`
}

type DraftSceneResponse struct {
	Title   string         `json:"title"`
	Content string         `json:"content"`
	Sources []SourceUseDTO `json:"sources,omitempty"`
}

type SplitChapterRequest struct {
	ChapterId uuid.UUID `json:"chapter_id" validate:"required"`
	// Text to split. When blank the chapter's existing scenes are joined
	// in order and split instead.
	Text     string `json:"text"`
	Guidance string `json:"guidance" validate:"omitempty,max=2000"`
}

type ProposedSceneDTO struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// SplitChapterResponse is a proposal only. Applying it is a separate
// call to the bulk scene endpoint once the writer has reviewed it.
type SplitChapterResponse struct {
	Scenes []ProposedSceneDTO `json:"scenes"`
}

type RephraseRequest struct {
	ProjectId uuid.UUID  `json:"project_id" validate:"required"`
	SceneId   *uuid.UUID `json:"scene_id,omitempty"`
	Passage   string     `json:"passage" validate:"required,min=1,max=8000"`
	Guidance  string     `json:"guidance" validate:"omitempty,max=2000"`
}

type RephraseResponse struct {
	Suggestions []string `json:"suggestions"`
}

// --- Limit Exceeded Error Types ---

// LimitExceededError is a custom error that carries usage details
type LimitExceededError struct {
	Limit      int       `json:"limit"`
	Used       int       `json:"used"`
	ResetAfter time.Time `json:"reset_after"`
}

func (e *LimitExceededError) Error() string {
	return "daily assist usage limit exceeded"
}

// LimitExceededData is the data payload for 429 responses
type LimitExceededData struct {
	Limit            int       `json:"limit"`
	Used             int       `json:"used"`
	ResetAfter       time.Time `json:"reset_after"`
	ShowModalPricing bool      `json:"show_modal_pricing"`
}

// LimitExceededResponse is the full 429 response structure
type LimitExceededResponse struct {
	Success   bool              `json:"success"`
	Code      int               `json:"code"`
	Message   string            `json:"message"`
	ErrorType string            `json:"error_type"`
	Data      LimitExceededData `json:"data"`
}
