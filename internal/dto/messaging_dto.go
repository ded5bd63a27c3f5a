package dto

import (
	"github.com/google/uuid"
)

// PublishIndexDocMessage asks the indexer to (re)embed one workspace
// document. Content services publish it after every write so the vector
// index follows the manuscript. Deleted messages only remove embeddings.
type PublishIndexDocMessage struct {
	DocId         uuid.UUID `json:"doc_id"`
	ProjectId     uuid.UUID `json:"project_id"`
	DocType       string    `json:"doc_type"`
	DocTitle      string    `json:"doc_title"`
	CharacterName string    `json:"character_name,omitempty"`
	Path          string    `json:"path"`
	Deleted       bool      `json:"deleted,omitempty"`
}
