package entity

import (
	"time"

	"github.com/google/uuid"
)

// DocEmbedding is one embedded chunk of a workspace document. SourcePath is
// the absolute workspace file the chunk came from so retrieved snippets can
// be traced back, and excluded when the same file is attached directly.
type DocEmbedding struct {
	Id             uuid.UUID
	ProjectId      uuid.UUID
	DocId          uuid.UUID
	DocType        string
	DocTitle       string
	CharacterName  *string
	SourcePath     string
	Chunk          string
	ChunkIndex     int
	EmbeddingValue []float32
	CreatedAt      time.Time
	UpdatedAt      *time.Time
	DeletedAt      *time.Time
	IsDeleted      bool
}
