package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

type DocEmbedding struct {
	Id             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProjectId      uuid.UUID       `gorm:"type:uuid;not null;index"`
	DocId          uuid.UUID       `gorm:"type:uuid;not null;index"`
	DocType        string          `gorm:"type:varchar(50);not null"`
	DocTitle       string          `gorm:"type:varchar(255)"`
	CharacterName  *string         `gorm:"type:varchar(255)"`
	SourcePath     string          `gorm:"type:text;not null"`
	Chunk          string          `gorm:"type:text"`
	ChunkIndex     int             `gorm:"default:0"`
	EmbeddingValue pgvector.Vector `gorm:"type:vector(768)"` // text-embedding-004 dimensions
	CreatedAt      time.Time       `gorm:"autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime"`
	DeletedAt      gorm.DeletedAt  `gorm:"index"`
}

func (DocEmbedding) TableName() string {
	return "doc_embeddings"
}
