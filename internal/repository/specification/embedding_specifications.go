package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByDocID struct {
	DocID uuid.UUID
}

func (s ByDocID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("doc_id = ?", s.DocID)
}

type ByDocType struct {
	DocType string
}

func (s ByDocType) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("doc_type = ?", s.DocType)
}
