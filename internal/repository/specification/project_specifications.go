package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByProjectID struct {
	ProjectID uuid.UUID
}

func (s ByProjectID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("project_id = ?", s.ProjectID)
}

type ByChapterID struct {
	ChapterID uuid.UUID
}

func (s ByChapterID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("chapter_id = ?", s.ChapterID)
}

// ByPositionAsc orders chapters or scenes by their manuscript position.
type ByPositionAsc struct{}

func (s ByPositionAsc) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}

// ByKind filters notes by their kind (worldbuilding vs free-form).
type ByKind struct {
	Kind string
}

func (s ByKind) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("kind = ?", s.Kind)
}

type ByTitle struct {
	Title string
}

func (s ByTitle) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("title = ?", s.Title)
}

// TitleContains filters by partial title match (case-insensitive)
type TitleContains struct {
	Title string
}

func (s TitleContains) Apply(db *gorm.DB) *gorm.DB {
	pattern := "%" + s.Title + "%"
	return db.Where("title ILIKE ?", pattern)
}

// NameContains filters characters by partial name match (case-insensitive)
type NameContains struct {
	Name string
}

func (s NameContains) Apply(db *gorm.DB) *gorm.DB {
	pattern := "%" + s.Name + "%"
	return db.Where("name ILIKE ?", pattern)
}
