package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Scene struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ChapterId uuid.UUID      `gorm:"type:uuid;not null;index"`
	ProjectId uuid.UUID      `gorm:"type:uuid;not null;index"`
	Title     string         `gorm:"type:varchar(255);not null"`
	Position  int            `gorm:"not null;default:0"`
	Status    string         `gorm:"type:varchar(50);not null;default:'draft'"`
	WordCount int            `gorm:"default:0"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Scene) TableName() string {
	return "scenes"
}
