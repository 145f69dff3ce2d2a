package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Collection struct {
	ID string `gorm:"primaryKey;type:uuid" json:"id"`
	// Titles are unique per project, ignoring case among live collections.
	// The store reports duplicates
	Title       string  `gorm:"not null;uniqueIndex:idx_collection_project_title" json:"title"`
	Description *string `json:"description"`
	ProjectID   string  `gorm:"not null;type:uuid;uniqueIndex:idx_collection_project_title" json:"project_id"`
	OwnerID     string  `gorm:"not null;index" json:"owner_id"`
	IsLive      bool    `gorm:"not null;default:false" json:"is_live"`
	Deleted     bool    `gorm:"not null;default:false" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Files []File `gorm:"foreignKey:CollectionID" json:"files,omitempty"`
}

func (c *Collection) BeforeCreate(*gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
