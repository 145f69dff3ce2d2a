package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProjectType string

const (
	ProjectTypeIcon ProjectType = "icon"
	ProjectTypeText ProjectType = "text"
)

type Project struct {
	ID   string      `gorm:"primaryKey;type:uuid" json:"id"`
	// Names are unique per owner
	Name string      `gorm:"not null;uniqueIndex:idx_project_owner_name" json:"name"`
	Type ProjectType `gorm:"not null" json:"type"`
	// Only one of Icon or Label is set depending on Type
	Icon        *string `json:"icon"`
	Label       *string `json:"label"`
	Bg          string  `gorm:"not null" json:"bg"`
	Color       string  `gorm:"not null" json:"color"`
	Description string  `json:"description"`
	OwnerID     string  `gorm:"not null;uniqueIndex:idx_project_owner_name" json:"owner_id"`
	Deleted     bool    `gorm:"not null;default:false" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Collections []Collection `gorm:"foreignKey:ProjectID" json:"-"`
}

func (p *Project) BeforeCreate(*gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
