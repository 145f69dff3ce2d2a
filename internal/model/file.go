// Package model defines database models
package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type FileType string

const (
	FileTypeImage     FileType = "image"
	FileTypeVideo     FileType = "video"
	FileTypeAnimation FileType = "animation"
	FileTypeDesign    FileType = "design"
)

type Orientation string

const (
	OrientationPortrait  Orientation = "portrait"
	OrientationLandscape Orientation = "landscape"
	OrientationSquare    Orientation = "square"
)

type File struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	Title       string `gorm:"not null" json:"title"`
	Description string `json:"description"`
	FileName    string `gorm:"not null" json:"file_name"`
	// Object key inside whichever storage area accepted the upload. Fallback
	// uploads keep their prefix so reads can find them again.
	FilePath    string      `gorm:"not null;index" json:"file_path"`
	FileSize    int64       `json:"file_size"`
	MimeType    string      `gorm:"not null" json:"mime_type"`
	Type        FileType    `gorm:"not null" json:"type"`
	Orientation Orientation `gorm:"not null;default:landscape" json:"orientation"`
	// Both hold the storage path, converted to signed URLs when read
	PreviewURL   string `json:"preview_url"`
	ThumbnailURL string `json:"thumbnail_url"`

	// Nil when the collection could not be found while recording
	CollectionID *string `gorm:"type:uuid;index" json:"collection_id"`
	OwnerID      string  `gorm:"not null;index" json:"owner_id"`
	Deleted      bool    `gorm:"not null;default:false" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (f *File) BeforeCreate(*gorm.DB) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	return nil
}
