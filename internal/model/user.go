package model

import "time"

// User mirrors the profile of an identity issued by the identity provider.
// The ID is the token subject, never generated here.
type User struct {
	ID       string  `gorm:"primaryKey" json:"id"`
	Email    string  `json:"email"`
	Name     string  `json:"name"`
	Username *string `gorm:"uniqueIndex" json:"username"`
	Avatar   *string `json:"avatar"`
	Role     string  `gorm:"not null;default:viewer" json:"role"`
	Deleted  bool    `gorm:"not null;default:false" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
