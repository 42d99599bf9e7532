package models

import (
	"gorm.io/gorm"
)

// User is owned by the external identity provider; the engine only reads it.
type User struct {
	gorm.Model
	Name     string
	Email    string `gorm:"unique;not null"`
	ImageURL string
	Role     string `gorm:"default:student"` // student, admin
}

// DisplayName falls back to the e-mail when no name is set.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}
