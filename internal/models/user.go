package models

import (
	"strconv"

	"gorm.io/gorm"
)

// User represents a registered user in the system.
type User struct {
	gorm.Model
	Name         string `gorm:"not null" json:"name"`
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
}

// PublicID is the identifier used as the owner of interviews and feedback
func (u *User) PublicID() string {
	return strconv.FormatUint(uint64(u.ID), 10)
}

type UserProfile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (u *User) Profile() UserProfile {
	return UserProfile{ID: u.PublicID(), Name: u.Name, Email: u.Email}
}
