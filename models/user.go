package models

import (
	"time"

	"gorm.io/gorm"
)

// User is an editor signed in through Auth0.
type User struct {
	ID            uint           `json:"id" gorm:"primaryKey"`
	Email         string         `json:"email" gorm:"uniqueIndex"`
	Name          string         `json:"name"`
	Picture       string         `json:"picture"`
	Auth0ID       string         `json:"-" gorm:"uniqueIndex"`
	EmailVerified bool           `json:"email_verified"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`
}

func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}
