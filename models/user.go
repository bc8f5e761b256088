package models

import (
	"time"

	"gorm.io/gorm"
)

// User is a registered account used for prompt pool administration.
// Players joining games are anonymous guests and never get a row here.
type User struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	UID          string         `json:"uid" gorm:"uniqueIndex;not null"`
	Username     string         `json:"username" gorm:"uniqueIndex;not null"`
	PasswordHash string         `json:"-" gorm:"not null"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}
