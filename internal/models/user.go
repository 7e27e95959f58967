package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model

	Name         string `gorm:"not null"`
	Email        string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	AvatarURL    string
	Bio          string
	IsActive     bool `gorm:"not null;default:true"`
	LastLoginAt  *time.Time
}
