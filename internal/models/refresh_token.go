package models

import (
	"time"

	"gorm.io/gorm"
)

// RefreshToken tracks issued refresh tokens by their jti claim so that
// logout and rotation can revoke them server-side.
type RefreshToken struct {
	gorm.Model

	UserID    uint      `gorm:"not null;index"`
	TokenID   string    `gorm:"uniqueIndex;not null"`
	ExpiresAt time.Time `gorm:"not null"`
	RevokedAt *time.Time

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
