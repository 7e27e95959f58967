package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ActivityLog struct {
	gorm.Model

	ProjectID    uint   `gorm:"not null;index"`
	UserID       uint   `gorm:"not null;index"`
	Action       string `gorm:"not null"`
	ResourceType string
	ResourceID   uint
	Details      datatypes.JSON `gorm:"type:jsonb"`

	// Relationships
	Project Project `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	User    User    `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
