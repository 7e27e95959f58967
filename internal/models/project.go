package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Project struct {
	gorm.Model

	Name        string `gorm:"not null"`
	Description string
	Status      string `gorm:"not null;default:active;index:idx_project_status"`
	OwnerID     uint   `gorm:"not null;index"`
	Settings    datatypes.JSON

	// Relationships
	Owner User `gorm:"foreignKey:OwnerID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
