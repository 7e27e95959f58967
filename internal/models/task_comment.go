package models

import "gorm.io/gorm"

type TaskComment struct {
	gorm.Model

	TaskID   uint   `gorm:"not null;index"`
	UserID   uint   `gorm:"not null"`
	ParentID *uint
	Content  string `gorm:"not null"`
	IsEdited bool   `gorm:"not null;default:false"`

	// Relationships
	Task   Task         `gorm:"foreignKey:TaskID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	User   User         `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Parent *TaskComment `gorm:"foreignKey:ParentID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
