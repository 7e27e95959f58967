package models

import "gorm.io/gorm"

type Notification struct {
	gorm.Model

	UserID    uint   `gorm:"not null;index"`
	Type      string `gorm:"not null"`
	Title     string `gorm:"not null"`
	Content   string
	IsRead    bool  `gorm:"not null;default:false"`
	ProjectID *uint `gorm:"index"`
	TaskID    *uint

	// Relationships
	User    User     `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Project *Project `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Task    *Task    `gorm:"foreignKey:TaskID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
