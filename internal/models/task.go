package models

import (
	"time"

	"gorm.io/gorm"
)

type Task struct {
	gorm.Model

	Title       string `gorm:"not null"`
	Description string
	Status      string `gorm:"not null;default:todo;index:idx_task_project_status"`
	Priority    string `gorm:"not null;default:medium"`
	ProjectID   uint   `gorm:"not null;index:idx_task_project_status"`
	CreatedBy   uint   `gorm:"not null"`
	AssignedTo  *uint  `gorm:"index:idx_task_assigned"`
	DueDate     *time.Time
	CompletedAt *time.Time

	// Relationships
	Project  Project `gorm:"foreignKey:ProjectID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Creator  User    `gorm:"foreignKey:CreatedBy;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
	Assignee *User   `gorm:"foreignKey:AssignedTo;constraint:OnUpdate:Cascade,OnDelete:SET NULL"`
}
