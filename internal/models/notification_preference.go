package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type NotificationPreference struct {
	gorm.Model

	UserID uint `gorm:"not null;uniqueIndex"`
	// No column defaults here: gorm omits zero-value fields that carry a
	// default tag, which would turn an explicit false back into true on
	// the first insert. The handler sets both flags before saving.
	EmailNotifications bool `gorm:"not null"`
	PushNotifications  bool `gorm:"not null"`
	// Per-type opt-outs, e.g. {"task_assigned": true, "comment_added": false}.
	NotificationTypes datatypes.JSON `gorm:"type:jsonb"`

	// Relationships
	User User `gorm:"foreignKey:UserID;constraint:OnUpdate:Cascade,OnDelete:CASCADE"`
}
