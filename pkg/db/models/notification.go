package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification is an in-app message for a back-office user. Kind is a short
// machine tag ("membership_approved", "group_stage_changed") the frontend
// maps to copy.
type Notification struct {
	ID        uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID    uuid.UUID  `gorm:"column:user_id;type:uuid;not null;index"`
	Kind      string     `gorm:"column:kind;not null"`
	Title     string     `gorm:"column:title;not null"`
	Body      string     `gorm:"column:body"`
	EntityID  *uuid.UUID `gorm:"column:entity_id;type:uuid"`
	ReadAt    *time.Time `gorm:"column:read_at"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
}

// Read reports whether the notification has been marked read.
func (n Notification) Read() bool { return n.ReadAt != nil }
