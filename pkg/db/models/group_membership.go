package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/armeriaops/armimport-backend/pkg/enums"
)

// GroupMembership is one client-in-group row. A client holds at most one
// membership whose status is not terminal; the partial unique index in the
// schema backs that invariant.
type GroupMembership struct {
	ID         uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ClientID   uuid.UUID              `gorm:"column:client_id;type:uuid;not null"`
	GroupID    uuid.UUID              `gorm:"column:group_id;type:uuid;not null"`
	Status     enums.MembershipStatus `gorm:"column:status;type:membership_status;not null;default:'pending'"`
	AddedByID  *uuid.UUID             `gorm:"column:added_by_id;type:uuid"`
	CancelNote string                 `gorm:"column:cancel_note"`
	CreatedAt  time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
