package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/armeriaops/armimport-backend/pkg/enums"
)

// WeaponSerial is one physical weapon unit. The serial number is globally
// unique; GroupID scopes the unit to the import licence it arrived under.
// Client/user linkage is only populated while the serial is assigned.
type WeaponSerial struct {
	ID           uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SerialNumber string             `gorm:"column:serial_number;not null;unique"`
	WeaponID     uuid.UUID          `gorm:"column:weapon_id;type:uuid;not null"`
	GroupID      *uuid.UUID         `gorm:"column:group_id;type:uuid"`
	Status       enums.SerialStatus `gorm:"column:status;type:serial_status;not null;default:'available'"`
	ClientID     *uuid.UUID         `gorm:"column:client_id;type:uuid"`
	AssignedByID *uuid.UUID         `gorm:"column:assigned_by_id;type:uuid"`
	AssignedAt   *time.Time         `gorm:"column:assigned_at"`
	History      string             `gorm:"column:history;type:text"`
	CreatedAt    time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
