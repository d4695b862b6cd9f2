package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/armeriaops/armimport-backend/pkg/enums"
)

// ImportGroup is the batch container bound to one import licence that pools
// clients and their weapon reservations for a single shipment cycle.
type ImportGroup struct {
	ID            uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code          string           `gorm:"column:code;not null;unique"`
	LicenseNumber string           `gorm:"column:license_number;not null"`
	Type          enums.GroupType  `gorm:"column:type;type:group_type;not null"`
	Stage         enums.GroupStage `gorm:"column:stage;type:group_stage;not null;default:'created'"`
	Notes         string           `gorm:"column:notes"`
	CreatedByID   uuid.UUID        `gorm:"column:created_by_id;type:uuid;not null"`
	CreatedAt     time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

// GroupCategoryLimit caps how many units of one weapon category a quota group
// may pool.
type GroupCategoryLimit struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	GroupID    uuid.UUID `gorm:"column:group_id;type:uuid;not null;uniqueIndex:idx_group_category_limits_pair"`
	CategoryID uuid.UUID `gorm:"column:category_id;type:uuid;not null;uniqueIndex:idx_group_category_limits_pair"`
	MaxUnits   int       `gorm:"column:max_units;not null"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
}

// GroupVendorAssignment grants a vendor access to pool their clients into a
// group, optionally capped at a unit count (0 means unlimited).
type GroupVendorAssignment struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	GroupID   uuid.UUID `gorm:"column:group_id;type:uuid;not null;uniqueIndex:idx_group_vendor_assignments_pair"`
	VendorID  uuid.UUID `gorm:"column:vendor_id;type:uuid;not null;uniqueIndex:idx_group_vendor_assignments_pair"`
	MaxUnits  int       `gorm:"column:max_units;not null;default:0"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
