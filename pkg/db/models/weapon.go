package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// WeaponCategory is the quota dimension referenced by weapon models and group
// category limits.
type WeaponCategory struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name      string    `gorm:"column:name;not null;unique"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

// Weapon is a catalog model (not a physical unit). Stock counts loaded,
// unretired serials.
type Weapon struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code       string          `gorm:"column:code;not null;unique"`
	ExternalID string          `gorm:"column:external_id;index"`
	Name       string          `gorm:"column:name;not null"`
	Caliber    string          `gorm:"column:caliber;not null"`
	Brand      string          `gorm:"column:brand;not null"`
	CategoryID uuid.UUID       `gorm:"column:category_id;type:uuid;not null"`
	UnitPrice  decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Stock      int             `gorm:"column:stock;not null;default:0"`
	Accessory  bool            `gorm:"column:accessory;not null;default:false"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
