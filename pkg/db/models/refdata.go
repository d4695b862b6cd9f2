package models

import (
	"github.com/google/uuid"
)

// Province is a top-level geographic division used on client addresses.
type Province struct {
	ID   uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name string    `gorm:"column:name;not null;unique"`
}

// Canton belongs to exactly one province.
type Canton struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProvinceID uuid.UUID `gorm:"column:province_id;type:uuid;not null;uniqueIndex:idx_cantons_province_name"`
	Name       string    `gorm:"column:name;not null;uniqueIndex:idx_cantons_province_name"`
}

// IdentificationType is the catalog of accepted identity document types
// (cedula, RUC, passport). Code drives format validation on client intake.
type IdentificationType struct {
	ID   uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code string    `gorm:"column:code;not null;unique"`
	Name string    `gorm:"column:name;not null"`
}
