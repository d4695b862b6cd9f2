package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/armeriaops/armimport-backend/pkg/enums"
)

// WeaponReservation is a client's claim on a weapon model and quantity prior
// to a physical serial being attached. SerialNumber is recorded once the
// reservation moves to assigned.
type WeaponReservation struct {
	ID           uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ClientID     uuid.UUID               `gorm:"column:client_id;type:uuid;not null"`
	WeaponID     uuid.UUID               `gorm:"column:weapon_id;type:uuid;not null"`
	Quantity     int                     `gorm:"column:quantity;not null"`
	UnitPrice    decimal.Decimal         `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Status       enums.ReservationStatus `gorm:"column:status;type:reservation_status;not null;default:'reserved'"`
	SerialNumber string                  `gorm:"column:serial_number"`
	CreatedAt    time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

// Total returns quantity times unit price.
func (r WeaponReservation) Total() decimal.Decimal {
	return r.UnitPrice.Mul(decimal.NewFromInt(int64(r.Quantity)))
}
