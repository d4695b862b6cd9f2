package reservations

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/armeriaops/armimport-backend/pkg/db/models"
	"github.com/armeriaops/armimport-backend/pkg/enums"
)

// ReservationDTO is the transport shape for a weapon reservation.
type ReservationDTO struct {
	ID           uuid.UUID               `json:"id"`
	ClientID     uuid.UUID               `json:"client_id"`
	WeaponID     uuid.UUID               `json:"weapon_id"`
	Quantity     int                     `json:"quantity"`
	UnitPrice    decimal.Decimal         `json:"unit_price"`
	Total        decimal.Decimal         `json:"total"`
	Status       enums.ReservationStatus `json:"status"`
	SerialNumber string                  `json:"serial_number,omitempty"`
	CreatedAt    time.Time               `json:"created_at"`
	UpdatedAt    time.Time               `json:"updated_at"`
}

func FromModel(r *models.WeaponReservation) *ReservationDTO {
	if r == nil {
		return nil
	}
	return &ReservationDTO{
		ID:           r.ID,
		ClientID:     r.ClientID,
		WeaponID:     r.WeaponID,
		Quantity:     r.Quantity,
		UnitPrice:    r.UnitPrice,
		Total:        r.Total(),
		Status:       r.Status,
		SerialNumber: r.SerialNumber,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}
