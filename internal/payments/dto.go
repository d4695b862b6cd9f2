package payments

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/armeriaops/armimport-backend/pkg/db/models"
	"github.com/armeriaops/armimport-backend/pkg/enums"
)

// PaymentDTO is the transport shape for a payment row.
type PaymentDTO struct {
	ID         uuid.UUID           `json:"id"`
	ClientID   uuid.UUID           `json:"client_id"`
	GroupID    *uuid.UUID          `json:"group_id,omitempty"`
	Amount     decimal.Decimal     `json:"amount"`
	Method     enums.PaymentMethod `json:"method"`
	Status     enums.PaymentStatus `json:"status"`
	Reference  string              `json:"reference,omitempty"`
	Notes      string              `json:"notes,omitempty"`
	RecordedBy *uuid.UUID          `json:"recorded_by,omitempty"`
	PaidAt     *time.Time          `json:"paid_at,omitempty"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

// RecordPaymentDTO carries the inputs for registering a payment. Amount comes
// in as a string so precision survives the JSON round trip.
type RecordPaymentDTO struct {
	ClientID  uuid.UUID           `json:"client_id" validate:"required"`
	GroupID   *uuid.UUID          `json:"group_id,omitempty"`
	Amount    string              `json:"amount" validate:"required"`
	Method    enums.PaymentMethod `json:"method" validate:"required"`
	Reference string              `json:"reference,omitempty"`
	Notes     string              `json:"notes,omitempty"`
}

func FromModel(p *models.Payment) *PaymentDTO {
	if p == nil {
		return nil
	}
	return &PaymentDTO{
		ID:         p.ID,
		ClientID:   p.ClientID,
		GroupID:    p.GroupID,
		Amount:     p.Amount,
		Method:     p.Method,
		Status:     p.Status,
		Reference:  p.Reference,
		Notes:      p.Notes,
		RecordedBy: p.RecordedBy,
		PaidAt:     p.PaidAt,
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}
