package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/armeriaops/armimport-backend/pkg/enums"
)

// Payment is one money movement against a client's balance. Amounts are
// always positive; Kind distinguishes charges from credits at the service
// layer via the payment method.
type Payment struct {
	ID         uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ClientID   uuid.UUID           `gorm:"column:client_id;type:uuid;not null;index"`
	GroupID    *uuid.UUID          `gorm:"column:group_id;type:uuid"`
	Amount     decimal.Decimal     `gorm:"column:amount;type:numeric(12,2);not null"`
	Method     enums.PaymentMethod `gorm:"column:method;type:payment_method;not null"`
	Status     enums.PaymentStatus `gorm:"column:status;type:payment_status;not null;default:'pending'"`
	Reference  string              `gorm:"column:reference"`
	Notes      string              `gorm:"column:notes"`
	RecordedBy *uuid.UUID          `gorm:"column:recorded_by;type:uuid"`
	PaidAt     *time.Time          `gorm:"column:paid_at"`
	CreatedAt  time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
