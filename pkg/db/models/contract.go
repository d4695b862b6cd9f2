package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Contract is the sale record produced when a serial is sold to a client.
// PDFPath is filled in after the document is rendered; rendering runs after
// the sale transaction commits, so a contract row can briefly exist without
// its file.
type Contract struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Number     string          `gorm:"column:number;not null;unique"`
	ClientID   uuid.UUID       `gorm:"column:client_id;type:uuid;not null;index"`
	SerialID   uuid.UUID       `gorm:"column:serial_id;type:uuid;not null"`
	GroupID    *uuid.UUID      `gorm:"column:group_id;type:uuid"`
	TotalPrice decimal.Decimal `gorm:"column:total_price;type:numeric(12,2);not null"`
	PDFPath    string          `gorm:"column:pdf_path"`
	EmailedAt  *time.Time      `gorm:"column:emailed_at"`
	CreatedBy  uuid.UUID       `gorm:"column:created_by;type:uuid;not null"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
