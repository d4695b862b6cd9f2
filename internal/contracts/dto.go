package contracts

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/armeriaops/armimport-backend/pkg/db/models"
)

// ContractDTO is the transport shape for a sale contract.
type ContractDTO struct {
	ID         uuid.UUID       `json:"id"`
	Number     string          `json:"number"`
	ClientID   uuid.UUID       `json:"client_id"`
	SerialID   uuid.UUID       `json:"serial_id"`
	GroupID    *uuid.UUID      `json:"group_id,omitempty"`
	TotalPrice decimal.Decimal `json:"total_price"`
	PDFPath    string          `json:"pdf_path,omitempty"`
	EmailedAt  *time.Time      `json:"emailed_at,omitempty"`
	CreatedBy  uuid.UUID       `json:"created_by"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// IssueRequest identifies the assigned serial a contract is issued for.
type IssueRequest struct {
	SerialID uuid.UUID `json:"serial_id" validate:"required"`
}

func FromModel(c *models.Contract) *ContractDTO {
	if c == nil {
		return nil
	}
	return &ContractDTO{
		ID:         c.ID,
		Number:     c.Number,
		ClientID:   c.ClientID,
		SerialID:   c.SerialID,
		GroupID:    c.GroupID,
		TotalPrice: c.TotalPrice,
		PDFPath:    c.PDFPath,
		EmailedAt:  c.EmailedAt,
		CreatedBy:  c.CreatedBy,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}
