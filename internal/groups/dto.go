package groups

import (
	"time"

	"github.com/google/uuid"

	"github.com/armeriaops/armimport-backend/pkg/db/models"
	"github.com/armeriaops/armimport-backend/pkg/enums"
)

// GroupDTO is the transport shape for an import group.
type GroupDTO struct {
	ID            uuid.UUID        `json:"id"`
	Code          string           `json:"code"`
	LicenseNumber string           `json:"license_number"`
	Type          enums.GroupType  `json:"type"`
	Stage         enums.GroupStage `json:"stage"`
	Notes         string           `json:"notes,omitempty"`
	CreatedByID   uuid.UUID        `json:"created_by_id"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// CategoryLimitDTO is one configured quota line.
type CategoryLimitDTO struct {
	CategoryID uuid.UUID `json:"category_id"`
	MaxUnits   int       `json:"max_units"`
}

// VendorAssignmentDTO grants a vendor access to the group.
type VendorAssignmentDTO struct {
	VendorID uuid.UUID `json:"vendor_id"`
	MaxUnits int       `json:"max_units"`
}

// OccupancyLineDTO reports counted quantity against the configured limit for
// one category.
type OccupancyLineDTO struct {
	CategoryID uuid.UUID `json:"category_id"`
	Category   string    `json:"category"`
	MaxUnits   int       `json:"max_units"`
	Counted    int       `json:"counted"`
	Remaining  int       `json:"remaining"`
}

func FromModel(g *models.ImportGroup) *GroupDTO {
	if g == nil {
		return nil
	}
	return &GroupDTO{
		ID:            g.ID,
		Code:          g.Code,
		LicenseNumber: g.LicenseNumber,
		Type:          g.Type,
		Stage:         g.Stage,
		Notes:         g.Notes,
		CreatedByID:   g.CreatedByID,
		CreatedAt:     g.CreatedAt,
		UpdatedAt:     g.UpdatedAt,
	}
}
