package serials

import (
	"time"

	"github.com/google/uuid"

	"github.com/armeriaops/armimport-backend/pkg/db/models"
	"github.com/armeriaops/armimport-backend/pkg/enums"
)

// SerialDTO is the transport shape for a physical weapon unit.
type SerialDTO struct {
	ID           uuid.UUID          `json:"id"`
	SerialNumber string             `json:"serial_number"`
	WeaponID     uuid.UUID          `json:"weapon_id"`
	GroupID      *uuid.UUID         `json:"group_id,omitempty"`
	Status       enums.SerialStatus `json:"status"`
	ClientID     *uuid.UUID         `json:"client_id,omitempty"`
	AssignedByID *uuid.UUID         `json:"assigned_by_id,omitempty"`
	AssignedAt   *time.Time         `json:"assigned_at,omitempty"`
	History      string             `json:"history,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// AssignRequest binds one available serial to one reserved reservation.
type AssignRequest struct {
	SerialID      uuid.UUID `json:"serial_id" validate:"required"`
	ReservationID uuid.UUID `json:"reservation_id" validate:"required"`
}

// ImportRow is one line of a bulk serial load. SerialNumber is mandatory;
// the remaining fields are model resolution hints tried in order: external
// id, catalog code, then normalized attribute match.
type ImportRow struct {
	SerialNumber string `json:"serial_number"`
	ExternalID   string `json:"external_id,omitempty"`
	Code         string `json:"code,omitempty"`
	Name         string `json:"name,omitempty"`
	Caliber      string `json:"caliber,omitempty"`
	Brand        string `json:"brand,omitempty"`
	Category     string `json:"category,omitempty"`
}

// ImportRequest is a bulk serial load scoped to an import group.
type ImportRequest struct {
	GroupID *uuid.UUID  `json:"group_id,omitempty"`
	Rows    []ImportRow `json:"rows" validate:"required,min=1"`
}

// ImportRowError reports one rejected row with its zero-based index.
type ImportRowError struct {
	Row    int    `json:"row"`
	Serial string `json:"serial_number,omitempty"`
	Reason string `json:"reason"`
}

// ImportResult summarizes a bulk load. Only rows counted in Loaded were
// persisted; Duplicates and Errors were skipped.
type ImportResult struct {
	Loaded     int              `json:"loaded"`
	Duplicates []string         `json:"duplicates"`
	Errors     []ImportRowError `json:"errors"`
}

func FromModel(s *models.WeaponSerial) *SerialDTO {
	if s == nil {
		return nil
	}
	return &SerialDTO{
		ID:           s.ID,
		SerialNumber: s.SerialNumber,
		WeaponID:     s.WeaponID,
		GroupID:      s.GroupID,
		Status:       s.Status,
		ClientID:     s.ClientID,
		AssignedByID: s.AssignedByID,
		AssignedAt:   s.AssignedAt,
		History:      s.History,
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}
