package memberships

import (
	"time"

	"github.com/google/uuid"

	"github.com/armeriaops/armimport-backend/pkg/db/models"
	"github.com/armeriaops/armimport-backend/pkg/enums"
)

// MembershipDTO is the transport shape for a group membership.
type MembershipDTO struct {
	ID         uuid.UUID              `json:"id"`
	ClientID   uuid.UUID              `json:"client_id"`
	GroupID    uuid.UUID              `json:"group_id"`
	Status     enums.MembershipStatus `json:"status"`
	AddedByID  *uuid.UUID             `json:"added_by_id,omitempty"`
	CancelNote string                 `json:"cancel_note,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
	UpdatedAt  time.Time              `json:"updated_at"`
}

func FromModel(m *models.GroupMembership) *MembershipDTO {
	if m == nil {
		return nil
	}
	return &MembershipDTO{
		ID:         m.ID,
		ClientID:   m.ClientID,
		GroupID:    m.GroupID,
		Status:     m.Status,
		AddedByID:  m.AddedByID,
		CancelNote: m.CancelNote,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}
