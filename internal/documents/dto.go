package documents

import (
	"time"

	"github.com/google/uuid"

	"github.com/armeriaops/armimport-backend/pkg/db/models"
	"github.com/armeriaops/armimport-backend/pkg/enums"
)

// DocumentDTO is the transport shape for an onboarding document.
type DocumentDTO struct {
	ID           uuid.UUID            `json:"id"`
	ClientID     uuid.UUID            `json:"client_id"`
	Kind         enums.DocumentKind   `json:"kind"`
	Status       enums.DocumentStatus `json:"status"`
	FileName     string               `json:"file_name"`
	ContentType  string               `json:"content_type,omitempty"`
	SizeBytes    int64                `json:"size_bytes,omitempty"`
	RejectReason string               `json:"reject_reason,omitempty"`
	ReviewedByID *uuid.UUID           `json:"reviewed_by_id,omitempty"`
	ReviewedAt   *time.Time           `json:"reviewed_at,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

// UploadDTO carries the metadata of a new document; the file content comes
// separately as a reader.
type UploadDTO struct {
	ClientID    uuid.UUID          `json:"client_id" validate:"required"`
	Kind        enums.DocumentKind `json:"kind" validate:"required"`
	FileName    string             `json:"file_name" validate:"required"`
	ContentType string             `json:"content_type"`
	SizeBytes   int64              `json:"size_bytes"`
}

func FromModel(d *models.Document) *DocumentDTO {
	if d == nil {
		return nil
	}
	return &DocumentDTO{
		ID:           d.ID,
		ClientID:     d.ClientID,
		Kind:         d.Kind,
		Status:       d.Status,
		FileName:     d.FileName,
		ContentType:  d.ContentType,
		SizeBytes:    d.SizeBytes,
		RejectReason: d.RejectReason,
		ReviewedByID: d.ReviewedByID,
		ReviewedAt:   d.ReviewedAt,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}
