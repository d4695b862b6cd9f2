package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/armeriaops/armimport-backend/pkg/enums"
)

// Document is an onboarding file uploaded for a client. Review metadata is
// populated when a back-office user approves or rejects it.
type Document struct {
	ID           uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ClientID     uuid.UUID            `gorm:"column:client_id;type:uuid;not null;index"`
	Kind         enums.DocumentKind   `gorm:"column:kind;type:document_kind;not null"`
	Status       enums.DocumentStatus `gorm:"column:status;type:document_status;not null;default:'pending'"`
	FileName     string               `gorm:"column:file_name;not null"`
	StoragePath  string               `gorm:"column:storage_path;not null"`
	ContentType  string               `gorm:"column:content_type"`
	SizeBytes    int64                `gorm:"column:size_bytes"`
	RejectReason string               `gorm:"column:reject_reason"`
	ReviewedByID *uuid.UUID           `gorm:"column:reviewed_by_id;type:uuid"`
	ReviewedAt   *time.Time           `gorm:"column:reviewed_at"`
	CreatedAt    time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
