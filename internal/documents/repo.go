package documents

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/armeriaops/armimport-backend/pkg/db/models"
	"github.com/armeriaops/armimport-backend/pkg/enums"
)

// Repository exposes document persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a documents repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new document row.
func (r *Repository) Create(ctx context.Context, document *models.Document) error {
	return r.db.WithContext(ctx).Create(document).Error
}

// FindByID loads a document by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	var document models.Document
	if err := r.db.WithContext(ctx).First(&document, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &document, nil
}

// ListByClient returns a client's documents ordered by upload time.
func (r *Repository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Document, error) {
	var documents []models.Document
	err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("created_at").
		Find(&documents).Error
	if err != nil {
		return nil, err
	}
	return documents, nil
}

// SetReview records an approve or reject decision.
func (r *Repository) SetReview(ctx context.Context, id uuid.UUID, status enums.DocumentStatus, reason string, reviewedBy uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Document{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":         status,
			"reject_reason":  reason,
			"reviewed_by_id": reviewedBy,
			"reviewed_at":    at,
		}).Error
}

// Delete removes the document row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Document{}, "id = ?", id).Error
}

// CountApprovedByKinds returns how many of the given kinds the client has in
// approved status, counting each kind at most once.
func (r *Repository) CountApprovedByKinds(ctx context.Context, clientID uuid.UUID, kinds []enums.DocumentKind) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Document{}).
		Where("client_id = ? AND status = ? AND kind IN ?", clientID, enums.DocumentStatusApproved, kinds).
		Distinct("kind").
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
