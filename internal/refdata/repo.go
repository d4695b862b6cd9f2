package refdata

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/armeriaops/armimport-backend/internal/repo"
	"github.com/armeriaops/armimport-backend/pkg/db/models"
)

// Repository exposes the read-only geography and identification catalogs.
type Repository struct {
	repo.Base
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// ListProvinces returns all provinces ordered by name.
func (r *Repository) ListProvinces(ctx context.Context) ([]models.Province, error) {
	var provinces []models.Province
	if err := r.DB(ctx).Order("name").Find(&provinces).Error; err != nil {
		return nil, err
	}
	return provinces, nil
}

// ListCantons returns the cantons of one province ordered by name.
func (r *Repository) ListCantons(ctx context.Context, provinceID uuid.UUID) ([]models.Canton, error) {
	var cantons []models.Canton
	err := r.DB(ctx).
		Where("province_id = ?", provinceID).
		Order("name").
		Find(&cantons).Error
	if err != nil {
		return nil, err
	}
	return cantons, nil
}

// ListIdentificationTypes returns the identification type catalog.
func (r *Repository) ListIdentificationTypes(ctx context.Context) ([]models.IdentificationType, error) {
	var types []models.IdentificationType
	if err := r.DB(ctx).Order("code").Find(&types).Error; err != nil {
		return nil, err
	}
	return types, nil
}

// FindIdentificationType loads one identification type by id.
func (r *Repository) FindIdentificationType(ctx context.Context, id uuid.UUID) (*models.IdentificationType, error) {
	var idType models.IdentificationType
	if err := r.DB(ctx).First(&idType, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &idType, nil
}

// CantonBelongsToProvince reports whether the canton exists under the province.
func (r *Repository) CantonBelongsToProvince(ctx context.Context, cantonID, provinceID uuid.UUID) (bool, error) {
	var count int64
	err := r.DB(ctx).
		Model(&models.Canton{}).
		Where("id = ? AND province_id = ?", cantonID, provinceID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
