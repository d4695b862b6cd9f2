package weapons

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/armeriaops/armimport-backend/pkg/db/models"
	"github.com/armeriaops/armimport-backend/pkg/pagination"
)

// Repository exposes weapon catalog persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts a catalog model.
func (r *Repository) Create(ctx context.Context, dto CreateWeaponDTO) (*models.Weapon, error) {
	weapon := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(weapon).Error; err != nil {
		return nil, err
	}
	return weapon, nil
}

// FindByID loads a weapon by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Weapon, error) {
	var weapon models.Weapon
	if err := r.db.WithContext(ctx).First(&weapon, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &weapon, nil
}

// FindByCode loads a weapon by its catalog code.
func (r *Repository) FindByCode(ctx context.Context, code string) (*models.Weapon, error) {
	var weapon models.Weapon
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&weapon).Error; err != nil {
		return nil, err
	}
	return &weapon, nil
}

// FindByExternalID loads a weapon by the upstream catalog identifier.
func (r *Repository) FindByExternalID(ctx context.Context, externalID string) (*models.Weapon, error) {
	var weapon models.Weapon
	if err := r.db.WithContext(ctx).Where("external_id = ?", externalID).First(&weapon).Error; err != nil {
		return nil, err
	}
	return &weapon, nil
}

// FindByAttributes matches weapons on normalized name, caliber, brand, and
// category name. Used by bulk serial import resolution; more than one row
// means the hints were ambiguous.
func (r *Repository) FindByAttributes(ctx context.Context, name, caliber, brand, category string) ([]models.Weapon, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Weapon{}).
		Joins("JOIN weapon_categories ON weapon_categories.id = weapons.category_id").
		Where("LOWER(weapons.name) = ?", normalize(name)).
		Where("LOWER(weapons.caliber) = ?", normalize(caliber))
	if brand != "" {
		query = query.Where("LOWER(weapons.brand) = ?", normalize(brand))
	}
	if category != "" {
		query = query.Where("LOWER(weapon_categories.name) = ?", normalize(category))
	}

	var weapons []models.Weapon
	if err := query.Find(&weapons).Error; err != nil {
		return nil, err
	}
	return weapons, nil
}

// List returns one catalog page ordered newest first.
func (r *Repository) List(ctx context.Context, cursor string, limit int) (WeaponsPageDTO, error) {
	normalizedLimit := pagination.NormalizeLimit(limit)
	limitWithBuffer := pagination.LimitWithBuffer(limit)
	decodedCursor, err := pagination.ParseCursor(strings.TrimSpace(cursor))
	if err != nil {
		return WeaponsPageDTO{}, err
	}

	query := r.db.WithContext(ctx).Model(&models.Weapon{})
	if decodedCursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)",
			decodedCursor.CreatedAt, decodedCursor.CreatedAt, decodedCursor.ID)
	}

	var rows []models.Weapon
	err = query.Order("created_at DESC").Order("id DESC").Limit(limitWithBuffer).Find(&rows).Error
	if err != nil {
		return WeaponsPageDTO{}, err
	}

	nextCursor := ""
	if len(rows) > normalizedLimit {
		rows = rows[:normalizedLimit]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}

	items := make([]WeaponDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *FromModel(&rows[i]))
	}
	return WeaponsPageDTO{Items: items, NextCursor: nextCursor}, nil
}

// Update persists the mutable catalog fields.
func (r *Repository) Update(ctx context.Context, weapon *models.Weapon) error {
	return r.db.WithContext(ctx).Save(weapon).Error
}

// AdjustStock changes the stock counter by delta within the bound connection.
func (r *Repository) AdjustStock(ctx context.Context, id uuid.UUID, delta int) error {
	return r.db.WithContext(ctx).
		Model(&models.Weapon{}).
		Where("id = ?", id).
		UpdateColumn("stock", gorm.Expr("stock + ?", delta)).Error
}

// ListCategories returns the full weapon category catalog.
func (r *Repository) ListCategories(ctx context.Context) ([]models.WeaponCategory, error) {
	var categories []models.WeaponCategory
	if err := r.db.WithContext(ctx).Order("name").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// FindCategory loads one weapon category by id.
func (r *Repository) FindCategory(ctx context.Context, id uuid.UUID) (*models.WeaponCategory, error) {
	var category models.WeaponCategory
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
