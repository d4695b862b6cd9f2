package weapons

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/armeriaops/armimport-backend/pkg/db/models"
)

// WeaponDTO is the catalog transport shape.
type WeaponDTO struct {
	ID         uuid.UUID       `json:"id"`
	Code       string          `json:"code"`
	ExternalID string          `json:"external_id,omitempty"`
	Name       string          `json:"name"`
	Caliber    string          `json:"caliber"`
	Brand      string          `json:"brand"`
	CategoryID uuid.UUID       `json:"category_id"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Stock      int             `json:"stock"`
	Accessory  bool            `json:"accessory"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// CategoryDTO is the weapon category transport shape.
type CategoryDTO struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// WeaponsPageDTO is one page of catalog rows with the next cursor.
type WeaponsPageDTO struct {
	Items      []WeaponDTO `json:"items"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

// CreateWeaponDTO holds the data required to persist a catalog model.
type CreateWeaponDTO struct {
	Code       string
	ExternalID string
	Name       string
	Caliber    string
	Brand      string
	CategoryID uuid.UUID
	UnitPrice  decimal.Decimal
	Accessory  bool
}

// UpdateWeaponDTO carries the mutable catalog fields.
type UpdateWeaponDTO struct {
	Name      *string
	Caliber   *string
	Brand     *string
	UnitPrice *decimal.Decimal
	Accessory *bool
}

func FromModel(w *models.Weapon) *WeaponDTO {
	if w == nil {
		return nil
	}
	return &WeaponDTO{
		ID:         w.ID,
		Code:       w.Code,
		ExternalID: w.ExternalID,
		Name:       w.Name,
		Caliber:    w.Caliber,
		Brand:      w.Brand,
		CategoryID: w.CategoryID,
		UnitPrice:  w.UnitPrice,
		Stock:      w.Stock,
		Accessory:  w.Accessory,
		CreatedAt:  w.CreatedAt,
		UpdatedAt:  w.UpdatedAt,
	}
}

func categoryFromModel(c *models.WeaponCategory) *CategoryDTO {
	if c == nil {
		return nil
	}
	return &CategoryDTO{ID: c.ID, Name: c.Name}
}

func (c CreateWeaponDTO) ToModel() *models.Weapon {
	return &models.Weapon{
		Code:       c.Code,
		ExternalID: c.ExternalID,
		Name:       c.Name,
		Caliber:    c.Caliber,
		Brand:      c.Brand,
		CategoryID: c.CategoryID,
		UnitPrice:  c.UnitPrice,
		Accessory:  c.Accessory,
	}
}
