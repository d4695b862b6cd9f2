package weapons

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/armeriaops/armimport-backend/pkg/db"
	"github.com/armeriaops/armimport-backend/pkg/db/models"
	pkgerrors "github.com/armeriaops/armimport-backend/pkg/errors"
)

// CreateWeaponRequest is the catalog intake payload.
type CreateWeaponRequest struct {
	Code       string    `json:"code" validate:"required"`
	ExternalID string    `json:"external_id"`
	Name       string    `json:"name" validate:"required"`
	Caliber    string    `json:"caliber" validate:"required"`
	Brand      string    `json:"brand" validate:"required"`
	CategoryID uuid.UUID `json:"category_id" validate:"required"`
	UnitPrice  string    `json:"unit_price" validate:"required"`
	Accessory  bool      `json:"accessory"`
}

// UpdateWeaponRequest carries partial catalog updates.
type UpdateWeaponRequest struct {
	Name      *string `json:"name,omitempty"`
	Caliber   *string `json:"caliber,omitempty"`
	Brand     *string `json:"brand,omitempty"`
	UnitPrice *string `json:"unit_price,omitempty"`
	Accessory *bool   `json:"accessory,omitempty"`
}

// Service defines the behavior needed by the weapons controller.
type Service interface {
	CreateWeapon(ctx context.Context, req CreateWeaponRequest) (*WeaponDTO, error)
	GetWeapon(ctx context.Context, id uuid.UUID) (*WeaponDTO, error)
	ListWeapons(ctx context.Context, cursor string, limit int) (WeaponsPageDTO, error)
	UpdateWeapon(ctx context.Context, id uuid.UUID, req UpdateWeaponRequest) (*WeaponDTO, error)
	ListCategories(ctx context.Context) ([]CategoryDTO, error)
}

type weaponRepository interface {
	Create(ctx context.Context, dto CreateWeaponDTO) (*models.Weapon, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Weapon, error)
	List(ctx context.Context, cursor string, limit int) (WeaponsPageDTO, error)
	Update(ctx context.Context, weapon *models.Weapon) error
	ListCategories(ctx context.Context) ([]models.WeaponCategory, error)
	FindCategory(ctx context.Context, id uuid.UUID) (*models.WeaponCategory, error)
}

type service struct {
	repo weaponRepository
}

// NewService constructs a weapons service with the provided repository.
func NewService(repo weaponRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("weapon repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) CreateWeapon(ctx context.Context, req CreateWeaponRequest) (*WeaponDTO, error) {
	price, err := parsePrice(req.UnitPrice)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.FindCategory(ctx, req.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown weapon category")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup category")
	}

	weapon, err := s.repo.Create(ctx, CreateWeaponDTO{
		Code:       strings.TrimSpace(req.Code),
		ExternalID: strings.TrimSpace(req.ExternalID),
		Name:       strings.TrimSpace(req.Name),
		Caliber:    strings.TrimSpace(req.Caliber),
		Brand:      strings.TrimSpace(req.Brand),
		CategoryID: req.CategoryID,
		UnitPrice:  price,
		Accessory:  req.Accessory,
	})
	if err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "weapon code already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create weapon")
	}
	return FromModel(weapon), nil
}

func (s *service) GetWeapon(ctx context.Context, id uuid.UUID) (*WeaponDTO, error) {
	weapon, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "weapon not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup weapon")
	}
	return FromModel(weapon), nil
}

func (s *service) ListWeapons(ctx context.Context, cursor string, limit int) (WeaponsPageDTO, error) {
	page, err := s.repo.List(ctx, cursor, limit)
	if err != nil {
		return WeaponsPageDTO{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "list weapons")
	}
	return page, nil
}

func (s *service) UpdateWeapon(ctx context.Context, id uuid.UUID, req UpdateWeaponRequest) (*WeaponDTO, error) {
	weapon, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "weapon not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup weapon")
	}

	if req.Name != nil {
		weapon.Name = strings.TrimSpace(*req.Name)
	}
	if req.Caliber != nil {
		weapon.Caliber = strings.TrimSpace(*req.Caliber)
	}
	if req.Brand != nil {
		weapon.Brand = strings.TrimSpace(*req.Brand)
	}
	if req.UnitPrice != nil {
		price, err := parsePrice(*req.UnitPrice)
		if err != nil {
			return nil, err
		}
		weapon.UnitPrice = price
	}
	if req.Accessory != nil {
		weapon.Accessory = *req.Accessory
	}

	if err := s.repo.Update(ctx, weapon); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update weapon")
	}
	return FromModel(weapon), nil
}

func (s *service) ListCategories(ctx context.Context) ([]CategoryDTO, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list categories")
	}
	dtos := make([]CategoryDTO, 0, len(categories))
	for i := range categories {
		dtos = append(dtos, *categoryFromModel(&categories[i]))
	}
	return dtos, nil
}

func parsePrice(value string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return decimal.Decimal{}, pkgerrors.New(pkgerrors.CodeValidation, "unit price must be a decimal number")
	}
	if price.IsNegative() || price.IsZero() {
		return decimal.Decimal{}, pkgerrors.New(pkgerrors.CodeValidation, "unit price must be positive")
	}
	return price, nil
}
