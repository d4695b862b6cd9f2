package weapons

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/armeriaops/armimport-backend/pkg/db/models"
	pkgerrors "github.com/armeriaops/armimport-backend/pkg/errors"
)

type stubWeaponRepo struct {
	weapons    map[uuid.UUID]*models.Weapon
	categories map[uuid.UUID]*models.WeaponCategory
}

func newStubWeaponRepo() *stubWeaponRepo {
	return &stubWeaponRepo{
		weapons:    map[uuid.UUID]*models.Weapon{},
		categories: map[uuid.UUID]*models.WeaponCategory{},
	}
}

func (r *stubWeaponRepo) Create(ctx context.Context, dto CreateWeaponDTO) (*models.Weapon, error) {
	weapon := &models.Weapon{
		ID:         uuid.New(),
		Code:       dto.Code,
		ExternalID: dto.ExternalID,
		Name:       dto.Name,
		Caliber:    dto.Caliber,
		Brand:      dto.Brand,
		CategoryID: dto.CategoryID,
		UnitPrice:  dto.UnitPrice,
		Accessory:  dto.Accessory,
	}
	r.weapons[weapon.ID] = weapon
	return weapon, nil
}

func (r *stubWeaponRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Weapon, error) {
	weapon, ok := r.weapons[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return weapon, nil
}

func (r *stubWeaponRepo) List(ctx context.Context, cursor string, limit int) (WeaponsPageDTO, error) {
	page := WeaponsPageDTO{}
	for _, weapon := range r.weapons {
		page.Items = append(page.Items, *FromModel(weapon))
	}
	return page, nil
}

func (r *stubWeaponRepo) Update(ctx context.Context, weapon *models.Weapon) error {
	r.weapons[weapon.ID] = weapon
	return nil
}

func (r *stubWeaponRepo) ListCategories(ctx context.Context) ([]models.WeaponCategory, error) {
	var out []models.WeaponCategory
	for _, category := range r.categories {
		out = append(out, *category)
	}
	return out, nil
}

func (r *stubWeaponRepo) FindCategory(ctx context.Context, id uuid.UUID) (*models.WeaponCategory, error) {
	category, ok := r.categories[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return category, nil
}

func newWeaponsFixture(t *testing.T) (*stubWeaponRepo, Service) {
	t.Helper()
	repo := newStubWeaponRepo()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return repo, svc
}

func seedCategory(repo *stubWeaponRepo, name string) *models.WeaponCategory {
	category := &models.WeaponCategory{ID: uuid.New(), Name: name}
	repo.categories[category.ID] = category
	return category
}

func TestCreateWeaponParsesPrice(t *testing.T) {
	repo, svc := newWeaponsFixture(t)
	category := seedCategory(repo, "Pistolas")

	dto, err := svc.CreateWeapon(context.Background(), CreateWeaponRequest{
		Code:       " GLK-17 ",
		Name:       "Glock 17",
		Caliber:    "9mm",
		Brand:      "Glock",
		CategoryID: category.ID,
		UnitPrice:  "850.50",
	})
	if err != nil {
		t.Fatalf("CreateWeapon: %v", err)
	}
	if dto.Code != "GLK-17" {
		t.Fatalf("code = %q, want trimmed", dto.Code)
	}
	if !dto.UnitPrice.Equal(decimal.RequireFromString("850.50")) {
		t.Fatalf("unit price = %s", dto.UnitPrice)
	}
}

func TestCreateWeaponRejectsUnknownCategory(t *testing.T) {
	_, svc := newWeaponsFixture(t)

	_, err := svc.CreateWeapon(context.Background(), CreateWeaponRequest{
		Code:       "GLK-17",
		Name:       "Glock 17",
		Caliber:    "9mm",
		Brand:      "Glock",
		CategoryID: uuid.New(),
		UnitPrice:  "850.50",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateWeaponRejectsBadPrice(t *testing.T) {
	repo, svc := newWeaponsFixture(t)
	category := seedCategory(repo, "Pistolas")

	for _, price := range []string{"", "abc", "-10", "0"} {
		_, err := svc.CreateWeapon(context.Background(), CreateWeaponRequest{
			Code:       "GLK-17",
			Name:       "Glock 17",
			Caliber:    "9mm",
			Brand:      "Glock",
			CategoryID: category.ID,
			UnitPrice:  price,
		})
		typed := pkgerrors.As(err)
		if typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("price %q: expected validation error, got %v", price, err)
		}
	}
}

func TestUpdateWeaponAppliesPartialFields(t *testing.T) {
	repo, svc := newWeaponsFixture(t)
	category := seedCategory(repo, "Pistolas")

	created, err := svc.CreateWeapon(context.Background(), CreateWeaponRequest{
		Code:       "GLK-17",
		Name:       "Glock 17",
		Caliber:    "9mm",
		Brand:      "Glock",
		CategoryID: category.ID,
		UnitPrice:  "850.50",
	})
	if err != nil {
		t.Fatalf("CreateWeapon: %v", err)
	}

	newPrice := "899.00"
	updated, err := svc.UpdateWeapon(context.Background(), created.ID, UpdateWeaponRequest{
		UnitPrice: &newPrice,
	})
	if err != nil {
		t.Fatalf("UpdateWeapon: %v", err)
	}
	if !updated.UnitPrice.Equal(decimal.RequireFromString("899.00")) {
		t.Fatalf("unit price = %s, want updated", updated.UnitPrice)
	}
	if updated.Name != "Glock 17" {
		t.Fatalf("name changed unexpectedly: %q", updated.Name)
	}
}

func TestUpdateWeaponNotFound(t *testing.T) {
	_, svc := newWeaponsFixture(t)

	name := "Beretta 92"
	_, err := svc.UpdateWeapon(context.Background(), uuid.New(), UpdateWeaponRequest{Name: &name})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListCategories(t *testing.T) {
	repo, svc := newWeaponsFixture(t)
	seedCategory(repo, "Pistolas")
	seedCategory(repo, "Carabinas")

	categories, err := svc.ListCategories(context.Background())
	if err != nil {
		t.Fatalf("ListCategories: %v", err)
	}
	if len(categories) != 2 {
		t.Fatalf("categories = %d, want 2", len(categories))
	}
}
