package serials

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/armeriaops/armimport-backend/pkg/db/models"
)

func setupWeaponTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	categories := `
CREATE TABLE IF NOT EXISTS weapon_categories (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  created_at DATETIME
);`
	weapons := `
CREATE TABLE IF NOT EXISTS weapons (
  id TEXT PRIMARY KEY,
  code TEXT NOT NULL UNIQUE,
  external_id TEXT,
  name TEXT NOT NULL,
  caliber TEXT NOT NULL,
  brand TEXT NOT NULL,
  category_id TEXT NOT NULL,
  unit_price NUMERIC NOT NULL DEFAULT 0,
  stock INTEGER NOT NULL DEFAULT 0,
  accessory INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	for _, stmt := range []string{categories, weapons} {
		require.NoError(t, db.Exec(stmt).Error)
	}

	t.Cleanup(func() {
		db.Exec("DELETE FROM weapons")
		db.Exec("DELETE FROM weapon_categories")
	})

	return db
}

func seedWeapon(t *testing.T, db *gorm.DB, code, name, caliber, brand string, categoryID uuid.UUID) models.Weapon {
	t.Helper()
	weapon := models.Weapon{
		ID:         uuid.New(),
		Code:       code,
		Name:       name,
		Caliber:    caliber,
		Brand:      brand,
		CategoryID: categoryID,
	}
	require.NoError(t, db.Create(&weapon).Error)
	return weapon
}

func TestFindWeaponsByAttributesNormalizesWhitespace(t *testing.T) {
	db := setupWeaponTestDB(t)
	repo := NewRepository(db)

	category := models.WeaponCategory{ID: uuid.New(), Name: "Pistolas"}
	require.NoError(t, db.Create(&category).Error)
	weapon := seedWeapon(t, db, "GLK-17", "Glock  17", "9mm", "Glock", category.ID)

	matches, err := repo.FindWeaponsByAttributes(context.Background(), "Glock 17", "9MM", "", "")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, weapon.ID, matches[0].ID)

	matches, err = repo.FindWeaponsByAttributes(context.Background(), "  glock   17  ", "9mm", "glock", "pistolas")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, weapon.ID, matches[0].ID)
}

func TestFindWeaponsByAttributesFiltersByHints(t *testing.T) {
	db := setupWeaponTestDB(t)
	repo := NewRepository(db)

	pistols := models.WeaponCategory{ID: uuid.New(), Name: "Pistolas"}
	rifles := models.WeaponCategory{ID: uuid.New(), Name: "Rifles deportivos"}
	require.NoError(t, db.Create(&pistols).Error)
	require.NoError(t, db.Create(&rifles).Error)

	seedWeapon(t, db, "GLK-17", "Glock 17", "9mm", "Glock", pistols.ID)
	seedWeapon(t, db, "RGR-10", "Glock 17", "9mm", "Ruger", rifles.ID)

	matches, err := repo.FindWeaponsByAttributes(context.Background(), "Glock 17", "9mm", "", "")
	require.NoError(t, err)
	assert.Len(t, matches, 2)

	matches, err = repo.FindWeaponsByAttributes(context.Background(), "Glock 17", "9mm", "Ruger", "")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "RGR-10", matches[0].Code)

	matches, err = repo.FindWeaponsByAttributes(context.Background(), "Glock 17", "9mm", "", "Pistolas")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "GLK-17", matches[0].Code)

	matches, err = repo.FindWeaponsByAttributes(context.Background(), "Glock 19", "9mm", "", "")
	require.NoError(t, err)
	assert.Empty(t, matches)
}
