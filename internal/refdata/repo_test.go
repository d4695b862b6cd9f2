package refdata

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

func setupRefdataTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	provinces := `
CREATE TABLE IF NOT EXISTS provinces (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE
);`
	cantons := `
CREATE TABLE IF NOT EXISTS cantons (
  id TEXT PRIMARY KEY,
  province_id TEXT NOT NULL,
  name TEXT NOT NULL
);`
	identificationTypes := `
CREATE TABLE IF NOT EXISTS identification_types (
  id TEXT PRIMARY KEY,
  code TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL
);`
	for _, stmt := range []string{provinces, cantons, identificationTypes} {
		require.NoError(t, db.Exec(stmt).Error)
	}

	t.Cleanup(func() {
		db.Exec("DELETE FROM cantons")
		db.Exec("DELETE FROM provinces")
		db.Exec("DELETE FROM identification_types")
	})

	return db
}

func seedProvince(t *testing.T, db *gorm.DB, name string) models.Province {
	t.Helper()
	province := models.Province{ID: uuid.New(), Name: name}
	require.NoError(t, db.Create(&province).Error)
	return province
}

func seedCanton(t *testing.T, db *gorm.DB, provinceID uuid.UUID, name string) models.Canton {
	t.Helper()
	canton := models.Canton{ID: uuid.New(), ProvinceID: provinceID, Name: name}
	require.NoError(t, db.Create(&canton).Error)
	return canton
}

func TestListProvincesOrderedByName(t *testing.T) {
	db := setupRefdataTestDB(t)
	repo := NewRepository(db)

	seedProvince(t, db, "Pichincha")
	seedProvince(t, db, "Azuay")
	seedProvince(t, db, "Guayas")

	provinces, err := repo.ListProvinces(context.Background())
	require.NoError(t, err)
	require.Len(t, provinces, 3)
	assert.Equal(t, "Azuay", provinces[0].Name)
	assert.Equal(t, "Guayas", provinces[1].Name)
	assert.Equal(t, "Pichincha", provinces[2].Name)
}

func TestListCantonsScopedToProvince(t *testing.T) {
	db := setupRefdataTestDB(t)
	repo := NewRepository(db)

	pichincha := seedProvince(t, db, "Pichincha")
	guayas := seedProvince(t, db, "Guayas")
	seedCanton(t, db, pichincha.ID, "Quito")
	seedCanton(t, db, pichincha.ID, "Cayambe")
	seedCanton(t, db, guayas.ID, "Guayaquil")

	cantons, err := repo.ListCantons(context.Background(), pichincha.ID)
	require.NoError(t, err)
	require.Len(t, cantons, 2)
	assert.Equal(t, "Cayambe", cantons[0].Name)
	assert.Equal(t, "Quito", cantons[1].Name)
}

func TestFindIdentificationType(t *testing.T) {
	db := setupRefdataTestDB(t)
	repo := NewRepository(db)

	idType := models.IdentificationType{ID: uuid.New(), Code: "cedula", Name: "Cedula de identidad"}
	require.NoError(t, db.Create(&idType).Error)

	found, err := repo.FindIdentificationType(context.Background(), idType.ID)
	require.NoError(t, err)
	assert.Equal(t, "cedula", found.Code)

	_, err = repo.FindIdentificationType(context.Background(), uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestCantonBelongsToProvince(t *testing.T) {
	db := setupRefdataTestDB(t)
	repo := NewRepository(db)

	pichincha := seedProvince(t, db, "Pichincha")
	guayas := seedProvince(t, db, "Guayas")
	quito := seedCanton(t, db, pichincha.ID, "Quito")

	ok, err := repo.CantonBelongsToProvince(context.Background(), quito.ID, pichincha.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.CantonBelongsToProvince(context.Background(), quito.ID, guayas.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}
