package reservations

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/armeriaops/armimport-backend/pkg/db/models"
	"github.com/armeriaops/armimport-backend/pkg/enums"
)

// Repository exposes reservation persistence operations.
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

// Create inserts a reservation row.
func (r *Repository) Create(ctx context.Context, reservation *models.WeaponReservation) error {
	return r.db.WithContext(ctx).Create(reservation).Error
}

// FindByID loads a reservation by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.WeaponReservation, error) {
	var reservation models.WeaponReservation
	if err := r.db.WithContext(ctx).First(&reservation, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &reservation, nil
}

// FindByIDForUpdate loads a reservation with a row lock. Call inside a tx.
func (r *Repository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.WeaponReservation, error) {
	var reservation models.WeaponReservation
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&reservation, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

// ListByClient returns the client's reservations ordered by creation.
func (r *Repository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.WeaponReservation, error) {
	var rows []models.WeaponReservation
	err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("created_at").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// CountByClientAndStatus counts the client's reservations in the given statuses.
func (r *Repository) CountByClientAndStatus(ctx context.Context, clientID uuid.UUID, statuses ...enums.ReservationStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.WeaponReservation{}).
		Where("client_id = ? AND status IN ?", clientID, statuses).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

// QuantitiesByCategory sums the client's counted quantities per weapon
// category for reservations still occupying quota.
func (r *Repository) QuantitiesByCategory(ctx context.Context, clientID uuid.UUID) (map[uuid.UUID]int, error) {
	type row struct {
		CategoryID uuid.UUID
		Quantity   int
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.WeaponReservation{}).
		Select("weapons.category_id AS category_id, SUM(weapon_reservations.quantity) AS quantity").
		Joins("JOIN weapons ON weapons.id = weapon_reservations.weapon_id").
		Where("weapon_reservations.client_id = ?", clientID).
		Where("weapon_reservations.status IN ?", []enums.ReservationStatus{
			enums.ReservationStatusReserved,
			enums.ReservationStatusAssigned,
		}).
		Group("weapons.category_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	quantities := make(map[uuid.UUID]int, len(rows))
	for _, row := range rows {
		quantities[row.CategoryID] = row.Quantity
	}
	return quantities, nil
}

// UpdateStatus moves the reservation to the given status and serial number.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.ReservationStatus, serialNumber string) error {
	return r.db.WithContext(ctx).
		Model(&models.WeaponReservation{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":        status,
			"serial_number": serialNumber,
		}).Error
}
