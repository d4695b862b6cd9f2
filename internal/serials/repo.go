package serials

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/armeriaops/armimport-backend/pkg/db/models"
	"github.com/armeriaops/armimport-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a serials repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateSerial(ctx context.Context, serial *models.WeaponSerial) error {
	return r.db.WithContext(ctx).Create(serial).Error
}

func (r *repository) FindSerial(ctx context.Context, id uuid.UUID) (*models.WeaponSerial, error) {
	var serial models.WeaponSerial
	if err := r.db.WithContext(ctx).First(&serial, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &serial, nil
}

func (r *repository) FindSerialForUpdate(ctx context.Context, id uuid.UUID) (*models.WeaponSerial, error) {
	var serial models.WeaponSerial
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&serial, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &serial, nil
}

func (r *repository) SerialNumberExists(ctx context.Context, serialNumber string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.WeaponSerial{}).
		Where("serial_number = ?", serialNumber).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) SaveSerial(ctx context.Context, serial *models.WeaponSerial) error {
	return r.db.WithContext(ctx).Save(serial).Error
}

func (r *repository) ListSerialsByGroup(ctx context.Context, groupID uuid.UUID) ([]models.WeaponSerial, error) {
	var rows []models.WeaponSerial
	err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("serial_number").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListSerialsByClient(ctx context.Context, clientID uuid.UUID) ([]models.WeaponSerial, error) {
	var rows []models.WeaponSerial
	err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("serial_number").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListAssignedSerialsByClientForUpdate(ctx context.Context, clientID uuid.UUID) ([]models.WeaponSerial, error) {
	var rows []models.WeaponSerial
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("client_id = ? AND status = ?", clientID, enums.SerialStatusAssigned).
		Order("serial_number").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) FindReservationForUpdate(ctx context.Context, id uuid.UUID) (*models.WeaponReservation, error) {
	var reservation models.WeaponReservation
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&reservation, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (r *repository) FindAssignedReservationBySerial(ctx context.Context, serialNumber string) (*models.WeaponReservation, error) {
	var reservation models.WeaponReservation
	err := r.db.WithContext(ctx).
		Where("serial_number = ? AND status = ?", serialNumber, enums.ReservationStatusAssigned).
		First(&reservation).Error
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (r *repository) UpdateReservationStatus(ctx context.Context, id uuid.UUID, status enums.ReservationStatus, serialNumber string) error {
	return r.db.WithContext(ctx).
		Model(&models.WeaponReservation{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":        status,
			"serial_number": serialNumber,
		}).Error
}

func (r *repository) FindActiveMembership(ctx context.Context, clientID uuid.UUID) (*models.GroupMembership, error) {
	var membership models.GroupMembership
	err := r.db.WithContext(ctx).
		Where("client_id = ? AND status IN ?", clientID, enums.ActiveMembershipStatuses).
		First(&membership).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &membership, nil
}

func (r *repository) FindWeapon(ctx context.Context, id uuid.UUID) (*models.Weapon, error) {
	var weapon models.Weapon
	if err := r.db.WithContext(ctx).First(&weapon, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &weapon, nil
}

func (r *repository) FindWeaponByExternalID(ctx context.Context, externalID string) (*models.Weapon, error) {
	var weapon models.Weapon
	if err := r.db.WithContext(ctx).Where("external_id = ?", externalID).First(&weapon).Error; err != nil {
		return nil, err
	}
	return &weapon, nil
}

func (r *repository) FindWeaponByCode(ctx context.Context, code string) (*models.Weapon, error) {
	var weapon models.Weapon
	if err := r.db.WithContext(ctx).Where("code = ?", code).First(&weapon).Error; err != nil {
		return nil, err
	}
	return &weapon, nil
}

// FindWeaponsByAttributes matches catalog weapons against name, caliber, and
// optional brand and category hints. Hints and stored values are both
// normalized (lowercase, collapsed whitespace), so "Glock  17" and "glock 17"
// compare equal; the catalog is small enough to filter in memory.
func (r *repository) FindWeaponsByAttributes(ctx context.Context, name, caliber, brand, category string) ([]models.Weapon, error) {
	var all []models.Weapon
	if err := r.db.WithContext(ctx).Find(&all).Error; err != nil {
		return nil, err
	}

	wantCategory := normalizeHint(category)
	categoryMatches := map[uuid.UUID]bool{}
	if wantCategory != "" {
		var categories []models.WeaponCategory
		if err := r.db.WithContext(ctx).Find(&categories).Error; err != nil {
			return nil, err
		}
		for _, c := range categories {
			if normalizeHint(c.Name) == wantCategory {
				categoryMatches[c.ID] = true
			}
		}
	}

	wantName := normalizeHint(name)
	wantCaliber := normalizeHint(caliber)
	wantBrand := normalizeHint(brand)

	var weapons []models.Weapon
	for _, weapon := range all {
		if normalizeHint(weapon.Name) != wantName || normalizeHint(weapon.Caliber) != wantCaliber {
			continue
		}
		if wantBrand != "" && normalizeHint(weapon.Brand) != wantBrand {
			continue
		}
		if wantCategory != "" && !categoryMatches[weapon.CategoryID] {
			continue
		}
		weapons = append(weapons, weapon)
	}
	return weapons, nil
}

func (r *repository) AdjustStock(ctx context.Context, weaponID uuid.UUID, delta int) error {
	return r.db.WithContext(ctx).
		Model(&models.Weapon{}).
		Where("id = ?", weaponID).
		UpdateColumn("stock", gorm.Expr("stock + ?", delta)).Error
}

func normalizeHint(value string) string {
	return strings.ToLower(strings.Join(strings.Fields(value), " "))
}
