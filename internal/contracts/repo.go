package contracts

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/armeriaops/armimport-backend/pkg/db/models"
	"github.com/armeriaops/armimport-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a contracts repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateContract(ctx context.Context, contract *models.Contract) error {
	return r.db.WithContext(ctx).Create(contract).Error
}

func (r *repository) FindContract(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	var contract models.Contract
	if err := r.db.WithContext(ctx).First(&contract, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &contract, nil
}

func (r *repository) ListContractsByClient(ctx context.Context, clientID uuid.UUID) ([]models.Contract, error) {
	var contracts []models.Contract
	err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("created_at").
		Find(&contracts).Error
	if err != nil {
		return nil, err
	}
	return contracts, nil
}

func (r *repository) CountContractsForYear(ctx context.Context, year int) (int64, error) {
	from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(1, 0, 0)
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Contract{}).
		Where("created_at >= ? AND created_at < ?", from, to).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repository) SetPDFPath(ctx context.Context, id uuid.UUID, path string) error {
	return r.db.WithContext(ctx).
		Model(&models.Contract{}).
		Where("id = ?", id).
		UpdateColumn("pdf_path", path).Error
}

func (r *repository) SetEmailedAt(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Contract{}).
		Where("id = ?", id).
		UpdateColumn("emailed_at", time.Now().UTC()).Error
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

func (r *repository) HasConfirmedPayment(ctx context.Context, clientID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("client_id = ? AND status = ?", clientID, enums.PaymentStatusConfirmed).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) SerialHasContract(ctx context.Context, serialID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Contract{}).
		Where("serial_id = ?", serialID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) FindClient(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	var client models.Client
	if err := r.db.WithContext(ctx).First(&client, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *repository) FindWeapon(ctx context.Context, id uuid.UUID) (*models.Weapon, error) {
	var weapon models.Weapon
	if err := r.db.WithContext(ctx).First(&weapon, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &weapon, nil
}

func (r *repository) FindGroup(ctx context.Context, id uuid.UUID) (*models.ImportGroup, error) {
	var group models.ImportGroup
	if err := r.db.WithContext(ctx).First(&group, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *repository) FindIdentificationType(ctx context.Context, id uuid.UUID) (*models.IdentificationType, error) {
	var idType models.IdentificationType
	if err := r.db.WithContext(ctx).First(&idType, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &idType, nil
}
