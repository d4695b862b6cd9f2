package serials

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/armeriaops/armimport-backend/pkg/db/models"
	"github.com/armeriaops/armimport-backend/pkg/enums"
)

// Repository defines persistence operations for the serial lifecycle. It
// spans the tables one assignment transaction touches: serials,
// reservations, memberships, and weapon stock.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateSerial(ctx context.Context, serial *models.WeaponSerial) error
	FindSerial(ctx context.Context, id uuid.UUID) (*models.WeaponSerial, error)
	FindSerialForUpdate(ctx context.Context, id uuid.UUID) (*models.WeaponSerial, error)
	SerialNumberExists(ctx context.Context, serialNumber string) (bool, error)
	SaveSerial(ctx context.Context, serial *models.WeaponSerial) error
	ListSerialsByGroup(ctx context.Context, groupID uuid.UUID) ([]models.WeaponSerial, error)
	ListSerialsByClient(ctx context.Context, clientID uuid.UUID) ([]models.WeaponSerial, error)
	ListAssignedSerialsByClientForUpdate(ctx context.Context, clientID uuid.UUID) ([]models.WeaponSerial, error)

	FindReservationForUpdate(ctx context.Context, id uuid.UUID) (*models.WeaponReservation, error)
	FindAssignedReservationBySerial(ctx context.Context, serialNumber string) (*models.WeaponReservation, error)
	UpdateReservationStatus(ctx context.Context, id uuid.UUID, status enums.ReservationStatus, serialNumber string) error

	FindActiveMembership(ctx context.Context, clientID uuid.UUID) (*models.GroupMembership, error)

	FindWeapon(ctx context.Context, id uuid.UUID) (*models.Weapon, error)
	FindWeaponByExternalID(ctx context.Context, externalID string) (*models.Weapon, error)
	FindWeaponByCode(ctx context.Context, code string) (*models.Weapon, error)
	FindWeaponsByAttributes(ctx context.Context, name, caliber, brand, category string) ([]models.Weapon, error)
	AdjustStock(ctx context.Context, weaponID uuid.UUID, delta int) error
}
