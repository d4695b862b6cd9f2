package contracts

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/armeriaops/armimport-backend/pkg/db/models"
)

// Repository defines persistence operations for contract issuance. It spans
// the tables the issue transaction validates against: contracts, serials,
// reservations, memberships, and payments.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateContract(ctx context.Context, contract *models.Contract) error
	FindContract(ctx context.Context, id uuid.UUID) (*models.Contract, error)
	ListContractsByClient(ctx context.Context, clientID uuid.UUID) ([]models.Contract, error)
	CountContractsForYear(ctx context.Context, year int) (int64, error)
	SetPDFPath(ctx context.Context, id uuid.UUID, path string) error
	SetEmailedAt(ctx context.Context, id uuid.UUID) error

	FindSerial(ctx context.Context, id uuid.UUID) (*models.WeaponSerial, error)
	FindSerialForUpdate(ctx context.Context, id uuid.UUID) (*models.WeaponSerial, error)
	FindAssignedReservationBySerial(ctx context.Context, serialNumber string) (*models.WeaponReservation, error)
	FindActiveMembership(ctx context.Context, clientID uuid.UUID) (*models.GroupMembership, error)
	HasConfirmedPayment(ctx context.Context, clientID uuid.UUID) (bool, error)
	SerialHasContract(ctx context.Context, serialID uuid.UUID) (bool, error)

	FindClient(ctx context.Context, id uuid.UUID) (*models.Client, error)
	FindWeapon(ctx context.Context, id uuid.UUID) (*models.Weapon, error)
	FindGroup(ctx context.Context, id uuid.UUID) (*models.ImportGroup, error)
	FindIdentificationType(ctx context.Context, id uuid.UUID) (*models.IdentificationType, error)
}
