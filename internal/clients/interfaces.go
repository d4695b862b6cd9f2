package clients

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/armeriaops/armimport-backend/pkg/db/models"
	"github.com/armeriaops/armimport-backend/pkg/enums"
)

// Repository defines persistence operations for client intake. It spans the
// tables one creation transaction touches: clients plus the auto-assigned
// membership, and the reference data the intake validates against.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreateClient(ctx context.Context, client *models.Client) error
	FindClient(ctx context.Context, id uuid.UUID) (*models.Client, error)
	FindByIdentification(ctx context.Context, typeID uuid.UUID, number string) (*models.Client, error)
	SaveClient(ctx context.Context, client *models.Client) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.ClientStatus) error
	SetEmailVerified(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, cursor string, limit int, filter ListFilter) (ClientsPageDTO, error)

	CreateMembership(ctx context.Context, membership *models.GroupMembership) error
	FindPendingMembership(ctx context.Context, clientID uuid.UUID) (*models.GroupMembership, error)
	UpdateMembershipStatus(ctx context.Context, id uuid.UUID, status enums.MembershipStatus) error

	FindIdentificationType(ctx context.Context, id uuid.UUID) (*models.IdentificationType, error)
	CantonBelongsToProvince(ctx context.Context, cantonID, provinceID uuid.UUID) (bool, error)
}
