package memberships

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/armeriaops/armimport-backend/pkg/db/models"
	"github.com/armeriaops/armimport-backend/pkg/enums"
)

// Repository defines persistence operations for the membership lifecycle. It
// spans the tables one manual add touches: the membership rows plus the
// locked group row and the quota occupancy read behind it.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	Create(ctx context.Context, membership *models.GroupMembership) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.GroupMembership, error)
	FindActiveByClient(ctx context.Context, clientID uuid.UUID) (*models.GroupMembership, error)
	ListByGroup(ctx context.Context, groupID uuid.UUID) ([]models.GroupMembership, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.MembershipStatus, note string) error

	FindGroupForUpdate(ctx context.Context, id uuid.UUID) (*models.ImportGroup, error)
	GroupCategoryLimits(ctx context.Context, groupID uuid.UUID) ([]models.GroupCategoryLimit, error)
	GroupCountedQuantities(ctx context.Context, groupID uuid.UUID) (map[uuid.UUID]int, error)
}
