package memberships

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/armeriaops/armimport-backend/pkg/db/models"
	"github.com/armeriaops/armimport-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a memberships repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, membership *models.GroupMembership) error {
	return r.db.WithContext(ctx).Create(membership).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.GroupMembership, error) {
	var membership models.GroupMembership
	if err := r.db.WithContext(ctx).First(&membership, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &membership, nil
}

// FindActiveByClient returns the client's single non-terminal membership, or
// nil when the client has none.
func (r *repository) FindActiveByClient(ctx context.Context, clientID uuid.UUID) (*models.GroupMembership, error) {
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

// ListByGroup returns the group's memberships ordered by creation.
func (r *repository) ListByGroup(ctx context.Context, groupID uuid.UUID) ([]models.GroupMembership, error) {
	var rows []models.GroupMembership
	err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("created_at").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// UpdateStatus moves the membership to the given status with an optional note.
func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.MembershipStatus, note string) error {
	updates := map[string]any{"status": status}
	if note != "" {
		updates["cancel_note"] = note
	}
	return r.db.WithContext(ctx).
		Model(&models.GroupMembership{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// FindGroupForUpdate loads a group with a row lock. Call inside a tx; the
// lock serializes concurrent adds against the same group.
func (r *repository) FindGroupForUpdate(ctx context.Context, id uuid.UUID) (*models.ImportGroup, error) {
	var group models.ImportGroup
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&group, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// GroupCategoryLimits returns the group's configured quota lines.
func (r *repository) GroupCategoryLimits(ctx context.Context, groupID uuid.UUID) ([]models.GroupCategoryLimit, error) {
	var limits []models.GroupCategoryLimit
	err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("created_at").
		Find(&limits).Error
	if err != nil {
		return nil, err
	}
	return limits, nil
}

// GroupCountedQuantities sums reservation quantities per category across the
// group's countable memberships. Only reservations still occupying quota
// (reserved, assigned) contribute.
func (r *repository) GroupCountedQuantities(ctx context.Context, groupID uuid.UUID) (map[uuid.UUID]int, error) {
	type row struct {
		CategoryID uuid.UUID
		Quantity   int
	}
	var rows []row
	err := r.db.WithContext(ctx).
		Model(&models.WeaponReservation{}).
		Select("weapons.category_id AS category_id, SUM(weapon_reservations.quantity) AS quantity").
		Joins("JOIN weapons ON weapons.id = weapon_reservations.weapon_id").
		Joins("JOIN group_memberships gm ON gm.client_id = weapon_reservations.client_id").
		Where("gm.group_id = ?", groupID).
		Where("gm.status IN ?", enums.ActiveMembershipStatuses).
		Where("weapon_reservations.status IN ?", []enums.ReservationStatus{
			enums.ReservationStatusReserved,
			enums.ReservationStatusAssigned,
		}).
		Group("weapons.category_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counted := make(map[uuid.UUID]int, len(rows))
	for _, row := range rows {
		counted[row.CategoryID] = row.Quantity
	}
	return counted, nil
}

// ClientSource reads clients for membership preconditions.
type ClientSource struct {
	db *gorm.DB
}

func NewClientSource(db *gorm.DB) *ClientSource {
	return &ClientSource{db: db}
}

func (s *ClientSource) FindByID(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	var client models.Client
	if err := s.db.WithContext(ctx).First(&client, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &client, nil
}
