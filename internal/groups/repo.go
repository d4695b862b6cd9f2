package groups

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/armeriaops/armimport-backend/pkg/db/models"
	"github.com/armeriaops/armimport-backend/pkg/enums"
)

// Repository exposes import group persistence operations.
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

// Create inserts a group row.
func (r *Repository) Create(ctx context.Context, group *models.ImportGroup) error {
	return r.db.WithContext(ctx).Create(group).Error
}

// FindByID loads a group by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.ImportGroup, error) {
	var group models.ImportGroup
	if err := r.db.WithContext(ctx).First(&group, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

// List returns all groups ordered by creation, optionally filtered by stage.
func (r *Repository) List(ctx context.Context, stage *enums.GroupStage) ([]models.ImportGroup, error) {
	query := r.db.WithContext(ctx).Model(&models.ImportGroup{}).Order("created_at")
	if stage != nil {
		query = query.Where("stage = ?", *stage)
	}
	var groups []models.ImportGroup
	if err := query.Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

// ListOpenByVendor returns groups assigned to the vendor whose stage still
// accepts new members, ordered for deterministic matching.
func (r *Repository) ListOpenByVendor(ctx context.Context, vendorID uuid.UUID) ([]models.ImportGroup, error) {
	var groups []models.ImportGroup
	err := r.db.WithContext(ctx).
		Model(&models.ImportGroup{}).
		Joins("JOIN group_vendor_assignments gva ON gva.group_id = import_groups.id").
		Where("gva.vendor_id = ?", vendorID).
		Where("import_groups.stage NOT IN ?", []enums.GroupStage{
			enums.GroupStageArrived,
			enums.GroupStageClosed,
		}).
		Order("import_groups.created_at ASC").
		Order("import_groups.code ASC").
		Find(&groups).Error
	if err != nil {
		return nil, err
	}
	return groups, nil
}

// UpdateStage moves the group to the given stage.
func (r *Repository) UpdateStage(ctx context.Context, id uuid.UUID, stage enums.GroupStage) error {
	return r.db.WithContext(ctx).
		Model(&models.ImportGroup{}).
		Where("id = ?", id).
		UpdateColumn("stage", stage).Error
}

// SetCategoryLimit upserts one quota line for the group.
func (r *Repository) SetCategoryLimit(ctx context.Context, groupID, categoryID uuid.UUID, maxUnits int) error {
	limit := models.GroupCategoryLimit{
		GroupID:    groupID,
		CategoryID: categoryID,
		MaxUnits:   maxUnits,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "group_id"}, {Name: "category_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"max_units"}),
		}).
		Create(&limit).Error
}

// ListCategoryLimits returns the group's configured quota lines.
func (r *Repository) ListCategoryLimits(ctx context.Context, groupID uuid.UUID) ([]models.GroupCategoryLimit, error) {
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

// AssignVendor grants a vendor access to the group.
func (r *Repository) AssignVendor(ctx context.Context, groupID, vendorID uuid.UUID, maxUnits int) error {
	assignment := models.GroupVendorAssignment{
		GroupID:  groupID,
		VendorID: vendorID,
		MaxUnits: maxUnits,
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "group_id"}, {Name: "vendor_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"max_units"}),
		}).
		Create(&assignment).Error
}

// ListVendorAssignments returns the group's vendor grants.
func (r *Repository) ListVendorAssignments(ctx context.Context, groupID uuid.UUID) ([]models.GroupVendorAssignment, error) {
	var assignments []models.GroupVendorAssignment
	err := r.db.WithContext(ctx).
		Where("group_id = ?", groupID).
		Order("created_at").
		Find(&assignments).Error
	if err != nil {
		return nil, err
	}
	return assignments, nil
}

// VendorAssigned reports whether the vendor has access to the group.
func (r *Repository) VendorAssigned(ctx context.Context, groupID, vendorID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.GroupVendorAssignment{}).
		Where("group_id = ? AND vendor_id = ?", groupID, vendorID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountedQuantities sums reservation quantities per category across the
// group's countable memberships. Only reservations still occupying quota
// (reserved, assigned) contribute.
func (r *Repository) CountedQuantities(ctx context.Context, groupID uuid.UUID) (map[uuid.UUID]int, error) {
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

// CountMembershipsInStatuses counts group memberships in the given statuses.
func (r *Repository) CountMembershipsInStatuses(ctx context.Context, groupID uuid.UUID, statuses []enums.MembershipStatus) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.GroupMembership{}).
		Where("group_id = ? AND status IN ?", groupID, statuses).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
