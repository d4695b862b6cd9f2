package groups

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/armeriaops/armimport-backend/pkg/db"
	"github.com/armeriaops/armimport-backend/pkg/db/models"
	"github.com/armeriaops/armimport-backend/pkg/enums"
	pkgerrors "github.com/armeriaops/armimport-backend/pkg/errors"
)

// CreateGroupRequest is the group intake payload.
type CreateGroupRequest struct {
	Code          string          `json:"code" validate:"required"`
	LicenseNumber string          `json:"license_number" validate:"required"`
	Type          enums.GroupType `json:"type" validate:"required"`
	Notes         string          `json:"notes"`
}

// Service defines the behavior needed by the groups controller.
type Service interface {
	CreateGroup(ctx context.Context, req CreateGroupRequest, createdBy uuid.UUID) (*GroupDTO, error)
	GetGroup(ctx context.Context, id uuid.UUID) (*GroupDTO, error)
	ListGroups(ctx context.Context, stage *enums.GroupStage) ([]GroupDTO, error)
	AdvanceStage(ctx context.Context, id uuid.UUID, next enums.GroupStage) (*GroupDTO, error)
	SetCategoryLimit(ctx context.Context, groupID uuid.UUID, limit CategoryLimitDTO) error
	ListCategoryLimits(ctx context.Context, groupID uuid.UUID) ([]CategoryLimitDTO, error)
	AssignVendor(ctx context.Context, groupID uuid.UUID, assignment VendorAssignmentDTO) error
	ListVendorAssignments(ctx context.Context, groupID uuid.UUID) ([]VendorAssignmentDTO, error)
	Occupancy(ctx context.Context, groupID uuid.UUID) ([]OccupancyLineDTO, error)
}

type groupRepository interface {
	Create(ctx context.Context, group *models.ImportGroup) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.ImportGroup, error)
	List(ctx context.Context, stage *enums.GroupStage) ([]models.ImportGroup, error)
	UpdateStage(ctx context.Context, id uuid.UUID, stage enums.GroupStage) error
	SetCategoryLimit(ctx context.Context, groupID, categoryID uuid.UUID, maxUnits int) error
	ListCategoryLimits(ctx context.Context, groupID uuid.UUID) ([]models.GroupCategoryLimit, error)
	AssignVendor(ctx context.Context, groupID, vendorID uuid.UUID, maxUnits int) error
	ListVendorAssignments(ctx context.Context, groupID uuid.UUID) ([]models.GroupVendorAssignment, error)
	CountedQuantities(ctx context.Context, groupID uuid.UUID) (map[uuid.UUID]int, error)
	CountMembershipsInStatuses(ctx context.Context, groupID uuid.UUID, statuses []enums.MembershipStatus) (int64, error)
}

type categoryCatalog interface {
	FindCategory(ctx context.Context, id uuid.UUID) (*models.WeaponCategory, error)
	ListCategories(ctx context.Context) ([]models.WeaponCategory, error)
}

type stageNotifier interface {
	GroupStageChanged(ctx context.Context, group *models.ImportGroup)
}

type service struct {
	repo       groupRepository
	categories categoryCatalog
	notifier   stageNotifier
}

// NewService constructs a groups service with the provided dependencies. The
// notifier may be nil.
func NewService(repo groupRepository, categories categoryCatalog, notifier stageNotifier) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("group repository is required")
	}
	if categories == nil {
		return nil, fmt.Errorf("category catalog is required")
	}
	return &service{repo: repo, categories: categories, notifier: notifier}, nil
}

func (s *service) CreateGroup(ctx context.Context, req CreateGroupRequest, createdBy uuid.UUID) (*GroupDTO, error) {
	if !req.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid group type %q", req.Type))
	}
	code := strings.TrimSpace(req.Code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "group code is required")
	}

	group := &models.ImportGroup{
		Code:          code,
		LicenseNumber: strings.TrimSpace(req.LicenseNumber),
		Type:          req.Type,
		Stage:         enums.GroupStageCreated,
		Notes:         strings.TrimSpace(req.Notes),
		CreatedByID:   createdBy,
	}
	if err := s.repo.Create(ctx, group); err != nil {
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "group code already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create group")
	}
	return FromModel(group), nil
}

func (s *service) GetGroup(ctx context.Context, id uuid.UUID) (*GroupDTO, error) {
	group, err := s.findGroup(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(group), nil
}

func (s *service) ListGroups(ctx context.Context, stage *enums.GroupStage) ([]GroupDTO, error) {
	groups, err := s.repo.List(ctx, stage)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list groups")
	}
	dtos := make([]GroupDTO, 0, len(groups))
	for i := range groups {
		dtos = append(dtos, *FromModel(&groups[i]))
	}
	return dtos, nil
}

func (s *service) AdvanceStage(ctx context.Context, id uuid.UUID, next enums.GroupStage) (*GroupDTO, error) {
	if !next.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid stage %q", next))
	}

	group, err := s.findGroup(ctx, id)
	if err != nil {
		return nil, err
	}

	if !group.Stage.CanTransitionTo(next) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("group cannot move from %s to %s", group.Stage, next))
	}

	if next == enums.GroupStageClosed {
		open, err := s.repo.CountMembershipsInStatuses(ctx, id, enums.ActiveMembershipStatuses)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count open memberships")
		}
		if open > 0 {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("group still has %d unresolved memberships", open))
		}
	}

	if err := s.repo.UpdateStage(ctx, id, next); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update stage")
	}
	group.Stage = next

	if s.notifier != nil {
		s.notifier.GroupStageChanged(ctx, group)
	}

	return FromModel(group), nil
}

func (s *service) SetCategoryLimit(ctx context.Context, groupID uuid.UUID, limit CategoryLimitDTO) error {
	if limit.MaxUnits < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "max units must be at least 1")
	}

	group, err := s.findGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if group.Type != enums.GroupTypeQuota {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "category limits apply only to quota groups")
	}

	if _, err := s.categories.FindCategory(ctx, limit.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeValidation, "unknown weapon category")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup category")
	}

	if err := s.repo.SetCategoryLimit(ctx, groupID, limit.CategoryID, limit.MaxUnits); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "set category limit")
	}
	return nil
}

func (s *service) ListCategoryLimits(ctx context.Context, groupID uuid.UUID) ([]CategoryLimitDTO, error) {
	limits, err := s.repo.ListCategoryLimits(ctx, groupID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list category limits")
	}
	dtos := make([]CategoryLimitDTO, 0, len(limits))
	for _, limit := range limits {
		dtos = append(dtos, CategoryLimitDTO{CategoryID: limit.CategoryID, MaxUnits: limit.MaxUnits})
	}
	return dtos, nil
}

func (s *service) AssignVendor(ctx context.Context, groupID uuid.UUID, assignment VendorAssignmentDTO) error {
	if assignment.MaxUnits < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "max units cannot be negative")
	}
	if _, err := s.findGroup(ctx, groupID); err != nil {
		return err
	}
	if err := s.repo.AssignVendor(ctx, groupID, assignment.VendorID, assignment.MaxUnits); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "assign vendor")
	}
	return nil
}

func (s *service) ListVendorAssignments(ctx context.Context, groupID uuid.UUID) ([]VendorAssignmentDTO, error) {
	assignments, err := s.repo.ListVendorAssignments(ctx, groupID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list vendor assignments")
	}
	dtos := make([]VendorAssignmentDTO, 0, len(assignments))
	for _, assignment := range assignments {
		dtos = append(dtos, VendorAssignmentDTO{VendorID: assignment.VendorID, MaxUnits: assignment.MaxUnits})
	}
	return dtos, nil
}

func (s *service) Occupancy(ctx context.Context, groupID uuid.UUID) ([]OccupancyLineDTO, error) {
	if _, err := s.findGroup(ctx, groupID); err != nil {
		return nil, err
	}

	limits, err := s.repo.ListCategoryLimits(ctx, groupID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list category limits")
	}
	counted, err := s.repo.CountedQuantities(ctx, groupID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count occupancy")
	}

	names := map[uuid.UUID]string{}
	categories, err := s.categories.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list categories")
	}
	for _, category := range categories {
		names[category.ID] = category.Name
	}

	lines := make([]OccupancyLineDTO, 0, len(limits))
	for _, limit := range limits {
		used := counted[limit.CategoryID]
		remaining := limit.MaxUnits - used
		if remaining < 0 {
			remaining = 0
		}
		lines = append(lines, OccupancyLineDTO{
			CategoryID: limit.CategoryID,
			Category:   names[limit.CategoryID],
			MaxUnits:   limit.MaxUnits,
			Counted:    used,
			Remaining:  remaining,
		})
	}
	return lines, nil
}

func (s *service) findGroup(ctx context.Context, id uuid.UUID) (*models.ImportGroup, error) {
	group, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "group not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup group")
	}
	return group, nil
}
