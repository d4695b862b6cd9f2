package memberships

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/armeriaops/armimport-backend/pkg/db/models"
	"github.com/armeriaops/armimport-backend/pkg/enums"
	pkgerrors "github.com/armeriaops/armimport-backend/pkg/errors"
)

// Precondition failure messages for manual adds. Each check has its own
// message so the back office can tell the vendor exactly what to fix.
const (
	msgActiveMembershipExists = "client already has an active membership in another group"
	msgAssignedReservation    = "client has an assigned serial; liberate it before moving groups"
	msgDocumentsNotApproved   = "client is missing approved required documents"
	msgGroupNotAccepting      = "group no longer accepts new members at this stage"
	msgTypeIncompatible       = "client type is not compatible with this group"
	msgNoQuotaCapacity        = "group has no remaining quota capacity for the client's reservations"
)

// Service defines the behavior needed by the memberships controller.
type Service interface {
	ManualAdd(ctx context.Context, groupID, clientID, addedBy uuid.UUID) (*MembershipDTO, error)
	Cancel(ctx context.Context, id uuid.UUID, note string) error
	Transition(ctx context.Context, id uuid.UUID, next enums.MembershipStatus) (*MembershipDTO, error)
	ListByGroup(ctx context.Context, groupID uuid.UUID) ([]MembershipDTO, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type clientFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Client, error)
}

type reservationSource interface {
	CountByClientAndStatus(ctx context.Context, clientID uuid.UUID, statuses ...enums.ReservationStatus) (int64, error)
	QuantitiesByCategory(ctx context.Context, clientID uuid.UUID) (map[uuid.UUID]int, error)
}

type documentChecker interface {
	AllApproved(ctx context.Context, clientID uuid.UUID, clientType enums.ClientType) (bool, error)
}

type serialCloser interface {
	SellAssignedByClient(ctx context.Context, tx *gorm.DB, clientID uuid.UUID) error
}

type service struct {
	repo         Repository
	tx           txRunner
	clients      clientFinder
	reservations reservationSource
	documents    documentChecker
	serials      serialCloser
}

// ServiceParams bundles the dependencies required to build a memberships
// service. Serials is optional; without it completion leaves serial sales to
// manual recording.
type ServiceParams struct {
	Repo         Repository
	Tx           txRunner
	Clients      clientFinder
	Reservations reservationSource
	Documents    documentChecker
	Serials      serialCloser
}

// NewService constructs a memberships service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("membership repository is required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	if params.Clients == nil {
		return nil, fmt.Errorf("client finder is required")
	}
	if params.Reservations == nil {
		return nil, fmt.Errorf("reservation source is required")
	}
	if params.Documents == nil {
		return nil, fmt.Errorf("document checker is required")
	}
	return &service{
		repo:         params.Repo,
		tx:           params.Tx,
		clients:      params.Clients,
		reservations: params.Reservations,
		documents:    params.Documents,
		serials:      params.Serials,
	}, nil
}

// ManualAdd pools a vetted client into a group. The group row stays locked
// for the whole transaction so concurrent adds cannot overshoot the quota
// between the occupancy read and the insert.
func (s *service) ManualAdd(ctx context.Context, groupID, clientID, addedBy uuid.UUID) (*MembershipDTO, error) {
	client, err := s.clients.FindByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "client not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup client")
	}

	var membership *models.GroupMembership
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		group, err := repo.FindGroupForUpdate(ctx, groupID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "group not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup group")
		}

		if !group.Stage.AcceptsNewMembers() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, msgGroupNotAccepting)
		}
		if !group.Type.Accepts(client.Type, client.MilitaryStatus) {
			return pkgerrors.New(pkgerrors.CodeValidation, msgTypeIncompatible)
		}

		active, err := repo.FindActiveByClient(ctx, clientID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check active membership")
		}
		if active != nil {
			return pkgerrors.New(pkgerrors.CodeConflict, msgActiveMembershipExists)
		}

		assigned, err := s.reservations.CountByClientAndStatus(ctx, clientID, enums.ReservationStatusAssigned)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check assigned reservations")
		}
		if assigned > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, msgAssignedReservation)
		}

		approved, err := s.documents.AllApproved(ctx, clientID, client.Type)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check documents")
		}
		if !approved {
			return pkgerrors.New(pkgerrors.CodeValidation, msgDocumentsNotApproved)
		}

		if group.Type == enums.GroupTypeQuota {
			if err := s.checkQuotaCapacity(ctx, repo, group.ID, clientID); err != nil {
				return err
			}
		}

		membership = &models.GroupMembership{
			ClientID:  clientID,
			GroupID:   groupID,
			Status:    enums.MembershipStatusConfirmed,
			AddedByID: &addedBy,
		}
		if err := repo.Create(ctx, membership); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create membership")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return FromModel(membership), nil
}

func (s *service) Cancel(ctx context.Context, id uuid.UUID, note string) error {
	membership, err := s.findMembership(ctx, id)
	if err != nil {
		return err
	}
	if !membership.Status.CanTransitionTo(enums.MembershipStatusCancelled) {
		return pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("membership in status %s cannot be cancelled", membership.Status))
	}
	if err := s.repo.UpdateStatus(ctx, id, enums.MembershipStatusCancelled, note); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "cancel membership")
	}
	return nil
}

// Transition moves the membership along the status table. Completion settles
// the client's paperwork: their assigned serials and reservations close out
// as sold inside the same transaction as the status flip.
func (s *service) Transition(ctx context.Context, id uuid.UUID, next enums.MembershipStatus) (*MembershipDTO, error) {
	if !next.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid membership status %q", next))
	}

	membership, err := s.findMembership(ctx, id)
	if err != nil {
		return nil, err
	}
	if !membership.Status.CanTransitionTo(next) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("membership cannot move from %s to %s", membership.Status, next))
	}

	if next == enums.MembershipStatusCompleted {
		err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)
			if err := repo.UpdateStatus(ctx, id, next, ""); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update membership status")
			}
			if s.serials != nil {
				return s.serials.SellAssignedByClient(ctx, tx, membership.ClientID)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	} else if err := s.repo.UpdateStatus(ctx, id, next, ""); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update membership status")
	}

	membership.Status = next
	return FromModel(membership), nil
}

func (s *service) ListByGroup(ctx context.Context, groupID uuid.UUID) ([]MembershipDTO, error) {
	rows, err := s.repo.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list memberships")
	}
	dtos := make([]MembershipDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *FromModel(&rows[i]))
	}
	return dtos, nil
}

func (s *service) checkQuotaCapacity(ctx context.Context, repo Repository, groupID, clientID uuid.UUID) error {
	needed, err := s.reservations.QuantitiesByCategory(ctx, clientID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "client reserved quantities")
	}
	if len(needed) == 0 {
		return nil
	}

	limits, err := repo.GroupCategoryLimits(ctx, groupID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list category limits")
	}
	counted, err := repo.GroupCountedQuantities(ctx, groupID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count occupancy")
	}

	limitByCategory := make(map[uuid.UUID]int, len(limits))
	for _, limit := range limits {
		limitByCategory[limit.CategoryID] = limit.MaxUnits
	}
	for categoryID, quantity := range needed {
		limit, configured := limitByCategory[categoryID]
		if !configured || counted[categoryID]+quantity > limit {
			return pkgerrors.New(pkgerrors.CodeConflict, msgNoQuotaCapacity)
		}
	}
	return nil
}

func (s *service) findMembership(ctx context.Context, id uuid.UUID) (*models.GroupMembership, error) {
	membership, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "membership not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup membership")
	}
	return membership, nil
}
