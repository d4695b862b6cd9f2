package matching

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/armeriaops/armimport-backend/pkg/db/models"
	"github.com/armeriaops/armimport-backend/pkg/enums"
	pkgerrors "github.com/armeriaops/armimport-backend/pkg/errors"
)

// Service picks the import group a new client should be pooled into.
type Service struct {
	groups       groupSource
	reservations reservationSource
}

type groupSource interface {
	ListOpenByVendor(ctx context.Context, vendorID uuid.UUID) ([]models.ImportGroup, error)
	ListCategoryLimits(ctx context.Context, groupID uuid.UUID) ([]models.GroupCategoryLimit, error)
	CountedQuantities(ctx context.Context, groupID uuid.UUID) (map[uuid.UUID]int, error)
}

type reservationSource interface {
	QuantitiesByCategory(ctx context.Context, clientID uuid.UUID) (map[uuid.UUID]int, error)
}

// NewService constructs a matching service with the provided sources.
func NewService(groups groupSource, reservations reservationSource) (*Service, error) {
	if groups == nil {
		return nil, fmt.Errorf("group source is required")
	}
	if reservations == nil {
		return nil, fmt.Errorf("reservation source is required")
	}
	return &Service{groups: groups, reservations: reservations}, nil
}

type candidate struct {
	group     models.ImportGroup
	occupancy float64
}

// FindGroupForClient returns the best compatible group for the client among
// the vendor's open groups, or (nil, nil) when none qualifies. Candidates are
// ranked by the occupancy of the categories the client needs, descending, so
// a group nearly full in those categories closes out before an emptier one;
// created_at then code break ties deterministically.
func (s *Service) FindGroupForClient(ctx context.Context, client *models.Client, vendorID uuid.UUID) (*models.ImportGroup, error) {
	if client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "client is required")
	}

	open, err := s.groups.ListOpenByVendor(ctx, vendorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list open groups")
	}
	if len(open) == 0 {
		return nil, nil
	}

	needed, err := s.reservations.QuantitiesByCategory(ctx, client.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "client reserved quantities")
	}

	candidates := make([]candidate, 0, len(open))
	for _, group := range open {
		if !group.Type.Accepts(client.Type, client.MilitaryStatus) {
			continue
		}

		if group.Type == enums.GroupTypeJustificative {
			candidates = append(candidates, candidate{group: group, occupancy: 0})
			continue
		}

		occupancy, fits, err := s.quotaFit(ctx, group.ID, needed)
		if err != nil {
			return nil, err
		}
		if !fits {
			continue
		}
		candidates = append(candidates, candidate{group: group, occupancy: occupancy})
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	// Input order is created_at asc, code asc; a stable sort keeps that as
	// the tiebreak within equal occupancy.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].occupancy > candidates[j].occupancy
	})

	best := candidates[0].group
	return &best, nil
}

// quotaFit reports whether every category the client needs has enough
// remaining capacity, plus how full the group already is in those categories.
// Occupancy is the highest counted/limit ratio among the needed categories,
// so an unrelated empty category cannot drag down a group that is about to
// close out in the category that matters.
func (s *Service) quotaFit(ctx context.Context, groupID uuid.UUID, needed map[uuid.UUID]int) (float64, bool, error) {
	limits, err := s.groups.ListCategoryLimits(ctx, groupID)
	if err != nil {
		return 0, false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list category limits")
	}
	counted, err := s.groups.CountedQuantities(ctx, groupID)
	if err != nil {
		return 0, false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count occupancy")
	}

	limitByCategory := make(map[uuid.UUID]int, len(limits))
	for _, limit := range limits {
		limitByCategory[limit.CategoryID] = limit.MaxUnits
	}

	occupancy := 0.0
	for categoryID, quantity := range needed {
		if quantity == 0 {
			continue
		}
		limit, configured := limitByCategory[categoryID]
		if !configured || limit <= 0 {
			return 0, false, nil
		}
		if counted[categoryID]+quantity > limit {
			return 0, false, nil
		}
		if ratio := float64(counted[categoryID]) / float64(limit); ratio > occupancy {
			occupancy = ratio
		}
	}
	return occupancy, true, nil
}
