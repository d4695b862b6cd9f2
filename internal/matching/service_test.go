package matching

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/armeriaops/armimport-backend/pkg/db/models"
	"github.com/armeriaops/armimport-backend/pkg/enums"
)

type stubGroupSource struct {
	open    []models.ImportGroup
	limits  map[uuid.UUID][]models.GroupCategoryLimit
	counted map[uuid.UUID]map[uuid.UUID]int
}

func (s *stubGroupSource) ListOpenByVendor(ctx context.Context, vendorID uuid.UUID) ([]models.ImportGroup, error) {
	return s.open, nil
}

func (s *stubGroupSource) ListCategoryLimits(ctx context.Context, groupID uuid.UUID) ([]models.GroupCategoryLimit, error) {
	return s.limits[groupID], nil
}

func (s *stubGroupSource) CountedQuantities(ctx context.Context, groupID uuid.UUID) (map[uuid.UUID]int, error) {
	return s.counted[groupID], nil
}

type stubReservationSource struct {
	quantities map[uuid.UUID]int
}

func (s *stubReservationSource) QuantitiesByCategory(ctx context.Context, clientID uuid.UUID) (map[uuid.UUID]int, error) {
	return s.quantities, nil
}

func quotaGroup(code string, createdAt time.Time) models.ImportGroup {
	return models.ImportGroup{
		ID:        uuid.New(),
		Code:      code,
		Type:      enums.GroupTypeQuota,
		Stage:     enums.GroupStageCreated,
		CreatedAt: createdAt,
	}
}

func civilian() *models.Client {
	return &models.Client{
		ID:   uuid.New(),
		Type: enums.ClientTypeCivilian,
	}
}

func mustService(t *testing.T, groups *stubGroupSource, reservations *stubReservationSource) *Service {
	t.Helper()
	svc, err := NewService(groups, reservations)
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func TestFindGroupPrefersFullerNeededCategory(t *testing.T) {
	categoryID := uuid.New()
	base := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	emptier := quotaGroup("GRP-A", base)
	fuller := quotaGroup("GRP-B", base.Add(time.Hour))

	groups := &stubGroupSource{
		open: []models.ImportGroup{emptier, fuller},
		limits: map[uuid.UUID][]models.GroupCategoryLimit{
			emptier.ID: {{CategoryID: categoryID, MaxUnits: 10}},
			fuller.ID:  {{CategoryID: categoryID, MaxUnits: 10}},
		},
		counted: map[uuid.UUID]map[uuid.UUID]int{
			emptier.ID: {categoryID: 2},
			fuller.ID:  {categoryID: 8},
		},
	}
	reservations := &stubReservationSource{quantities: map[uuid.UUID]int{categoryID: 1}}

	svc := mustService(t, groups, reservations)
	found, err := svc.FindGroupForClient(context.Background(), civilian(), uuid.New())
	if err != nil {
		t.Fatalf("find group: %v", err)
	}
	if found == nil || found.ID != fuller.ID {
		t.Fatalf("expected fuller group %s, got %v", fuller.Code, found)
	}
}

func TestFindGroupIgnoresUnrelatedEmptyCategories(t *testing.T) {
	pistols := uuid.New()
	shotguns := uuid.New()
	base := time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC)
	nearlyFull := quotaGroup("GRP-A", base)
	barelyStarted := quotaGroup("GRP-B", base.Add(time.Hour))

	// GRP-A is 9/10 in pistols with an untouched shotgun allocation; the
	// empty allocation must not dilute its ranking below GRP-B at 1/10.
	groups := &stubGroupSource{
		open: []models.ImportGroup{nearlyFull, barelyStarted},
		limits: map[uuid.UUID][]models.GroupCategoryLimit{
			nearlyFull.ID: {
				{CategoryID: pistols, MaxUnits: 10},
				{CategoryID: shotguns, MaxUnits: 100},
			},
			barelyStarted.ID: {{CategoryID: pistols, MaxUnits: 10}},
		},
		counted: map[uuid.UUID]map[uuid.UUID]int{
			nearlyFull.ID:    {pistols: 9},
			barelyStarted.ID: {pistols: 1},
		},
	}
	reservations := &stubReservationSource{quantities: map[uuid.UUID]int{pistols: 1}}

	svc := mustService(t, groups, reservations)
	found, err := svc.FindGroupForClient(context.Background(), civilian(), uuid.New())
	if err != nil {
		t.Fatalf("find group: %v", err)
	}
	if found == nil || found.ID != nearlyFull.ID {
		t.Fatalf("expected the group at 9/10 in the needed category to win, got %v", found)
	}
}

func TestFindGroupExcludesFullGroups(t *testing.T) {
	categoryID := uuid.New()
	full := quotaGroup("GRP-FULL", time.Now())

	groups := &stubGroupSource{
		open: []models.ImportGroup{full},
		limits: map[uuid.UUID][]models.GroupCategoryLimit{
			full.ID: {{CategoryID: categoryID, MaxUnits: 5}},
		},
		counted: map[uuid.UUID]map[uuid.UUID]int{
			full.ID: {categoryID: 5},
		},
	}
	reservations := &stubReservationSource{quantities: map[uuid.UUID]int{categoryID: 1}}

	svc := mustService(t, groups, reservations)
	found, err := svc.FindGroupForClient(context.Background(), civilian(), uuid.New())
	if err != nil {
		t.Fatalf("find group: %v", err)
	}
	if found != nil {
		t.Fatalf("expected no group when quota is exhausted, got %s", found.Code)
	}
}

func TestFindGroupRejectsIncompatibleType(t *testing.T) {
	group := models.ImportGroup{
		ID:    uuid.New(),
		Code:  "GRP-J",
		Type:  enums.GroupTypeJustificative,
		Stage: enums.GroupStageCreated,
	}
	groups := &stubGroupSource{open: []models.ImportGroup{group}}
	reservations := &stubReservationSource{}

	svc := mustService(t, groups, reservations)
	found, err := svc.FindGroupForClient(context.Background(), civilian(), uuid.New())
	if err != nil {
		t.Fatalf("find group: %v", err)
	}
	if found != nil {
		t.Fatalf("expected civilian to be rejected from justificative group")
	}
}

func TestFindGroupMilitaryStatusSplitsEligibility(t *testing.T) {
	quota := quotaGroup("GRP-Q", time.Now())
	justificative := models.ImportGroup{
		ID:    uuid.New(),
		Code:  "GRP-J",
		Type:  enums.GroupTypeJustificative,
		Stage: enums.GroupStageCreated,
	}
	groups := &stubGroupSource{
		open:   []models.ImportGroup{quota, justificative},
		limits: map[uuid.UUID][]models.GroupCategoryLimit{quota.ID: {}},
	}
	svc := mustService(t, groups, &stubReservationSource{})

	active := &models.Client{ID: uuid.New(), Type: enums.ClientTypeMilitary, MilitaryStatus: enums.MilitaryStatusActive}
	found, err := svc.FindGroupForClient(context.Background(), active, uuid.New())
	if err != nil {
		t.Fatalf("find group: %v", err)
	}
	if found == nil || found.ID != justificative.ID {
		t.Fatalf("expected active military routed to justificative group, got %v", found)
	}

	passive := &models.Client{ID: uuid.New(), Type: enums.ClientTypeMilitary, MilitaryStatus: enums.MilitaryStatusPassive}
	found, err = svc.FindGroupForClient(context.Background(), passive, uuid.New())
	if err != nil {
		t.Fatalf("find group: %v", err)
	}
	if found == nil || found.ID != quota.ID {
		t.Fatalf("expected passive military routed to quota group, got %v", found)
	}
}

func TestFindGroupDeterministicTiebreak(t *testing.T) {
	categoryID := uuid.New()
	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	older := quotaGroup("GRP-B", base)
	newer := quotaGroup("GRP-A", base.Add(time.Hour))

	limits := map[uuid.UUID][]models.GroupCategoryLimit{
		older.ID: {{CategoryID: categoryID, MaxUnits: 10}},
		newer.ID: {{CategoryID: categoryID, MaxUnits: 10}},
	}
	counted := map[uuid.UUID]map[uuid.UUID]int{
		older.ID: {categoryID: 3},
		newer.ID: {categoryID: 3},
	}

	// Source order is created_at asc, code asc; equal ratios must preserve it.
	groups := &stubGroupSource{
		open:    []models.ImportGroup{older, newer},
		limits:  limits,
		counted: counted,
	}
	reservations := &stubReservationSource{quantities: map[uuid.UUID]int{categoryID: 1}}

	svc := mustService(t, groups, reservations)
	found, err := svc.FindGroupForClient(context.Background(), civilian(), uuid.New())
	if err != nil {
		t.Fatalf("find group: %v", err)
	}
	if found == nil || found.ID != older.ID {
		t.Fatalf("expected older group to win the tiebreak, got %v", found)
	}
}

func TestFindGroupUnconfiguredCategoryExcluded(t *testing.T) {
	configured := uuid.New()
	unconfigured := uuid.New()
	group := quotaGroup("GRP-C", time.Now())

	groups := &stubGroupSource{
		open: []models.ImportGroup{group},
		limits: map[uuid.UUID][]models.GroupCategoryLimit{
			group.ID: {{CategoryID: configured, MaxUnits: 10}},
		},
	}
	reservations := &stubReservationSource{quantities: map[uuid.UUID]int{unconfigured: 1}}

	svc := mustService(t, groups, reservations)
	found, err := svc.FindGroupForClient(context.Background(), civilian(), uuid.New())
	if err != nil {
		t.Fatalf("find group: %v", err)
	}
	if found != nil {
		t.Fatalf("expected group without a configured category to be excluded")
	}
}

func TestFindGroupNoOpenGroups(t *testing.T) {
	svc := mustService(t, &stubGroupSource{}, &stubReservationSource{})
	found, err := svc.FindGroupForClient(context.Background(), civilian(), uuid.New())
	if err != nil {
		t.Fatalf("find group: %v", err)
	}
	if found != nil {
		t.Fatalf("expected nil result with no open groups")
	}
}
