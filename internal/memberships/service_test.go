package memberships

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/armeriaops/armimport-backend/pkg/db/models"
	"github.com/armeriaops/armimport-backend/pkg/enums"
	pkgerrors "github.com/armeriaops/armimport-backend/pkg/errors"
)

type stubMembershipRepo struct {
	active      *models.GroupMembership
	byID        *models.GroupMembership
	group       *models.ImportGroup
	limits      []models.GroupCategoryLimit
	counted     map[uuid.UUID]int
	created     *models.GroupMembership
	updated     enums.MembershipStatus
	noteSeen    string
	groupLocked int
}

func (s *stubMembershipRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubMembershipRepo) Create(ctx context.Context, membership *models.GroupMembership) error {
	s.created = membership
	return nil
}

func (s *stubMembershipRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.GroupMembership, error) {
	if s.byID == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.byID, nil
}

func (s *stubMembershipRepo) FindActiveByClient(ctx context.Context, clientID uuid.UUID) (*models.GroupMembership, error) {
	return s.active, nil
}

func (s *stubMembershipRepo) ListByGroup(ctx context.Context, groupID uuid.UUID) ([]models.GroupMembership, error) {
	return nil, nil
}

func (s *stubMembershipRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.MembershipStatus, note string) error {
	s.updated = status
	s.noteSeen = note
	return nil
}

func (s *stubMembershipRepo) FindGroupForUpdate(ctx context.Context, id uuid.UUID) (*models.ImportGroup, error) {
	s.groupLocked++
	if s.group == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.group, nil
}

func (s *stubMembershipRepo) GroupCategoryLimits(ctx context.Context, groupID uuid.UUID) ([]models.GroupCategoryLimit, error) {
	return s.limits, nil
}

func (s *stubMembershipRepo) GroupCountedQuantities(ctx context.Context, groupID uuid.UUID) (map[uuid.UUID]int, error) {
	return s.counted, nil
}

type stubTxRunner struct {
	calls int
}

func (s *stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	s.calls++
	return fn(nil)
}

type stubClientFinder struct {
	client *models.Client
}

func (s *stubClientFinder) FindByID(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	if s.client == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.client, nil
}

type stubReservationSource struct {
	assignedCount int64
	quantities    map[uuid.UUID]int
}

func (s *stubReservationSource) CountByClientAndStatus(ctx context.Context, clientID uuid.UUID, statuses ...enums.ReservationStatus) (int64, error) {
	return s.assignedCount, nil
}

func (s *stubReservationSource) QuantitiesByCategory(ctx context.Context, clientID uuid.UUID) (map[uuid.UUID]int, error) {
	return s.quantities, nil
}

type stubDocumentChecker struct {
	approved bool
}

func (s *stubDocumentChecker) AllApproved(ctx context.Context, clientID uuid.UUID, clientType enums.ClientType) (bool, error) {
	return s.approved, nil
}

type stubSerialCloser struct {
	soldFor []uuid.UUID
}

func (s *stubSerialCloser) SellAssignedByClient(ctx context.Context, tx *gorm.DB, clientID uuid.UUID) error {
	s.soldFor = append(s.soldFor, clientID)
	return nil
}

type fixture struct {
	repo         *stubMembershipRepo
	tx           *stubTxRunner
	clients      *stubClientFinder
	reservations *stubReservationSource
	documents    *stubDocumentChecker
	serials      *stubSerialCloser
}

func defaultFixture() *fixture {
	return &fixture{
		repo: &stubMembershipRepo{group: &models.ImportGroup{
			ID:    uuid.New(),
			Type:  enums.GroupTypeQuota,
			Stage: enums.GroupStageCreated,
		}},
		tx:           &stubTxRunner{},
		clients:      &stubClientFinder{client: &models.Client{ID: uuid.New(), Type: enums.ClientTypeCivilian}},
		reservations: &stubReservationSource{},
		documents:    &stubDocumentChecker{approved: true},
		serials:      &stubSerialCloser{},
	}
}

func (f *fixture) service(t *testing.T) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:         f.repo,
		Tx:           f.tx,
		Clients:      f.clients,
		Reservations: f.reservations,
		Documents:    f.documents,
		Serials:      f.serials,
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func assertFailure(t *testing.T, err error, code pkgerrors.Code, message string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error %q", message)
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != code {
		t.Fatalf("expected code %s, got %v", code, err)
	}
	if typed.Message() != message {
		t.Fatalf("expected message %q, got %q", message, typed.Message())
	}
}

func TestManualAddSucceeds(t *testing.T) {
	f := defaultFixture()
	addedBy := uuid.New()
	svc := f.service(t)

	dto, err := svc.ManualAdd(context.Background(), f.repo.group.ID, f.clients.client.ID, addedBy)
	if err != nil {
		t.Fatalf("manual add: %v", err)
	}
	if dto.Status != enums.MembershipStatusConfirmed {
		t.Fatalf("expected confirmed membership, got %s", dto.Status)
	}
	if f.repo.created == nil || f.repo.created.AddedByID == nil || *f.repo.created.AddedByID != addedBy {
		t.Fatalf("expected added_by recorded")
	}
}

func TestManualAddLocksGroupInsideTransaction(t *testing.T) {
	f := defaultFixture()
	svc := f.service(t)

	_, err := svc.ManualAdd(context.Background(), f.repo.group.ID, f.clients.client.ID, uuid.New())
	if err != nil {
		t.Fatalf("manual add: %v", err)
	}
	if f.tx.calls != 1 {
		t.Fatalf("expected one transaction, got %d", f.tx.calls)
	}
	if f.repo.groupLocked != 1 {
		t.Fatalf("expected group row locked once, got %d", f.repo.groupLocked)
	}
}

func TestManualAddRejectsActiveMembershipElsewhere(t *testing.T) {
	f := defaultFixture()
	f.repo.active = &models.GroupMembership{ID: uuid.New(), Status: enums.MembershipStatusConfirmed}
	svc := f.service(t)

	_, err := svc.ManualAdd(context.Background(), f.repo.group.ID, f.clients.client.ID, uuid.New())
	assertFailure(t, err, pkgerrors.CodeConflict, msgActiveMembershipExists)
}

func TestManualAddRejectsAssignedReservation(t *testing.T) {
	f := defaultFixture()
	f.reservations.assignedCount = 1
	svc := f.service(t)

	_, err := svc.ManualAdd(context.Background(), f.repo.group.ID, f.clients.client.ID, uuid.New())
	assertFailure(t, err, pkgerrors.CodeConflict, msgAssignedReservation)
}

func TestManualAddRejectsUnapprovedDocuments(t *testing.T) {
	f := defaultFixture()
	f.documents.approved = false
	svc := f.service(t)

	_, err := svc.ManualAdd(context.Background(), f.repo.group.ID, f.clients.client.ID, uuid.New())
	assertFailure(t, err, pkgerrors.CodeValidation, msgDocumentsNotApproved)
}

func TestManualAddRejectsIncompatibleType(t *testing.T) {
	f := defaultFixture()
	f.repo.group.Type = enums.GroupTypeJustificative
	svc := f.service(t)

	_, err := svc.ManualAdd(context.Background(), f.repo.group.ID, f.clients.client.ID, uuid.New())
	assertFailure(t, err, pkgerrors.CodeValidation, msgTypeIncompatible)
}

func TestManualAddRejectsClosedStage(t *testing.T) {
	f := defaultFixture()
	f.repo.group.Stage = enums.GroupStageArrived
	svc := f.service(t)

	_, err := svc.ManualAdd(context.Background(), f.repo.group.ID, f.clients.client.ID, uuid.New())
	assertFailure(t, err, pkgerrors.CodeStateConflict, msgGroupNotAccepting)
}

func TestManualAddRejectsExhaustedQuota(t *testing.T) {
	categoryID := uuid.New()
	f := defaultFixture()
	f.repo.limits = []models.GroupCategoryLimit{{CategoryID: categoryID, MaxUnits: 5}}
	f.repo.counted = map[uuid.UUID]int{categoryID: 5}
	f.reservations.quantities = map[uuid.UUID]int{categoryID: 1}
	svc := f.service(t)

	_, err := svc.ManualAdd(context.Background(), f.repo.group.ID, f.clients.client.ID, uuid.New())
	assertFailure(t, err, pkgerrors.CodeConflict, msgNoQuotaCapacity)
}

func TestCancelAppendsNote(t *testing.T) {
	f := defaultFixture()
	f.repo.byID = &models.GroupMembership{ID: uuid.New(), Status: enums.MembershipStatusConfirmed}
	svc := f.service(t)

	if err := svc.Cancel(context.Background(), f.repo.byID.ID, "client withdrew"); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	if f.repo.updated != enums.MembershipStatusCancelled {
		t.Fatalf("expected cancelled status, got %s", f.repo.updated)
	}
	if f.repo.noteSeen != "client withdrew" {
		t.Fatalf("expected note recorded, got %q", f.repo.noteSeen)
	}
}

func TestCancelRejectsTerminalStatus(t *testing.T) {
	f := defaultFixture()
	f.repo.byID = &models.GroupMembership{ID: uuid.New(), Status: enums.MembershipStatusCompleted}
	svc := f.service(t)

	err := svc.Cancel(context.Background(), f.repo.byID.ID, "")
	if err == nil {
		t.Fatalf("expected cancel of completed membership to fail")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestTransitionFollowsCentralTable(t *testing.T) {
	f := defaultFixture()
	f.repo.byID = &models.GroupMembership{ID: uuid.New(), Status: enums.MembershipStatusConfirmed}
	svc := f.service(t)

	dto, err := svc.Transition(context.Background(), f.repo.byID.ID, enums.MembershipStatusApproved)
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if dto.Status != enums.MembershipStatusApproved {
		t.Fatalf("expected approved, got %s", dto.Status)
	}
	if len(f.serials.soldFor) != 0 {
		t.Fatalf("expected no serial sales outside completion")
	}

	f.repo.byID.Status = enums.MembershipStatusPending
	if _, err := svc.Transition(context.Background(), f.repo.byID.ID, enums.MembershipStatusApproved); err == nil {
		t.Fatalf("expected pending -> approved to be rejected")
	}
}

func TestTransitionToCompletedSellsAssignedSerials(t *testing.T) {
	f := defaultFixture()
	clientID := uuid.New()
	f.repo.byID = &models.GroupMembership{
		ID:       uuid.New(),
		ClientID: clientID,
		Status:   enums.MembershipStatusInProgress,
	}
	svc := f.service(t)

	dto, err := svc.Transition(context.Background(), f.repo.byID.ID, enums.MembershipStatusCompleted)
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if dto.Status != enums.MembershipStatusCompleted {
		t.Fatalf("expected completed, got %s", dto.Status)
	}
	if f.tx.calls != 1 {
		t.Fatalf("expected completion inside one transaction, got %d", f.tx.calls)
	}
	if len(f.serials.soldFor) != 1 || f.serials.soldFor[0] != clientID {
		t.Fatalf("expected client serials sold on completion, got %v", f.serials.soldFor)
	}
	if f.repo.updated != enums.MembershipStatusCompleted {
		t.Fatalf("expected status persisted, got %s", f.repo.updated)
	}
}
