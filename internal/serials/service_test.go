package serials

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/armeriaops/armimport-backend/pkg/db/models"
	"github.com/armeriaops/armimport-backend/pkg/enums"
	pkgerrors "github.com/armeriaops/armimport-backend/pkg/errors"
)

type stubRepo struct {
	serial         *models.WeaponSerial
	reservation    *models.WeaponReservation
	assignedBySN   *models.WeaponReservation
	membership     *models.GroupMembership
	weaponByExt    *models.Weapon
	weaponByCode   *models.Weapon
	weaponMatches  []models.Weapon
	existing       map[string]bool
	savedSerial    *models.WeaponSerial
	createdSerials []*models.WeaponSerial
	resStatus      enums.ReservationStatus
	resSerial      string
	stockDeltas    map[uuid.UUID]int
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		existing:    map[string]bool{},
		stockDeltas: map[uuid.UUID]int{},
	}
}

func (s *stubRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepo) CreateSerial(ctx context.Context, serial *models.WeaponSerial) error {
	s.createdSerials = append(s.createdSerials, serial)
	return nil
}

func (s *stubRepo) FindSerial(ctx context.Context, id uuid.UUID) (*models.WeaponSerial, error) {
	if s.serial == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.serial, nil
}

func (s *stubRepo) FindSerialForUpdate(ctx context.Context, id uuid.UUID) (*models.WeaponSerial, error) {
	return s.FindSerial(ctx, id)
}

func (s *stubRepo) SerialNumberExists(ctx context.Context, serialNumber string) (bool, error) {
	return s.existing[serialNumber], nil
}

func (s *stubRepo) SaveSerial(ctx context.Context, serial *models.WeaponSerial) error {
	s.savedSerial = serial
	return nil
}

func (s *stubRepo) ListSerialsByGroup(ctx context.Context, groupID uuid.UUID) ([]models.WeaponSerial, error) {
	return nil, nil
}

func (s *stubRepo) ListSerialsByClient(ctx context.Context, clientID uuid.UUID) ([]models.WeaponSerial, error) {
	return nil, nil
}

func (s *stubRepo) ListAssignedSerialsByClientForUpdate(ctx context.Context, clientID uuid.UUID) ([]models.WeaponSerial, error) {
	if s.serial == nil || s.serial.Status != enums.SerialStatusAssigned {
		return nil, nil
	}
	if s.serial.ClientID == nil || *s.serial.ClientID != clientID {
		return nil, nil
	}
	return []models.WeaponSerial{*s.serial}, nil
}

func (s *stubRepo) FindReservationForUpdate(ctx context.Context, id uuid.UUID) (*models.WeaponReservation, error) {
	if s.reservation == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.reservation, nil
}

func (s *stubRepo) FindAssignedReservationBySerial(ctx context.Context, serialNumber string) (*models.WeaponReservation, error) {
	if s.assignedBySN == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.assignedBySN, nil
}

func (s *stubRepo) UpdateReservationStatus(ctx context.Context, id uuid.UUID, status enums.ReservationStatus, serialNumber string) error {
	s.resStatus = status
	s.resSerial = serialNumber
	return nil
}

func (s *stubRepo) FindActiveMembership(ctx context.Context, clientID uuid.UUID) (*models.GroupMembership, error) {
	return s.membership, nil
}

func (s *stubRepo) FindWeapon(ctx context.Context, id uuid.UUID) (*models.Weapon, error) {
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) FindWeaponByExternalID(ctx context.Context, externalID string) (*models.Weapon, error) {
	if s.weaponByExt == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.weaponByExt, nil
}

func (s *stubRepo) FindWeaponByCode(ctx context.Context, code string) (*models.Weapon, error) {
	if s.weaponByCode == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.weaponByCode, nil
}

func (s *stubRepo) FindWeaponsByAttributes(ctx context.Context, name, caliber, brand, category string) ([]models.Weapon, error) {
	return s.weaponMatches, nil
}

func (s *stubRepo) AdjustStock(ctx context.Context, weaponID uuid.UUID, delta int) error {
	s.stockDeltas[weaponID] += delta
	return nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func newTestService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{Repo: repo, Tx: stubTxRunner{}})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %s", code)
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != code {
		t.Fatalf("expected code %s, got %v", code, err)
	}
}

func assignFixture() (*stubRepo, uuid.UUID) {
	groupID := uuid.New()
	weaponID := uuid.New()
	clientID := uuid.New()
	repo := newStubRepo()
	repo.serial = &models.WeaponSerial{
		ID:           uuid.New(),
		SerialNumber: "SN-1001",
		WeaponID:     weaponID,
		GroupID:      &groupID,
		Status:       enums.SerialStatusAvailable,
	}
	repo.reservation = &models.WeaponReservation{
		ID:       uuid.New(),
		ClientID: clientID,
		WeaponID: weaponID,
		Status:   enums.ReservationStatusReserved,
	}
	repo.membership = &models.GroupMembership{
		ID:       uuid.New(),
		ClientID: clientID,
		GroupID:  groupID,
		Status:   enums.MembershipStatusConfirmed,
	}
	return repo, groupID
}

func TestAssignLinksSerialAndReservation(t *testing.T) {
	repo, _ := assignFixture()
	svc := newTestService(t, repo)

	dto, err := svc.Assign(context.Background(), AssignRequest{
		SerialID:      repo.serial.ID,
		ReservationID: repo.reservation.ID,
	}, uuid.New())
	if err != nil {
		t.Fatalf("assign: %v", err)
	}
	if dto.Status != enums.SerialStatusAssigned {
		t.Fatalf("expected assigned serial, got %s", dto.Status)
	}
	if dto.ClientID == nil || *dto.ClientID != repo.reservation.ClientID {
		t.Fatalf("expected serial linked to reservation client")
	}
	if dto.AssignedAt == nil || dto.AssignedByID == nil {
		t.Fatalf("expected assignment metadata recorded")
	}
	if repo.resStatus != enums.ReservationStatusAssigned || repo.resSerial != "SN-1001" {
		t.Fatalf("expected reservation assigned with serial number, got %s %q", repo.resStatus, repo.resSerial)
	}
	if dto.History == "" {
		t.Fatalf("expected history entry appended")
	}
}

func TestAssignRejectsUnavailableSerial(t *testing.T) {
	repo, _ := assignFixture()
	repo.serial.Status = enums.SerialStatusAssigned
	svc := newTestService(t, repo)

	_, err := svc.Assign(context.Background(), AssignRequest{
		SerialID:      repo.serial.ID,
		ReservationID: repo.reservation.ID,
	}, uuid.New())
	assertCode(t, err, pkgerrors.CodeStateConflict)
}

func TestAssignRejectsModelMismatch(t *testing.T) {
	repo, _ := assignFixture()
	repo.reservation.WeaponID = uuid.New()
	svc := newTestService(t, repo)

	_, err := svc.Assign(context.Background(), AssignRequest{
		SerialID:      repo.serial.ID,
		ReservationID: repo.reservation.ID,
	}, uuid.New())
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestAssignRejectsGroupScopeMismatch(t *testing.T) {
	repo, _ := assignFixture()
	otherGroup := uuid.New()
	repo.membership.GroupID = otherGroup
	svc := newTestService(t, repo)

	_, err := svc.Assign(context.Background(), AssignRequest{
		SerialID:      repo.serial.ID,
		ReservationID: repo.reservation.ID,
	}, uuid.New())
	assertCode(t, err, pkgerrors.CodeConflict)
}

func TestAssignRejectsClientWithoutMembership(t *testing.T) {
	repo, _ := assignFixture()
	repo.membership = nil
	svc := newTestService(t, repo)

	_, err := svc.Assign(context.Background(), AssignRequest{
		SerialID:      repo.serial.ID,
		ReservationID: repo.reservation.ID,
	}, uuid.New())
	assertCode(t, err, pkgerrors.CodeConflict)
}

func TestLiberateRevertsBothSides(t *testing.T) {
	repo, _ := assignFixture()
	clientID := repo.reservation.ClientID
	repo.serial.Status = enums.SerialStatusAssigned
	repo.serial.ClientID = &clientID
	repo.assignedBySN = repo.reservation
	svc := newTestService(t, repo)

	dto, err := svc.Liberate(context.Background(), repo.serial.ID, uuid.New())
	if err != nil {
		t.Fatalf("liberate: %v", err)
	}
	if dto.Status != enums.SerialStatusAvailable {
		t.Fatalf("expected available serial, got %s", dto.Status)
	}
	if dto.ClientID != nil || dto.AssignedAt != nil || dto.AssignedByID != nil {
		t.Fatalf("expected assignment linkage cleared")
	}
	if repo.resStatus != enums.ReservationStatusReserved || repo.resSerial != "" {
		t.Fatalf("expected reservation reverted, got %s %q", repo.resStatus, repo.resSerial)
	}
}

func TestLiberateRejectsAvailableSerial(t *testing.T) {
	repo, _ := assignFixture()
	svc := newTestService(t, repo)

	_, err := svc.Liberate(context.Background(), repo.serial.ID, uuid.New())
	assertCode(t, err, pkgerrors.CodeStateConflict)
}

func TestSellMarksBothSidesSold(t *testing.T) {
	repo, _ := assignFixture()
	repo.serial.Status = enums.SerialStatusAssigned
	repo.assignedBySN = repo.reservation
	svc := newTestService(t, repo)

	dto, err := svc.Sell(context.Background(), repo.serial.ID, uuid.New())
	if err != nil {
		t.Fatalf("sell: %v", err)
	}
	if dto.Status != enums.SerialStatusSold {
		t.Fatalf("expected sold serial, got %s", dto.Status)
	}
	if repo.resStatus != enums.ReservationStatusSold {
		t.Fatalf("expected sold reservation, got %s", repo.resStatus)
	}
}

func TestSellAssignedByClientClosesSerialsAndReservations(t *testing.T) {
	repo, _ := assignFixture()
	clientID := repo.reservation.ClientID
	repo.serial.Status = enums.SerialStatusAssigned
	repo.serial.ClientID = &clientID
	repo.assignedBySN = repo.reservation
	svc := newTestService(t, repo)

	if err := svc.SellAssignedByClient(context.Background(), nil, clientID); err != nil {
		t.Fatalf("sell assigned: %v", err)
	}
	if repo.savedSerial == nil || repo.savedSerial.Status != enums.SerialStatusSold {
		t.Fatalf("expected serial sold, got %+v", repo.savedSerial)
	}
	if repo.resStatus != enums.ReservationStatusSold {
		t.Fatalf("expected reservation sold, got %s", repo.resStatus)
	}
	if !strings.Contains(repo.savedSerial.History, "membership completion") {
		t.Fatalf("expected completion history entry, got %q", repo.savedSerial.History)
	}
}

func TestSellAssignedByClientNoSerialsIsNoOp(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(t, repo)

	if err := svc.SellAssignedByClient(context.Background(), nil, uuid.New()); err != nil {
		t.Fatalf("sell assigned: %v", err)
	}
	if repo.savedSerial != nil {
		t.Fatalf("expected no serial touched, got %+v", repo.savedSerial)
	}
}

func TestRetireRequiresReason(t *testing.T) {
	repo, _ := assignFixture()
	svc := newTestService(t, repo)

	_, err := svc.Retire(context.Background(), repo.serial.ID, "  ", uuid.New())
	assertCode(t, err, pkgerrors.CodeValidation)
}

func TestRetireDecrementsStockAndAppendsReason(t *testing.T) {
	repo, _ := assignFixture()
	svc := newTestService(t, repo)

	dto, err := svc.Retire(context.Background(), repo.serial.ID, "barrel damaged in transit", uuid.New())
	if err != nil {
		t.Fatalf("retire: %v", err)
	}
	if dto.Status != enums.SerialStatusRetired {
		t.Fatalf("expected retired serial, got %s", dto.Status)
	}
	if repo.stockDeltas[repo.serial.WeaponID] != -1 {
		t.Fatalf("expected stock decremented, got %d", repo.stockDeltas[repo.serial.WeaponID])
	}
	if !strings.Contains(dto.History, "barrel damaged in transit") {
		t.Fatalf("expected reason in history, got %q", dto.History)
	}
}

func TestRetireAssignedSerialReleasesReservation(t *testing.T) {
	repo, _ := assignFixture()
	repo.serial.Status = enums.SerialStatusAssigned
	repo.assignedBySN = repo.reservation
	svc := newTestService(t, repo)

	_, err := svc.Retire(context.Background(), repo.serial.ID, "lost during inspection", uuid.New())
	if err != nil {
		t.Fatalf("retire: %v", err)
	}
	if repo.resStatus != enums.ReservationStatusReserved {
		t.Fatalf("expected reservation released, got %s", repo.resStatus)
	}
}

func TestRetireRejectsRetiredSerial(t *testing.T) {
	repo, _ := assignFixture()
	repo.serial.Status = enums.SerialStatusRetired
	svc := newTestService(t, repo)

	_, err := svc.Retire(context.Background(), repo.serial.ID, "already gone", uuid.New())
	assertCode(t, err, pkgerrors.CodeStateConflict)
}
