package contracts

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/armeriaops/armimport-backend/pkg/db/models"
	"github.com/armeriaops/armimport-backend/pkg/enums"
	pkgerrors "github.com/armeriaops/armimport-backend/pkg/errors"
	"github.com/armeriaops/armimport-backend/pkg/logger"
	"github.com/armeriaops/armimport-backend/pkg/mailer"
	"github.com/armeriaops/armimport-backend/pkg/pdf"
)

type stubContractRepo struct {
	serial      *models.WeaponSerial
	reservation *models.WeaponReservation
	membership  *models.GroupMembership
	client      *models.Client
	weapon      *models.Weapon
	group       *models.ImportGroup
	idType      *models.IdentificationType
	paid        bool
	hasContract bool
	issuedCount int64
	created     *models.Contract
	pdfPath     string
	emailed     bool
}

func (s *stubContractRepo) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubContractRepo) CreateContract(ctx context.Context, contract *models.Contract) error {
	s.created = contract
	return nil
}

func (s *stubContractRepo) FindContract(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	if s.created == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.created, nil
}

func (s *stubContractRepo) ListContractsByClient(ctx context.Context, clientID uuid.UUID) ([]models.Contract, error) {
	return nil, nil
}

func (s *stubContractRepo) CountContractsForYear(ctx context.Context, year int) (int64, error) {
	return s.issuedCount, nil
}

func (s *stubContractRepo) SetPDFPath(ctx context.Context, id uuid.UUID, path string) error {
	s.pdfPath = path
	return nil
}

func (s *stubContractRepo) SetEmailedAt(ctx context.Context, id uuid.UUID) error {
	s.emailed = true
	return nil
}

func (s *stubContractRepo) FindSerial(ctx context.Context, id uuid.UUID) (*models.WeaponSerial, error) {
	return s.FindSerialForUpdate(ctx, id)
}

func (s *stubContractRepo) FindSerialForUpdate(ctx context.Context, id uuid.UUID) (*models.WeaponSerial, error) {
	if s.serial == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.serial, nil
}

func (s *stubContractRepo) FindAssignedReservationBySerial(ctx context.Context, serialNumber string) (*models.WeaponReservation, error) {
	if s.reservation == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.reservation, nil
}

func (s *stubContractRepo) FindActiveMembership(ctx context.Context, clientID uuid.UUID) (*models.GroupMembership, error) {
	return s.membership, nil
}

func (s *stubContractRepo) HasConfirmedPayment(ctx context.Context, clientID uuid.UUID) (bool, error) {
	return s.paid, nil
}

func (s *stubContractRepo) SerialHasContract(ctx context.Context, serialID uuid.UUID) (bool, error) {
	return s.hasContract, nil
}

func (s *stubContractRepo) FindClient(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	if s.client == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.client, nil
}

func (s *stubContractRepo) FindWeapon(ctx context.Context, id uuid.UUID) (*models.Weapon, error) {
	if s.weapon == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.weapon, nil
}

func (s *stubContractRepo) FindGroup(ctx context.Context, id uuid.UUID) (*models.ImportGroup, error) {
	if s.group == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.group, nil
}

func (s *stubContractRepo) FindIdentificationType(ctx context.Context, id uuid.UUID) (*models.IdentificationType, error) {
	if s.idType == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.idType, nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubRenderer struct {
	rendered bool
	err      error
}

func (s *stubRenderer) RenderContract(w io.Writer, data pdf.ContractData) error {
	if s.err != nil {
		return s.err
	}
	s.rendered = true
	_, err := w.Write([]byte("%PDF-1.4"))
	return err
}

type stubFileStore struct {
	saved string
}

func (s *stubFileStore) Save(scope string, entityID uuid.UUID, name string, r io.Reader) (string, error) {
	s.saved = scope + "/" + entityID.String() + "/" + name
	return s.saved, nil
}

func (s *stubFileStore) Open(rel string) (io.ReadCloser, error) {
	return io.NopCloser(strings.NewReader("%PDF-1.4")), nil
}

type stubMailer struct {
	sent []mailer.Message
}

func (s *stubMailer) Send(msg mailer.Message) error {
	s.sent = append(s.sent, msg)
	return nil
}

func issueFixture() *stubContractRepo {
	clientID := uuid.New()
	groupID := uuid.New()
	weaponID := uuid.New()
	return &stubContractRepo{
		serial: &models.WeaponSerial{
			ID:           uuid.New(),
			SerialNumber: "SN-9001",
			WeaponID:     weaponID,
			GroupID:      &groupID,
			Status:       enums.SerialStatusAssigned,
			ClientID:     &clientID,
		},
		reservation: &models.WeaponReservation{
			ID:        uuid.New(),
			ClientID:  clientID,
			WeaponID:  weaponID,
			Quantity:  1,
			UnitPrice: decimal.NewFromInt(1800),
			Status:    enums.ReservationStatusAssigned,
		},
		membership: &models.GroupMembership{
			ID:       uuid.New(),
			ClientID: clientID,
			GroupID:  groupID,
			Status:   enums.MembershipStatusApproved,
		},
		client: &models.Client{
			ID:                   clientID,
			FirstName:            "Ana",
			LastName:             "Paredes",
			Email:                "ana@example.com",
			IdentificationNumber: "1712345678",
			Type:                 enums.ClientTypeCivilian,
		},
		weapon: &models.Weapon{ID: weaponID, Name: "G17", Brand: "Glock", Caliber: "9mm"},
		group:  &models.ImportGroup{ID: groupID, Code: "IMP-2026-01", LicenseNumber: "LIC-44"},
		idType: &models.IdentificationType{ID: uuid.New(), Code: "cedula", Name: "Cedula"},
		paid:   true,
	}
}

func newTestService(t *testing.T, repo Repository, renderer contractRenderer, files fileStore, mail mailer.Sender) Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})
	svc, err := NewService(ServiceParams{
		Repo:     repo,
		Tx:       stubTxRunner{},
		Renderer: renderer,
		Files:    files,
		Mail:     mail,
		Logger:   logg,
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != code {
		t.Fatalf("expected code %s, got %v", code, err)
	}
}

func TestIssueCreatesContractAndFinalizes(t *testing.T) {
	repo := issueFixture()
	renderer := &stubRenderer{}
	files := &stubFileStore{}
	mail := &stubMailer{}
	svc := newTestService(t, repo, renderer, files, mail)

	dto, err := svc.Issue(context.Background(), IssueRequest{SerialID: repo.serial.ID}, uuid.New())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !strings.HasPrefix(dto.Number, "CT-") {
		t.Fatalf("unexpected contract number %q", dto.Number)
	}
	if dto.TotalPrice.String() != "1800" {
		t.Fatalf("unexpected total %s", dto.TotalPrice)
	}
	if !renderer.rendered || repo.pdfPath == "" {
		t.Fatalf("expected pdf rendered and stored")
	}
	if len(mail.sent) != 1 || !repo.emailed {
		t.Fatalf("expected contract emailed")
	}
}

func TestIssueRejectsUnassignedSerial(t *testing.T) {
	repo := issueFixture()
	repo.serial.Status = enums.SerialStatusAvailable
	svc := newTestService(t, repo, &stubRenderer{}, &stubFileStore{}, nil)

	_, err := svc.Issue(context.Background(), IssueRequest{SerialID: repo.serial.ID}, uuid.New())
	assertCode(t, err, pkgerrors.CodeStateConflict)
}

func TestIssueRejectsSerialWithContract(t *testing.T) {
	repo := issueFixture()
	repo.hasContract = true
	svc := newTestService(t, repo, &stubRenderer{}, &stubFileStore{}, nil)

	_, err := svc.Issue(context.Background(), IssueRequest{SerialID: repo.serial.ID}, uuid.New())
	assertCode(t, err, pkgerrors.CodeConflict)
}

func TestIssueRequiresConfirmedPayment(t *testing.T) {
	repo := issueFixture()
	repo.paid = false
	svc := newTestService(t, repo, &stubRenderer{}, &stubFileStore{}, nil)

	_, err := svc.Issue(context.Background(), IssueRequest{SerialID: repo.serial.ID}, uuid.New())
	assertCode(t, err, pkgerrors.CodeConflict)
}

func TestIssueRequiresActiveMembership(t *testing.T) {
	repo := issueFixture()
	repo.membership = nil
	svc := newTestService(t, repo, &stubRenderer{}, &stubFileStore{}, nil)

	_, err := svc.Issue(context.Background(), IssueRequest{SerialID: repo.serial.ID}, uuid.New())
	assertCode(t, err, pkgerrors.CodeConflict)
}

func TestIssueSurvivesRenderFailure(t *testing.T) {
	repo := issueFixture()
	renderer := &stubRenderer{err: io.ErrClosedPipe}
	svc := newTestService(t, repo, renderer, &stubFileStore{}, nil)

	dto, err := svc.Issue(context.Background(), IssueRequest{SerialID: repo.serial.ID}, uuid.New())
	if err != nil {
		t.Fatalf("issue should not fail on render: %v", err)
	}
	if dto.PDFPath != "" || repo.pdfPath != "" {
		t.Fatalf("expected no pdf path after render failure")
	}
	if repo.created == nil {
		t.Fatalf("expected contract row persisted")
	}
}

func TestIssueNumbersAreSequentialWithinYear(t *testing.T) {
	repo := issueFixture()
	repo.issuedCount = 41
	svc := newTestService(t, repo, &stubRenderer{}, &stubFileStore{}, nil)

	dto, err := svc.Issue(context.Background(), IssueRequest{SerialID: repo.serial.ID}, uuid.New())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !strings.HasSuffix(dto.Number, "-00042") {
		t.Fatalf("expected sequence 42, got %q", dto.Number)
	}
}

func TestDownloadRequiresRenderedPDF(t *testing.T) {
	repo := issueFixture()
	repo.created = &models.Contract{ID: uuid.New(), Number: "CT-2026-00001"}
	svc := newTestService(t, repo, &stubRenderer{}, &stubFileStore{}, nil)

	_, _, err := svc.Download(context.Background(), repo.created.ID)
	assertCode(t, err, pkgerrors.CodeStateConflict)

	repo.created.PDFPath = "contracts/x/CT-2026-00001.pdf"
	dto, reader, err := svc.Download(context.Background(), repo.created.ID)
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	defer reader.Close()
	if dto.Number != "CT-2026-00001" {
		t.Fatalf("unexpected contract %q", dto.Number)
	}
}
