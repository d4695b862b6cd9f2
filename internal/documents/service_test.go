package documents

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/armeriaops/armimport-backend/pkg/db/models"
	"github.com/armeriaops/armimport-backend/pkg/enums"
	pkgerrors "github.com/armeriaops/armimport-backend/pkg/errors"
	"github.com/armeriaops/armimport-backend/pkg/logger"
)

type stubDocumentRepo struct {
	byID          *models.Document
	created       *models.Document
	createErr     error
	reviewStatus  enums.DocumentStatus
	reviewReason  string
	deleted       bool
	approvedCount int64
}

func (s *stubDocumentRepo) Create(ctx context.Context, document *models.Document) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.created = document
	return nil
}

func (s *stubDocumentRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	if s.byID == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.byID, nil
}

func (s *stubDocumentRepo) ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Document, error) {
	return nil, nil
}

func (s *stubDocumentRepo) SetReview(ctx context.Context, id uuid.UUID, status enums.DocumentStatus, reason string, reviewedBy uuid.UUID, at time.Time) error {
	s.reviewStatus = status
	s.reviewReason = reason
	return nil
}

func (s *stubDocumentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	s.deleted = true
	return nil
}

func (s *stubDocumentRepo) CountApprovedByKinds(ctx context.Context, clientID uuid.UUID, kinds []enums.DocumentKind) (int64, error) {
	return s.approvedCount, nil
}

type stubFileStore struct {
	savedName   string
	deletedPath string
}

func (s *stubFileStore) Save(scope string, entityID uuid.UUID, name string, r io.Reader) (string, error) {
	s.savedName = name
	return scope + "/" + entityID.String() + "/" + name, nil
}

func (s *stubFileStore) Open(rel string) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader([]byte("content"))), nil
}

func (s *stubFileStore) Delete(rel string) error {
	s.deletedPath = rel
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})
}

func newTestService(t *testing.T, repo *stubDocumentRepo, files *stubFileStore) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{Repo: repo, Files: files, Logger: testLogger()})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func TestUploadStoresFileAndRow(t *testing.T) {
	repo := &stubDocumentRepo{}
	files := &stubFileStore{}
	svc := newTestService(t, repo, files)

	dto, err := svc.Upload(context.Background(), UploadDTO{
		ClientID: uuid.New(),
		Kind:     enums.DocumentKindIdentification,
		FileName: "cedula.pdf",
	}, bytes.NewReader([]byte("pdf")))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if dto.Status != enums.DocumentStatusPending {
		t.Fatalf("expected pending document, got %s", dto.Status)
	}
	if files.savedName != "cedula.pdf" {
		t.Fatalf("expected file saved, got %q", files.savedName)
	}
	if repo.created == nil || repo.created.StoragePath == "" {
		t.Fatalf("expected row created with storage path")
	}
}

func TestUploadCleansFileWhenRowFails(t *testing.T) {
	repo := &stubDocumentRepo{createErr: gorm.ErrInvalidData}
	files := &stubFileStore{}
	svc := newTestService(t, repo, files)

	_, err := svc.Upload(context.Background(), UploadDTO{
		ClientID: uuid.New(),
		Kind:     enums.DocumentKindIdentification,
		FileName: "cedula.pdf",
	}, bytes.NewReader([]byte("pdf")))
	if err == nil {
		t.Fatalf("expected upload to fail")
	}
	if files.deletedPath == "" {
		t.Fatalf("expected stored file removed after row failure")
	}
}

func TestUploadRejectsInvalidKind(t *testing.T) {
	svc := newTestService(t, &stubDocumentRepo{}, &stubFileStore{})

	_, err := svc.Upload(context.Background(), UploadDTO{
		ClientID: uuid.New(),
		Kind:     enums.DocumentKind("passport"),
		FileName: "x.pdf",
	}, bytes.NewReader(nil))
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestReviewApproveClearsReason(t *testing.T) {
	repo := &stubDocumentRepo{byID: &models.Document{
		ID:     uuid.New(),
		Status: enums.DocumentStatusPending,
	}}
	svc := newTestService(t, repo, &stubFileStore{})

	dto, err := svc.Review(context.Background(), repo.byID.ID, true, "ignored", uuid.New())
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if dto.Status != enums.DocumentStatusApproved || dto.RejectReason != "" {
		t.Fatalf("expected approved without reason, got %s %q", dto.Status, dto.RejectReason)
	}
	if dto.ReviewedAt == nil || dto.ReviewedByID == nil {
		t.Fatalf("expected review metadata recorded")
	}
}

func TestReviewRejectRequiresReason(t *testing.T) {
	repo := &stubDocumentRepo{byID: &models.Document{
		ID:     uuid.New(),
		Status: enums.DocumentStatusPending,
	}}
	svc := newTestService(t, repo, &stubFileStore{})

	_, err := svc.Review(context.Background(), repo.byID.ID, false, " ", uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	dto, err := svc.Review(context.Background(), repo.byID.ID, false, "illegible scan", uuid.New())
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if dto.Status != enums.DocumentStatusRejected || dto.RejectReason != "illegible scan" {
		t.Fatalf("expected rejection with reason, got %s %q", dto.Status, dto.RejectReason)
	}
}

func TestReviewRejectsAlreadyReviewed(t *testing.T) {
	repo := &stubDocumentRepo{byID: &models.Document{
		ID:     uuid.New(),
		Status: enums.DocumentStatusApproved,
	}}
	svc := newTestService(t, repo, &stubFileStore{})

	_, err := svc.Review(context.Background(), repo.byID.ID, true, "", uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestDeleteRemovesRowThenFile(t *testing.T) {
	repo := &stubDocumentRepo{byID: &models.Document{
		ID:          uuid.New(),
		StoragePath: "documents/x/cedula.pdf",
	}}
	files := &stubFileStore{}
	svc := newTestService(t, repo, files)

	if err := svc.Delete(context.Background(), repo.byID.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !repo.deleted {
		t.Fatalf("expected row deleted")
	}
	if files.deletedPath != "documents/x/cedula.pdf" {
		t.Fatalf("expected file deleted, got %q", files.deletedPath)
	}
}

func TestAllApprovedComparesAgainstRequiredKinds(t *testing.T) {
	repo := &stubDocumentRepo{approvedCount: 2}
	svc := newTestService(t, repo, &stubFileStore{})

	ok, err := svc.AllApproved(context.Background(), uuid.New(), enums.ClientTypeCivilian)
	if err != nil {
		t.Fatalf("all approved: %v", err)
	}
	if !ok {
		t.Fatalf("expected civilian with 2 approved kinds to pass")
	}

	repo.approvedCount = 1
	ok, err = svc.AllApproved(context.Background(), uuid.New(), enums.ClientTypeCivilian)
	if err != nil {
		t.Fatalf("all approved: %v", err)
	}
	if ok {
		t.Fatalf("expected missing kind to fail")
	}
}
