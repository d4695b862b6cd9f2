package documents

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/armeriaops/armimport-backend/pkg/db/models"
	"github.com/armeriaops/armimport-backend/pkg/enums"
	pkgerrors "github.com/armeriaops/armimport-backend/pkg/errors"
	"github.com/armeriaops/armimport-backend/pkg/logger"
)

const storageScope = "documents"

// Service defines the behavior needed by the documents controller and by the
// membership precondition checks.
type Service interface {
	Upload(ctx context.Context, dto UploadDTO, content io.Reader) (*DocumentDTO, error)
	Review(ctx context.Context, id uuid.UUID, approve bool, reason string, reviewedBy uuid.UUID) (*DocumentDTO, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]DocumentDTO, error)
	Download(ctx context.Context, id uuid.UUID) (*DocumentDTO, io.ReadCloser, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AllApproved(ctx context.Context, clientID uuid.UUID, clientType enums.ClientType) (bool, error)
}

type documentRepository interface {
	Create(ctx context.Context, document *models.Document) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Document, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Document, error)
	SetReview(ctx context.Context, id uuid.UUID, status enums.DocumentStatus, reason string, reviewedBy uuid.UUID, at time.Time) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountApprovedByKinds(ctx context.Context, clientID uuid.UUID, kinds []enums.DocumentKind) (int64, error)
}

type fileStore interface {
	Save(scope string, entityID uuid.UUID, name string, r io.Reader) (string, error)
	Open(rel string) (io.ReadCloser, error)
	Delete(rel string) error
}

type notifier interface {
	DocumentReviewed(ctx context.Context, document *models.Document)
}

type service struct {
	repo     documentRepository
	files    fileStore
	logg     *logger.Logger
	notifier notifier
	now      func() time.Time
}

// ServiceParams bundles the dependencies required to build a documents service.
// Notifier is optional.
type ServiceParams struct {
	Repo     documentRepository
	Files    fileStore
	Logger   *logger.Logger
	Notifier notifier
}

// NewService constructs a documents service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("document repository is required")
	}
	if params.Files == nil {
		return nil, fmt.Errorf("file store is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{
		repo:     params.Repo,
		files:    params.Files,
		logg:     params.Logger,
		notifier: params.Notifier,
		now:      time.Now,
	}, nil
}

func (s *service) Upload(ctx context.Context, dto UploadDTO, content io.Reader) (*DocumentDTO, error) {
	if !dto.Kind.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid document kind %q", dto.Kind))
	}
	if strings.TrimSpace(dto.FileName) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file name is required")
	}
	if content == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file content is required")
	}

	path, err := s.files.Save(storageScope, dto.ClientID, dto.FileName, content)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store document file")
	}

	document := &models.Document{
		ClientID:    dto.ClientID,
		Kind:        dto.Kind,
		Status:      enums.DocumentStatusPending,
		FileName:    dto.FileName,
		StoragePath: path,
		ContentType: dto.ContentType,
		SizeBytes:   dto.SizeBytes,
	}
	if err := s.repo.Create(ctx, document); err != nil {
		if removeErr := s.files.Delete(path); removeErr != nil {
			s.logg.Warn(ctx, fmt.Sprintf("orphaned document file %s: %v", path, removeErr))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create document")
	}
	return FromModel(document), nil
}

func (s *service) Review(ctx context.Context, id uuid.UUID, approve bool, reason string, reviewedBy uuid.UUID) (*DocumentDTO, error) {
	document, err := s.findDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	if document.Status != enums.DocumentStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("document already reviewed as %s", document.Status))
	}

	status := enums.DocumentStatusApproved
	reason = strings.TrimSpace(reason)
	if !approve {
		if reason == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "a reason is required to reject a document")
		}
		status = enums.DocumentStatusRejected
	} else {
		reason = ""
	}

	now := s.now().UTC()
	if err := s.repo.SetReview(ctx, id, status, reason, reviewedBy, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "review document")
	}

	document.Status = status
	document.RejectReason = reason
	document.ReviewedByID = &reviewedBy
	document.ReviewedAt = &now

	if s.notifier != nil {
		s.notifier.DocumentReviewed(ctx, document)
	}
	return FromModel(document), nil
}

func (s *service) ListByClient(ctx context.Context, clientID uuid.UUID) ([]DocumentDTO, error) {
	rows, err := s.repo.ListByClient(ctx, clientID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list documents")
	}
	dtos := make([]DocumentDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *FromModel(&rows[i]))
	}
	return dtos, nil
}

func (s *service) Download(ctx context.Context, id uuid.UUID) (*DocumentDTO, io.ReadCloser, error) {
	document, err := s.findDocument(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	reader, err := s.files.Open(document.StoragePath)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "open document file")
	}
	return FromModel(document), reader, nil
}

// Delete removes the row and then the file. A failed file removal is logged
// and not surfaced; the row is already gone.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	document, err := s.findDocument(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete document")
	}
	if err := s.files.Delete(document.StoragePath); err != nil {
		s.logg.Warn(ctx, fmt.Sprintf("remove document file %s: %v", document.StoragePath, err))
	}
	return nil
}

// AllApproved reports whether every required document kind for the client
// type has an approved upload.
func (s *service) AllApproved(ctx context.Context, clientID uuid.UUID, clientType enums.ClientType) (bool, error) {
	required := enums.RequiredDocumentKinds(clientType)
	approved, err := s.repo.CountApprovedByKinds(ctx, clientID, required)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count approved documents")
	}
	return approved >= int64(len(required)), nil
}

func (s *service) findDocument(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	document, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "document not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup document")
	}
	return document, nil
}
