package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/armeriaops/armimport-backend/pkg/db/models"
	pkgerrors "github.com/armeriaops/armimport-backend/pkg/errors"
	"github.com/armeriaops/armimport-backend/pkg/logger"
)

// Kinds the frontend maps to copy.
const (
	KindDocumentReviewed  = "document_reviewed"
	KindGroupStageChanged = "group_stage_changed"
)

// Service defines the behavior needed by the notifications controller plus
// the emission hooks other services call. Emission is best-effort: failures
// are logged and never surface to the calling flow.
type Service interface {
	ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]NotificationDTO, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)

	DocumentReviewed(ctx context.Context, document *models.Document)
	GroupStageChanged(ctx context.Context, group *models.ImportGroup)
}

type notificationRepository interface {
	Create(ctx context.Context, notification *models.Notification) error
	ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]models.Notification, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID, at time.Time) (int64, error)
	MarkAllRead(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error)
	AdminUserIDs(ctx context.Context) ([]uuid.UUID, error)
}

type service struct {
	repo notificationRepository
	logg *logger.Logger
	now  func() time.Time
}

// ServiceParams bundles the dependencies required to build a notifications service.
type ServiceParams struct {
	Repo   notificationRepository
	Logger *logger.Logger
}

// NewService constructs a notifications service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("notification repository is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{repo: params.Repo, logg: params.Logger, now: time.Now}, nil
}

func (s *service) ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]NotificationDTO, error) {
	rows, err := s.repo.ListByUser(ctx, userID, unreadOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list notifications")
	}
	dtos := make([]NotificationDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *FromModel(&rows[i]))
	}
	return dtos, nil
}

func (s *service) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	affected, err := s.repo.MarkRead(ctx, id, userID, s.now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark notification read")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "notification not found")
	}
	return nil
}

func (s *service) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	affected, err := s.repo.MarkAllRead(ctx, userID, s.now().UTC())
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark notifications read")
	}
	return affected, nil
}

func (s *service) DocumentReviewed(ctx context.Context, document *models.Document) {
	if document == nil {
		return
	}
	title := fmt.Sprintf("Documento %s %s", document.Kind, spanishStatus(string(document.Status)))
	body := fmt.Sprintf("El documento %s del cliente fue revisado.", document.FileName)
	s.broadcast(ctx, KindDocumentReviewed, title, body, &document.ID)
}

func (s *service) GroupStageChanged(ctx context.Context, group *models.ImportGroup) {
	if group == nil {
		return
	}
	title := fmt.Sprintf("Grupo %s ahora en etapa %s", group.Code, group.Stage)
	s.broadcast(ctx, KindGroupStageChanged, title, "", &group.ID)
}

// broadcast fans the event out to every active back-office user.
func (s *service) broadcast(ctx context.Context, kind, title, body string, entityID *uuid.UUID) {
	userIDs, err := s.repo.AdminUserIDs(ctx)
	if err != nil {
		s.logg.Warn(ctx, fmt.Sprintf("notification audience lookup failed: %v", err))
		return
	}
	for _, userID := range userIDs {
		notification := &models.Notification{
			UserID:   userID,
			Kind:     kind,
			Title:    title,
			Body:     body,
			EntityID: entityID,
		}
		if err := s.repo.Create(ctx, notification); err != nil {
			s.logg.Warn(ctx, fmt.Sprintf("create notification for %s failed: %v", userID, err))
		}
	}
}

func spanishStatus(status string) string {
	switch status {
	case "approved":
		return "aprobado"
	case "rejected":
		return "rechazado"
	default:
		return status
	}
}
