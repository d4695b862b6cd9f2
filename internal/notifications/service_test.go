package notifications

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/armeriaops/armimport-backend/pkg/db/models"
	"github.com/armeriaops/armimport-backend/pkg/enums"
	pkgerrors "github.com/armeriaops/armimport-backend/pkg/errors"
	"github.com/armeriaops/armimport-backend/pkg/logger"
)

type stubNotificationRepo struct {
	admins       []uuid.UUID
	created      []*models.Notification
	markAffected int64
}

func (s *stubNotificationRepo) Create(ctx context.Context, notification *models.Notification) error {
	s.created = append(s.created, notification)
	return nil
}

func (s *stubNotificationRepo) ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]models.Notification, error) {
	return nil, nil
}

func (s *stubNotificationRepo) MarkRead(ctx context.Context, id, userID uuid.UUID, at time.Time) (int64, error) {
	return s.markAffected, nil
}

func (s *stubNotificationRepo) MarkAllRead(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error) {
	return s.markAffected, nil
}

func (s *stubNotificationRepo) AdminUserIDs(ctx context.Context) ([]uuid.UUID, error) {
	return s.admins, nil
}

func newTestService(t *testing.T, repo *stubNotificationRepo) Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.Disabled, Output: io.Discard})
	svc, err := NewService(ServiceParams{Repo: repo, Logger: logg})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func TestDocumentReviewedFansOutToAdmins(t *testing.T) {
	repo := &stubNotificationRepo{admins: []uuid.UUID{uuid.New(), uuid.New()}}
	svc := newTestService(t, repo)

	svc.DocumentReviewed(context.Background(), &models.Document{
		ID:       uuid.New(),
		Kind:     enums.DocumentKindIdentification,
		Status:   enums.DocumentStatusApproved,
		FileName: "cedula.pdf",
	})

	if len(repo.created) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(repo.created))
	}
	for _, n := range repo.created {
		if n.Kind != KindDocumentReviewed {
			t.Fatalf("unexpected kind %q", n.Kind)
		}
		if n.EntityID == nil {
			t.Fatalf("expected entity id recorded")
		}
	}
}

func TestGroupStageChangedEmitsPerAdmin(t *testing.T) {
	repo := &stubNotificationRepo{admins: []uuid.UUID{uuid.New()}}
	svc := newTestService(t, repo)

	svc.GroupStageChanged(context.Background(), &models.ImportGroup{
		ID:    uuid.New(),
		Code:  "IMP-2026-04",
		Stage: enums.GroupStageOrdered,
	})

	if len(repo.created) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(repo.created))
	}
	if repo.created[0].Kind != KindGroupStageChanged {
		t.Fatalf("unexpected kind %q", repo.created[0].Kind)
	}
}

func TestMarkReadReportsMissingRow(t *testing.T) {
	repo := &stubNotificationRepo{markAffected: 0}
	svc := newTestService(t, repo)

	err := svc.MarkRead(context.Background(), uuid.New(), uuid.New())
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}

	repo.markAffected = 1
	if err := svc.MarkRead(context.Background(), uuid.New(), uuid.New()); err != nil {
		t.Fatalf("mark read: %v", err)
	}
}

func TestMarkAllReadReturnsCount(t *testing.T) {
	repo := &stubNotificationRepo{markAffected: 3}
	svc := newTestService(t, repo)

	affected, err := svc.MarkAllRead(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("mark all read: %v", err)
	}
	if affected != 3 {
		t.Fatalf("expected 3 affected, got %d", affected)
	}
}
