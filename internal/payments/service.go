package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/armeriaops/armimport-backend/pkg/db/models"
	"github.com/armeriaops/armimport-backend/pkg/enums"
	pkgerrors "github.com/armeriaops/armimport-backend/pkg/errors"
)

// Service defines the behavior needed by the payments controller and by the
// contract issue precondition.
type Service interface {
	Record(ctx context.Context, dto RecordPaymentDTO, recordedBy uuid.UUID) (*PaymentDTO, error)
	Confirm(ctx context.Context, id uuid.UUID) (*PaymentDTO, error)
	Void(ctx context.Context, id uuid.UUID) (*PaymentDTO, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]PaymentDTO, error)
	HasConfirmedForClient(ctx context.Context, clientID uuid.UUID) (bool, error)
}

type paymentRepository interface {
	Create(ctx context.Context, payment *models.Payment) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.Payment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.PaymentStatus, at time.Time) error
	HasConfirmedForClient(ctx context.Context, clientID uuid.UUID) (bool, error)
}

type service struct {
	repo paymentRepository
	now  func() time.Time
}

// ServiceParams bundles the dependencies required to build a payments service.
type ServiceParams struct {
	Repo paymentRepository
}

// NewService constructs a payments service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("payment repository is required")
	}
	return &service{repo: params.Repo, now: time.Now}, nil
}

func (s *service) Record(ctx context.Context, dto RecordPaymentDTO, recordedBy uuid.UUID) (*PaymentDTO, error) {
	if !dto.Method.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid payment method %q", dto.Method))
	}
	amount, err := decimal.NewFromString(dto.Amount)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid amount %q", dto.Amount))
	}
	if !amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be greater than zero")
	}

	payment := &models.Payment{
		ClientID:   dto.ClientID,
		GroupID:    dto.GroupID,
		Amount:     amount,
		Method:     dto.Method,
		Status:     enums.PaymentStatusPending,
		Reference:  dto.Reference,
		Notes:      dto.Notes,
		RecordedBy: &recordedBy,
	}
	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create payment")
	}
	return FromModel(payment), nil
}

func (s *service) Confirm(ctx context.Context, id uuid.UUID) (*PaymentDTO, error) {
	return s.transition(ctx, id, enums.PaymentStatusConfirmed)
}

func (s *service) Void(ctx context.Context, id uuid.UUID) (*PaymentDTO, error) {
	return s.transition(ctx, id, enums.PaymentStatusVoided)
}

func (s *service) ListByClient(ctx context.Context, clientID uuid.UUID) ([]PaymentDTO, error) {
	rows, err := s.repo.ListByClient(ctx, clientID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list payments")
	}
	dtos := make([]PaymentDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *FromModel(&rows[i]))
	}
	return dtos, nil
}

func (s *service) HasConfirmedForClient(ctx context.Context, clientID uuid.UUID) (bool, error) {
	ok, err := s.repo.HasConfirmedForClient(ctx, clientID)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check confirmed payments")
	}
	return ok, nil
}

func (s *service) transition(ctx context.Context, id uuid.UUID, next enums.PaymentStatus) (*PaymentDTO, error) {
	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup payment")
	}
	if !payment.Status.CanTransitionTo(next) {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("payment cannot move from %s to %s", payment.Status, next))
	}

	now := s.now().UTC()
	if err := s.repo.UpdateStatus(ctx, id, next, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update payment status")
	}
	payment.Status = next
	if next == enums.PaymentStatusConfirmed {
		payment.PaidAt = &now
	}
	return FromModel(payment), nil
}
