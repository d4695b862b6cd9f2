package reservations

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/armeriaops/armimport-backend/pkg/db/models"
	"github.com/armeriaops/armimport-backend/pkg/enums"
	pkgerrors "github.com/armeriaops/armimport-backend/pkg/errors"
)

// CreateReservationRequest is the reservation intake payload.
type CreateReservationRequest struct {
	ClientID  uuid.UUID `json:"client_id" validate:"required"`
	WeaponID  uuid.UUID `json:"weapon_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,min=1"`
	UnitPrice string    `json:"unit_price"`
}

// Service defines the behavior needed by the reservations controller.
type Service interface {
	Reserve(ctx context.Context, req CreateReservationRequest) (*ReservationDTO, error)
	Cancel(ctx context.Context, id uuid.UUID) error
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]ReservationDTO, error)
}

type reservationRepository interface {
	Create(ctx context.Context, reservation *models.WeaponReservation) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.WeaponReservation, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]models.WeaponReservation, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.ReservationStatus, serialNumber string) error
}

type weaponFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Weapon, error)
}

type service struct {
	repo    reservationRepository
	weapons weaponFinder
}

// NewService constructs a reservations service with the provided dependencies.
func NewService(repo reservationRepository, weapons weaponFinder) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reservation repository is required")
	}
	if weapons == nil {
		return nil, fmt.Errorf("weapon repository is required")
	}
	return &service{repo: repo, weapons: weapons}, nil
}

func (s *service) Reserve(ctx context.Context, req CreateReservationRequest) (*ReservationDTO, error) {
	if req.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	weapon, err := s.weapons.FindByID(ctx, req.WeaponID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown weapon")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup weapon")
	}

	// Catalog price applies unless the caller negotiated one.
	price := weapon.UnitPrice
	if req.UnitPrice != "" {
		price, err = decimal.NewFromString(req.UnitPrice)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit price must be a decimal number")
		}
		if price.IsNegative() || price.IsZero() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unit price must be positive")
		}
	}

	reservation := &models.WeaponReservation{
		ClientID:  req.ClientID,
		WeaponID:  req.WeaponID,
		Quantity:  req.Quantity,
		UnitPrice: price,
		Status:    enums.ReservationStatusReserved,
	}
	if err := s.repo.Create(ctx, reservation); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create reservation")
	}
	return FromModel(reservation), nil
}

func (s *service) Cancel(ctx context.Context, id uuid.UUID) error {
	reservation, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "reservation not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup reservation")
	}

	if !reservation.Status.CanTransitionTo(enums.ReservationStatusCancelled) {
		return pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("reservation in status %s cannot be cancelled", reservation.Status))
	}

	if err := s.repo.UpdateStatus(ctx, id, enums.ReservationStatusCancelled, reservation.SerialNumber); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "cancel reservation")
	}
	return nil
}

func (s *service) ListByClient(ctx context.Context, clientID uuid.UUID) ([]ReservationDTO, error) {
	rows, err := s.repo.ListByClient(ctx, clientID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list reservations")
	}
	dtos := make([]ReservationDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *FromModel(&rows[i]))
	}
	return dtos, nil
}
