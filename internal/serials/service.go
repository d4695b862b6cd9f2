package serials

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/armeriaops/armimport-backend/pkg/db/models"
	"github.com/armeriaops/armimport-backend/pkg/enums"
	pkgerrors "github.com/armeriaops/armimport-backend/pkg/errors"
	"github.com/armeriaops/armimport-backend/pkg/metrics"
)

const (
	msgSerialNotAvailable     = "serial is not available for assignment"
	msgReservationNotReserved = "reservation is not in reserved status"
	msgModelMismatch          = "serial and reservation reference different weapon models"
	msgNoActiveMembership     = "client has no active group membership"
	msgGroupScopeMismatch     = "serial belongs to a different import group than the client"
	msgSerialNotAssigned      = "serial is not currently assigned"
	msgRetireReasonRequired   = "a reason is required to retire a serial"
)

// Service defines the behavior needed by the serials controller.
type Service interface {
	Assign(ctx context.Context, req AssignRequest, assignedBy uuid.UUID) (*SerialDTO, error)
	Liberate(ctx context.Context, serialID, actor uuid.UUID) (*SerialDTO, error)
	Sell(ctx context.Context, serialID, actor uuid.UUID) (*SerialDTO, error)
	SellAssignedByClient(ctx context.Context, tx *gorm.DB, clientID uuid.UUID) error
	Retire(ctx context.Context, serialID uuid.UUID, reason string, actor uuid.UUID) (*SerialDTO, error)
	GetSerial(ctx context.Context, id uuid.UUID) (*SerialDTO, error)
	ListByGroup(ctx context.Context, groupID uuid.UUID) ([]SerialDTO, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]SerialDTO, error)
	Import(ctx context.Context, req ImportRequest) (*ImportResult, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo    Repository
	tx      txRunner
	metrics *metrics.OperationMetrics
	now     func() time.Time
}

// ServiceParams bundles the dependencies required to build a serials service.
type ServiceParams struct {
	Repo    Repository
	Tx      txRunner
	Metrics *metrics.OperationMetrics
}

// NewService constructs a serials service with the provided dependencies.
// Metrics may be nil; recording becomes a no-op.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("serial repository is required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	return &service{
		repo:    params.Repo,
		tx:      params.Tx,
		metrics: params.Metrics,
		now:     time.Now,
	}, nil
}

func (s *service) Assign(ctx context.Context, req AssignRequest, assignedBy uuid.UUID) (*SerialDTO, error) {
	var result *models.WeaponSerial
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		serial, err := repo.FindSerialForUpdate(ctx, req.SerialID)
		if err != nil {
			return serialLookupError(err)
		}
		if serial.Status != enums.SerialStatusAvailable {
			return pkgerrors.New(pkgerrors.CodeStateConflict, msgSerialNotAvailable)
		}

		reservation, err := repo.FindReservationForUpdate(ctx, req.ReservationID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "reservation not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup reservation")
		}
		if reservation.Status != enums.ReservationStatusReserved {
			return pkgerrors.New(pkgerrors.CodeStateConflict, msgReservationNotReserved)
		}
		if reservation.WeaponID != serial.WeaponID {
			return pkgerrors.New(pkgerrors.CodeValidation, msgModelMismatch)
		}

		membership, err := repo.FindActiveMembership(ctx, reservation.ClientID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup membership")
		}
		if membership == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, msgNoActiveMembership)
		}
		if serial.GroupID != nil && *serial.GroupID != membership.GroupID {
			return pkgerrors.New(pkgerrors.CodeConflict, msgGroupScopeMismatch)
		}

		now := s.now().UTC()
		serial.Status = enums.SerialStatusAssigned
		serial.ClientID = &reservation.ClientID
		serial.AssignedByID = &assignedBy
		serial.AssignedAt = &now
		s.appendHistory(serial, fmt.Sprintf("assigned to client %s by user %s", reservation.ClientID, assignedBy))

		if err := repo.UpdateReservationStatus(ctx, reservation.ID, enums.ReservationStatusAssigned, serial.SerialNumber); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update reservation")
		}
		if err := repo.SaveSerial(ctx, serial); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save serial")
		}
		result = serial
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncAssignment("assign")
	return FromModel(result), nil
}

func (s *service) Liberate(ctx context.Context, serialID, actor uuid.UUID) (*SerialDTO, error) {
	var result *models.WeaponSerial
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		serial, err := repo.FindSerialForUpdate(ctx, serialID)
		if err != nil {
			return serialLookupError(err)
		}
		if serial.Status != enums.SerialStatusAssigned {
			return pkgerrors.New(pkgerrors.CodeStateConflict, msgSerialNotAssigned)
		}

		reservation, err := repo.FindAssignedReservationBySerial(ctx, serial.SerialNumber)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "no assigned reservation references this serial")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup reservation")
		}
		if err := repo.UpdateReservationStatus(ctx, reservation.ID, enums.ReservationStatusReserved, ""); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "revert reservation")
		}

		serial.Status = enums.SerialStatusAvailable
		serial.ClientID = nil
		serial.AssignedByID = nil
		serial.AssignedAt = nil
		s.appendHistory(serial, fmt.Sprintf("liberated by user %s", actor))

		if err := repo.SaveSerial(ctx, serial); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save serial")
		}
		result = serial
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncAssignment("liberate")
	return FromModel(result), nil
}

func (s *service) Sell(ctx context.Context, serialID, actor uuid.UUID) (*SerialDTO, error) {
	var result *models.WeaponSerial
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		serial, err := repo.FindSerialForUpdate(ctx, serialID)
		if err != nil {
			return serialLookupError(err)
		}
		if serial.Status != enums.SerialStatusAssigned {
			return pkgerrors.New(pkgerrors.CodeStateConflict, msgSerialNotAssigned)
		}

		reservation, err := repo.FindAssignedReservationBySerial(ctx, serial.SerialNumber)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "no assigned reservation references this serial")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup reservation")
		}
		if err := repo.UpdateReservationStatus(ctx, reservation.ID, enums.ReservationStatusSold, serial.SerialNumber); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark reservation sold")
		}

		serial.Status = enums.SerialStatusSold
		s.appendHistory(serial, fmt.Sprintf("sold, recorded by user %s", actor))

		if err := repo.SaveSerial(ctx, serial); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save serial")
		}
		result = serial
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncAssignment("sell")
	return FromModel(result), nil
}

// SellAssignedByClient closes out every serial assigned to the client inside
// the caller's transaction, marking each paired reservation sold. It backs
// membership completion, where the client's whole allocation settles at once.
func (s *service) SellAssignedByClient(ctx context.Context, tx *gorm.DB, clientID uuid.UUID) error {
	repo := s.repo.WithTx(tx)

	rows, err := repo.ListAssignedSerialsByClientForUpdate(ctx, clientID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list assigned serials")
	}
	for i := range rows {
		serial := &rows[i]

		reservation, err := repo.FindAssignedReservationBySerial(ctx, serial.SerialNumber)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "no assigned reservation references this serial")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup reservation")
		}
		if err := repo.UpdateReservationStatus(ctx, reservation.ID, enums.ReservationStatusSold, serial.SerialNumber); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark reservation sold")
		}

		serial.Status = enums.SerialStatusSold
		s.appendHistory(serial, "sold on membership completion")

		if err := repo.SaveSerial(ctx, serial); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save serial")
		}
		s.metrics.IncAssignment("sell")
	}
	return nil
}

func (s *service) Retire(ctx context.Context, serialID uuid.UUID, reason string, actor uuid.UUID) (*SerialDTO, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, msgRetireReasonRequired)
	}

	var result *models.WeaponSerial
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		serial, err := repo.FindSerialForUpdate(ctx, serialID)
		if err != nil {
			return serialLookupError(err)
		}
		if !serial.Status.CanTransitionTo(enums.SerialStatusRetired) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "serial is already retired")
		}

		// An assigned serial keeps its reservation consistent: retiring the
		// unit releases the reservation back to reserved.
		if serial.Status == enums.SerialStatusAssigned {
			reservation, err := repo.FindAssignedReservationBySerial(ctx, serial.SerialNumber)
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup reservation")
			}
			if reservation != nil {
				if err := repo.UpdateReservationStatus(ctx, reservation.ID, enums.ReservationStatusReserved, ""); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "revert reservation")
				}
			}
		}

		serial.Status = enums.SerialStatusRetired
		serial.ClientID = nil
		serial.AssignedByID = nil
		serial.AssignedAt = nil
		s.appendHistory(serial, fmt.Sprintf("retired by user %s: %s", actor, reason))

		if err := repo.SaveSerial(ctx, serial); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save serial")
		}
		if err := repo.AdjustStock(ctx, serial.WeaponID, -1); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "adjust stock")
		}
		result = serial
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncAssignment("retire")
	return FromModel(result), nil
}

func (s *service) GetSerial(ctx context.Context, id uuid.UUID) (*SerialDTO, error) {
	serial, err := s.repo.FindSerial(ctx, id)
	if err != nil {
		return nil, serialLookupError(err)
	}
	return FromModel(serial), nil
}

func (s *service) ListByGroup(ctx context.Context, groupID uuid.UUID) ([]SerialDTO, error) {
	rows, err := s.repo.ListSerialsByGroup(ctx, groupID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list serials")
	}
	return toDTOs(rows), nil
}

func (s *service) ListByClient(ctx context.Context, clientID uuid.UUID) ([]SerialDTO, error) {
	rows, err := s.repo.ListSerialsByClient(ctx, clientID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list serials")
	}
	return toDTOs(rows), nil
}

// appendHistory adds one timestamped line to the serial's audit trail.
func (s *service) appendHistory(serial *models.WeaponSerial, entry string) {
	line := fmt.Sprintf("%s %s", s.now().UTC().Format(time.RFC3339), entry)
	if serial.History == "" {
		serial.History = line
		return
	}
	serial.History = serial.History + "\n" + line
}

func serialLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "serial not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup serial")
}

func toDTOs(rows []models.WeaponSerial) []SerialDTO {
	dtos := make([]SerialDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *FromModel(&rows[i]))
	}
	return dtos
}
