package contracts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/armeriaops/armimport-backend/pkg/db/models"
	"github.com/armeriaops/armimport-backend/pkg/enums"
	pkgerrors "github.com/armeriaops/armimport-backend/pkg/errors"
	"github.com/armeriaops/armimport-backend/pkg/logger"
	"github.com/armeriaops/armimport-backend/pkg/mailer"
	"github.com/armeriaops/armimport-backend/pkg/metrics"
	"github.com/armeriaops/armimport-backend/pkg/pdf"
)

const storageScope = "contracts"

const (
	msgSerialNotAssigned  = "contract requires a serial in assigned status"
	msgSerialHasContract  = "serial already has a contract"
	msgNoActiveMembership = "client has no active group membership"
	msgNoConfirmedPayment = "client has no confirmed payment"
)

// Service defines the behavior needed by the contracts controller.
type Service interface {
	Issue(ctx context.Context, req IssueRequest, createdBy uuid.UUID) (*ContractDTO, error)
	GetContract(ctx context.Context, id uuid.UUID) (*ContractDTO, error)
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]ContractDTO, error)
	Download(ctx context.Context, id uuid.UUID) (*ContractDTO, io.ReadCloser, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type contractRenderer interface {
	RenderContract(w io.Writer, data pdf.ContractData) error
}

type fileStore interface {
	Save(scope string, entityID uuid.UUID, name string, r io.Reader) (string, error)
	Open(rel string) (io.ReadCloser, error)
}

type service struct {
	repo     Repository
	tx       txRunner
	renderer contractRenderer
	files    fileStore
	mail     mailer.Sender
	logg     *logger.Logger
	metrics  *metrics.OperationMetrics
	now      func() time.Time
}

// ServiceParams bundles the dependencies required to build a contracts
// service. Mail and Metrics are optional.
type ServiceParams struct {
	Repo     Repository
	Tx       txRunner
	Renderer contractRenderer
	Files    fileStore
	Mail     mailer.Sender
	Logger   *logger.Logger
	Metrics  *metrics.OperationMetrics
}

// NewService constructs a contracts service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("contract repository is required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	if params.Renderer == nil {
		return nil, fmt.Errorf("pdf renderer is required")
	}
	if params.Files == nil {
		return nil, fmt.Errorf("file store is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{
		repo:     params.Repo,
		tx:       params.Tx,
		renderer: params.Renderer,
		files:    params.Files,
		mail:     params.Mail,
		logg:     params.Logger,
		metrics:  params.Metrics,
		now:      time.Now,
	}, nil
}

// Issue validates the sale inside one short transaction and inserts the
// contract row. Rendering the PDF and emailing it happen after commit and
// never roll the contract back.
func (s *service) Issue(ctx context.Context, req IssueRequest, createdBy uuid.UUID) (*ContractDTO, error) {
	var contract *models.Contract
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		serial, err := repo.FindSerialForUpdate(ctx, req.SerialID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "serial not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup serial")
		}
		if serial.Status != enums.SerialStatusAssigned || serial.ClientID == nil {
			return pkgerrors.New(pkgerrors.CodeStateConflict, msgSerialNotAssigned)
		}
		clientID := *serial.ClientID

		taken, err := repo.SerialHasContract(ctx, serial.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check existing contract")
		}
		if taken {
			return pkgerrors.New(pkgerrors.CodeConflict, msgSerialHasContract)
		}

		membership, err := repo.FindActiveMembership(ctx, clientID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup membership")
		}
		if membership == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, msgNoActiveMembership)
		}

		reservation, err := repo.FindAssignedReservationBySerial(ctx, serial.SerialNumber)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "no assigned reservation references this serial")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup reservation")
		}

		paid, err := repo.HasConfirmedPayment(ctx, clientID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check payments")
		}
		if !paid {
			return pkgerrors.New(pkgerrors.CodeConflict, msgNoConfirmedPayment)
		}

		year := s.now().UTC().Year()
		issued, err := repo.CountContractsForYear(ctx, year)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count contracts")
		}

		contract = &models.Contract{
			Number:     fmt.Sprintf("CT-%d-%05d", year, issued+1),
			ClientID:   clientID,
			SerialID:   serial.ID,
			GroupID:    serial.GroupID,
			TotalPrice: reservation.Total(),
			CreatedBy:  createdBy,
		}
		if err := repo.CreateContract(ctx, contract); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create contract")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncContract()
	s.finalize(ctx, contract)
	return FromModel(contract), nil
}

func (s *service) GetContract(ctx context.Context, id uuid.UUID) (*ContractDTO, error) {
	contract, err := s.findContract(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(contract), nil
}

func (s *service) ListByClient(ctx context.Context, clientID uuid.UUID) ([]ContractDTO, error) {
	rows, err := s.repo.ListContractsByClient(ctx, clientID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list contracts")
	}
	dtos := make([]ContractDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *FromModel(&rows[i]))
	}
	return dtos, nil
}

func (s *service) Download(ctx context.Context, id uuid.UUID) (*ContractDTO, io.ReadCloser, error) {
	contract, err := s.findContract(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if contract.PDFPath == "" {
		return nil, nil, pkgerrors.New(pkgerrors.CodeStateConflict, "contract pdf has not been rendered yet")
	}
	reader, err := s.files.Open(contract.PDFPath)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "open contract pdf")
	}
	return FromModel(contract), reader, nil
}

// finalize renders and emails the contract. Every step is best-effort: the
// contract row already committed and a retry can regenerate the document.
func (s *service) finalize(ctx context.Context, contract *models.Contract) {
	data, client, err := s.buildContractData(ctx, contract)
	if err != nil {
		s.logg.Error(ctx, fmt.Sprintf("contract %s data load failed", contract.Number), err)
		return
	}

	var buf bytes.Buffer
	if err := s.renderer.RenderContract(&buf, data); err != nil {
		s.logg.Error(ctx, fmt.Sprintf("contract %s pdf render failed", contract.Number), err)
		return
	}
	path, err := s.files.Save(storageScope, contract.ID, contract.Number+".pdf", &buf)
	if err != nil {
		s.logg.Error(ctx, fmt.Sprintf("contract %s pdf store failed", contract.Number), err)
		return
	}
	if err := s.repo.SetPDFPath(ctx, contract.ID, path); err != nil {
		s.logg.Error(ctx, fmt.Sprintf("contract %s pdf path update failed", contract.Number), err)
		return
	}
	contract.PDFPath = path

	if s.mail == nil || client.Email == "" {
		return
	}
	message := mailer.ContractEmail(client.Email, client.FullName(), contract.Number, path)
	if err := s.mail.Send(message); err != nil {
		s.logg.Warn(ctx, fmt.Sprintf("contract %s email failed: %v", contract.Number, err))
		return
	}
	if err := s.repo.SetEmailedAt(ctx, contract.ID); err != nil {
		s.logg.Warn(ctx, fmt.Sprintf("contract %s emailed_at update failed: %v", contract.Number, err))
	}
}

func (s *service) buildContractData(ctx context.Context, contract *models.Contract) (pdf.ContractData, *models.Client, error) {
	client, err := s.repo.FindClient(ctx, contract.ClientID)
	if err != nil {
		return pdf.ContractData{}, nil, fmt.Errorf("load client: %w", err)
	}

	serial, err := s.repo.FindSerial(ctx, contract.SerialID)
	if err != nil {
		return pdf.ContractData{}, nil, fmt.Errorf("load serial: %w", err)
	}
	weapon, err := s.repo.FindWeapon(ctx, serial.WeaponID)
	if err != nil {
		return pdf.ContractData{}, nil, fmt.Errorf("load weapon: %w", err)
	}

	identification := client.IdentificationNumber
	if idType, err := s.repo.FindIdentificationType(ctx, client.IdentificationTypeID); err == nil {
		identification = fmt.Sprintf("%s %s", idType.Name, client.IdentificationNumber)
	}

	data := pdf.ContractData{
		Number:         contract.Number,
		Date:           contract.CreatedAt,
		ClientName:     client.FullName(),
		Identification: identification,
		Address:        client.Address,
		WeaponName:     weapon.Name,
		Caliber:        weapon.Caliber,
		Brand:          weapon.Brand,
		SerialNumber:   serial.SerialNumber,
		TotalPrice:     contract.TotalPrice,
	}
	if contract.GroupID != nil {
		if group, err := s.repo.FindGroup(ctx, *contract.GroupID); err == nil {
			data.GroupCode = group.Code
			data.LicenseNumber = group.LicenseNumber
		}
	}
	return data, client, nil
}

func (s *service) findContract(ctx context.Context, id uuid.UUID) (*models.Contract, error) {
	contract, err := s.repo.FindContract(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "contract not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup contract")
	}
	return contract, nil
}
