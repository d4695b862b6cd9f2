package clients

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/armeriaops/armimport-backend/pkg/config"
	"github.com/armeriaops/armimport-backend/pkg/db/models"
	"github.com/armeriaops/armimport-backend/pkg/enums"
	pkgerrors "github.com/armeriaops/armimport-backend/pkg/errors"
	"github.com/armeriaops/armimport-backend/pkg/logger"
	"github.com/armeriaops/armimport-backend/pkg/mailer"
	"github.com/armeriaops/armimport-backend/pkg/metrics"
	redisclient "github.com/armeriaops/armimport-backend/pkg/redis"
)

const minClientAge = 18

const (
	msgNoCompatibleGroup    = "no compatible import group accepts this client"
	msgIdentificationTaken  = "a client with this identification already exists"
	msgInvalidVerifyToken   = "verification token is invalid or expired"
	msgCantonProvince       = "canton does not belong to the selected province"
	msgBirthDateRequired    = "birth date is required for natural persons"
	msgUnderage             = "client must be at least 18 years old"
	msgMilitaryStatusNeeded = "military clients require a military status"
)

// Service defines the behavior needed by the clients controller.
type Service interface {
	Create(ctx context.Context, dto CreateClientDTO, vendorID uuid.UUID) (*ClientDTO, error)
	VerifyEmail(ctx context.Context, token string) (*ClientDTO, error)
	Update(ctx context.Context, id uuid.UUID, dto UpdateClientDTO) (*ClientDTO, error)
	Get(ctx context.Context, id uuid.UUID) (*ClientDTO, error)
	List(ctx context.Context, cursor string, limit int, filter ListFilter) (ClientsPageDTO, error)
	Archive(ctx context.Context, id uuid.UUID) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type groupMatcher interface {
	FindGroupForClient(ctx context.Context, client *models.Client, vendorID uuid.UUID) (*models.ImportGroup, error)
}

type tokenStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type tokenKeyer interface {
	VerificationKey(token string) string
}

type service struct {
	repo     Repository
	tx       txRunner
	matcher  groupMatcher
	tokens   tokenStore
	keyer    tokenKeyer
	mail     mailer.Sender
	logg     *logger.Logger
	metrics  *metrics.OperationMetrics
	cfg      config.VerificationConfig
	validate *validator.Validate
	now      func() time.Time
}

// ServiceParams bundles the dependencies required to build a clients service.
// Mail and Metrics are optional.
type ServiceParams struct {
	Repo    Repository
	Tx      txRunner
	Matcher groupMatcher
	Redis   *redisclient.Client
	Mail    mailer.Sender
	Logger  *logger.Logger
	Metrics *metrics.OperationMetrics
	Config  config.VerificationConfig
}

// NewService constructs a clients service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("client repository is required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	if params.Matcher == nil {
		return nil, fmt.Errorf("group matcher is required")
	}
	if params.Redis == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if params.Config.TokenTTL <= 0 {
		return nil, fmt.Errorf("verification token ttl must be positive")
	}
	return &service{
		repo:     params.Repo,
		tx:       params.Tx,
		matcher:  params.Matcher,
		tokens:   params.Redis,
		keyer:    params.Redis,
		mail:     params.Mail,
		logg:     params.Logger,
		metrics:  params.Metrics,
		cfg:      params.Config,
		validate: validator.New(),
		now:      time.Now,
	}, nil
}

// Create validates the intake, persists the client together with its
// auto-assigned pending membership in one transaction, and sends the
// verification email after commit.
func (s *service) Create(ctx context.Context, dto CreateClientDTO, vendorID uuid.UUID) (*ClientDTO, error) {
	client, err := s.buildClient(ctx, dto, vendorID)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.CreateClient(ctx, client); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create client")
		}
		if client.Phantom {
			s.metrics.IncMatching("skipped")
			return nil
		}

		group, err := s.matcher.FindGroupForClient(ctx, client, vendorID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "match group")
		}
		if group == nil {
			s.metrics.IncMatching("unmatched")
			return pkgerrors.New(pkgerrors.CodeValidation, msgNoCompatibleGroup)
		}
		membership := &models.GroupMembership{
			ClientID: client.ID,
			GroupID:  group.ID,
			Status:   enums.MembershipStatusPending,
		}
		if err := repo.CreateMembership(ctx, membership); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create membership")
		}
		s.metrics.IncMatching("matched")
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.sendVerification(ctx, client)
	return FromModel(client), nil
}

// VerifyEmail consumes the token, marks the client verified, and promotes a
// single pending membership to confirmed.
func (s *service) VerifyEmail(ctx context.Context, token string) (*ClientDTO, error) {
	if token == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, msgInvalidVerifyToken)
	}
	key := s.keyer.VerificationKey(token)
	raw, err := s.tokens.Get(ctx, key)
	if err != nil {
		if errors.Is(err, redislib.Nil) || errors.Is(err, redisclient.ErrNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, msgInvalidVerifyToken)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read verification token")
	}
	clientID, err := uuid.Parse(raw)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, msgInvalidVerifyToken)
	}

	client, err := s.findClient(ctx, clientID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SetEmailVerified(ctx, clientID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark email verified")
	}
	client.EmailVerified = true

	pending, err := s.repo.FindPendingMembership(ctx, clientID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup pending membership")
	}
	if pending != nil {
		if err := s.repo.UpdateMembershipStatus(ctx, pending.ID, enums.MembershipStatusConfirmed); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "confirm membership")
		}
	}

	if err := s.tokens.Del(ctx, key); err != nil {
		s.logg.Warn(ctx, fmt.Sprintf("delete verification token failed: %v", err))
	}
	return FromModel(client), nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, dto UpdateClientDTO) (*ClientDTO, error) {
	client, err := s.findClient(ctx, id)
	if err != nil {
		return nil, err
	}

	if dto.FirstName != nil {
		client.FirstName = *dto.FirstName
	}
	if dto.LastName != nil {
		client.LastName = *dto.LastName
	}
	if dto.CompanyName != nil {
		client.CompanyName = *dto.CompanyName
	}
	if dto.Phone != nil {
		client.Phone = *dto.Phone
	}
	if dto.ProvinceID != nil {
		client.ProvinceID = dto.ProvinceID
	}
	if dto.CantonID != nil {
		client.CantonID = dto.CantonID
	}
	if dto.Address != nil {
		client.Address = *dto.Address
	}

	if client.CantonID != nil && client.ProvinceID != nil {
		ok, err := s.repo.CantonBelongsToProvince(ctx, *client.CantonID, *client.ProvinceID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check canton")
		}
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, msgCantonProvince)
		}
	}

	if err := s.repo.SaveClient(ctx, client); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update client")
	}
	return FromModel(client), nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*ClientDTO, error) {
	client, err := s.findClient(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(client), nil
}

func (s *service) List(ctx context.Context, cursor string, limit int, filter ListFilter) (ClientsPageDTO, error) {
	page, err := s.repo.List(ctx, cursor, limit, filter)
	if err != nil {
		return ClientsPageDTO{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list clients")
	}
	return page, nil
}

func (s *service) Archive(ctx context.Context, id uuid.UUID) error {
	client, err := s.findClient(ctx, id)
	if err != nil {
		return err
	}
	if client.Status == enums.ClientStatusArchived {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "client is already archived")
	}
	if err := s.repo.UpdateStatus(ctx, id, enums.ClientStatusArchived); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "archive client")
	}
	return nil
}

func (s *service) buildClient(ctx context.Context, dto CreateClientDTO, vendorID uuid.UUID) (*models.Client, error) {
	if !dto.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid client type %q", dto.Type))
	}
	if dto.Type == enums.ClientTypeMilitary && !dto.MilitaryStatus.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, msgMilitaryStatusNeeded)
	}
	if err := s.validate.Var(dto.Email, "required,email"); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid email %q", dto.Email))
	}

	idType, err := s.repo.FindIdentificationType(ctx, dto.IdentificationTypeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown identification type")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup identification type")
	}
	if err := ValidateIdentification(idType.Code, dto.IdentificationNumber); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}

	existing, err := s.repo.FindByIdentification(ctx, dto.IdentificationTypeID, dto.IdentificationNumber)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check identification")
	}
	if existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, msgIdentificationTaken)
	}

	if dto.Type != enums.ClientTypeCompany {
		if dto.BirthDate == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, msgBirthDateRequired)
		}
		if age(*dto.BirthDate, s.now().UTC()) < minClientAge {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, msgUnderage)
		}
	}

	if dto.CantonID != nil && dto.ProvinceID != nil {
		ok, err := s.repo.CantonBelongsToProvince(ctx, *dto.CantonID, *dto.ProvinceID)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check canton")
		}
		if !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, msgCantonProvince)
		}
	}

	return &models.Client{
		IdentificationTypeID: dto.IdentificationTypeID,
		IdentificationNumber: dto.IdentificationNumber,
		FirstName:            dto.FirstName,
		LastName:             dto.LastName,
		CompanyName:          dto.CompanyName,
		BirthDate:            dto.BirthDate,
		Email:                dto.Email,
		Phone:                dto.Phone,
		ProvinceID:           dto.ProvinceID,
		CantonID:             dto.CantonID,
		Address:              dto.Address,
		Status:               enums.ClientStatusPending,
		Type:                 dto.Type,
		MilitaryStatus:       dto.MilitaryStatus,
		VendorID:             vendorID,
		Phantom:              dto.Phantom,
	}, nil
}

// sendVerification stores the token and emails the link. Runs after commit;
// failures are logged, the client can always request a resend.
func (s *service) sendVerification(ctx context.Context, client *models.Client) {
	token := uuid.NewString()
	key := s.keyer.VerificationKey(token)
	if err := s.tokens.Set(ctx, key, client.ID.String(), s.cfg.TokenTTL); err != nil {
		s.logg.Error(ctx, "store verification token failed", err)
		return
	}
	if s.mail == nil || client.Email == "" {
		return
	}
	verifyURL := fmt.Sprintf("%s/api/v1/clients/verify?token=%s", s.cfg.BaseURL, token)
	message := mailer.VerificationEmail(client.Email, client.FullName(), verifyURL)
	if err := s.mail.Send(message); err != nil {
		s.logg.Warn(ctx, fmt.Sprintf("verification email to %s failed: %v", client.Email, err))
	}
}

func (s *service) findClient(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	client, err := s.repo.FindClient(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "client not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup client")
	}
	return client, nil
}

func age(birthDate, now time.Time) int {
	years := now.Year() - birthDate.Year()
	anniversary := birthDate.AddDate(years, 0, 0)
	if anniversary.After(now) {
		years--
	}
	return years
}
