package clients

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/armeriaops/armimport-backend/pkg/db/models"
	"github.com/armeriaops/armimport-backend/pkg/enums"
	"github.com/armeriaops/armimport-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a clients repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateClient(ctx context.Context, client *models.Client) error {
	return r.db.WithContext(ctx).Create(client).Error
}

func (r *repository) FindClient(ctx context.Context, id uuid.UUID) (*models.Client, error) {
	var client models.Client
	if err := r.db.WithContext(ctx).First(&client, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *repository) FindByIdentification(ctx context.Context, typeID uuid.UUID, number string) (*models.Client, error) {
	var client models.Client
	err := r.db.WithContext(ctx).
		Where("identification_type_id = ? AND identification_number = ?", typeID, number).
		First(&client).Error
	if err != nil {
		return nil, err
	}
	return &client, nil
}

func (r *repository) SaveClient(ctx context.Context, client *models.Client) error {
	return r.db.WithContext(ctx).Save(client).Error
}

func (r *repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.ClientStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Client{}).
		Where("id = ?", id).
		UpdateColumn("status", status).Error
}

func (r *repository) SetEmailVerified(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Client{}).
		Where("id = ?", id).
		UpdateColumn("email_verified", true).Error
}

// List returns one page of clients ordered newest first.
func (r *repository) List(ctx context.Context, cursor string, limit int, filter ListFilter) (ClientsPageDTO, error) {
	normalizedLimit := pagination.NormalizeLimit(limit)
	limitWithBuffer := pagination.LimitWithBuffer(limit)
	decodedCursor, err := pagination.ParseCursor(strings.TrimSpace(cursor))
	if err != nil {
		return ClientsPageDTO{}, err
	}

	query := r.db.WithContext(ctx).Model(&models.Client{})
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.VendorID != nil {
		query = query.Where("vendor_id = ?", *filter.VendorID)
	}
	if decodedCursor != nil {
		query = query.Where("(created_at < ?) OR (created_at = ? AND id < ?)",
			decodedCursor.CreatedAt, decodedCursor.CreatedAt, decodedCursor.ID)
	}

	var rows []models.Client
	err = query.Order("created_at DESC").Order("id DESC").Limit(limitWithBuffer).Find(&rows).Error
	if err != nil {
		return ClientsPageDTO{}, err
	}

	nextCursor := ""
	if len(rows) > normalizedLimit {
		rows = rows[:normalizedLimit]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}

	items := make([]ClientDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *FromModel(&rows[i]))
	}
	return ClientsPageDTO{Items: items, NextCursor: nextCursor}, nil
}

func (r *repository) CreateMembership(ctx context.Context, membership *models.GroupMembership) error {
	return r.db.WithContext(ctx).Create(membership).Error
}

func (r *repository) FindPendingMembership(ctx context.Context, clientID uuid.UUID) (*models.GroupMembership, error) {
	var membership models.GroupMembership
	err := r.db.WithContext(ctx).
		Where("client_id = ? AND status = ?", clientID, enums.MembershipStatusPending).
		First(&membership).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &membership, nil
}

func (r *repository) UpdateMembershipStatus(ctx context.Context, id uuid.UUID, status enums.MembershipStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.GroupMembership{}).
		Where("id = ?", id).
		UpdateColumn("status", status).Error
}

func (r *repository) FindIdentificationType(ctx context.Context, id uuid.UUID) (*models.IdentificationType, error) {
	var idType models.IdentificationType
	if err := r.db.WithContext(ctx).First(&idType, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &idType, nil
}

func (r *repository) CantonBelongsToProvince(ctx context.Context, cantonID, provinceID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Canton{}).
		Where("id = ? AND province_id = ?", cantonID, provinceID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
