package clients

import (
	"time"

	"github.com/google/uuid"

	"github.com/armeriaops/armimport-backend/pkg/db/models"
	"github.com/armeriaops/armimport-backend/pkg/enums"
)

// ClientDTO is the transport shape for a client.
type ClientDTO struct {
	ID                   uuid.UUID            `json:"id"`
	IdentificationTypeID uuid.UUID            `json:"identification_type_id"`
	IdentificationNumber string               `json:"identification_number"`
	FirstName            string               `json:"first_name,omitempty"`
	LastName             string               `json:"last_name,omitempty"`
	CompanyName          string               `json:"company_name,omitempty"`
	BirthDate            *time.Time           `json:"birth_date,omitempty"`
	Email                string               `json:"email"`
	EmailVerified        bool                 `json:"email_verified"`
	Phone                string               `json:"phone,omitempty"`
	ProvinceID           *uuid.UUID           `json:"province_id,omitempty"`
	CantonID             *uuid.UUID           `json:"canton_id,omitempty"`
	Address              string               `json:"address,omitempty"`
	Status               enums.ClientStatus   `json:"status"`
	Type                 enums.ClientType     `json:"type"`
	MilitaryStatus       enums.MilitaryStatus `json:"military_status,omitempty"`
	VendorID             uuid.UUID            `json:"vendor_id"`
	Phantom              bool                 `json:"phantom"`
	CreatedAt            time.Time            `json:"created_at"`
	UpdatedAt            time.Time            `json:"updated_at"`
}

// CreateClientDTO carries the intake fields for a new client.
type CreateClientDTO struct {
	IdentificationTypeID uuid.UUID            `json:"identification_type_id" validate:"required"`
	IdentificationNumber string               `json:"identification_number" validate:"required"`
	FirstName            string               `json:"first_name,omitempty"`
	LastName             string               `json:"last_name,omitempty"`
	CompanyName          string               `json:"company_name,omitempty"`
	BirthDate            *time.Time           `json:"birth_date,omitempty"`
	Email                string               `json:"email" validate:"required,email"`
	Phone                string               `json:"phone,omitempty"`
	ProvinceID           *uuid.UUID           `json:"province_id,omitempty"`
	CantonID             *uuid.UUID           `json:"canton_id,omitempty"`
	Address              string               `json:"address,omitempty"`
	Type                 enums.ClientType     `json:"type" validate:"required"`
	MilitaryStatus       enums.MilitaryStatus `json:"military_status,omitempty"`
	Phantom              bool                 `json:"phantom,omitempty"`
}

// UpdateClientDTO carries the mutable contact fields. Identification and type
// are immutable after intake.
type UpdateClientDTO struct {
	FirstName   *string    `json:"first_name,omitempty"`
	LastName    *string    `json:"last_name,omitempty"`
	CompanyName *string    `json:"company_name,omitempty"`
	Phone       *string    `json:"phone,omitempty"`
	ProvinceID  *uuid.UUID `json:"province_id,omitempty"`
	CantonID    *uuid.UUID `json:"canton_id,omitempty"`
	Address     *string    `json:"address,omitempty"`
}

// ListFilter narrows client listings.
type ListFilter struct {
	Status   *enums.ClientStatus
	VendorID *uuid.UUID
}

// ClientsPageDTO is one page of clients plus the cursor for the next one.
type ClientsPageDTO struct {
	Items      []ClientDTO `json:"items"`
	NextCursor string      `json:"next_cursor,omitempty"`
}

func FromModel(c *models.Client) *ClientDTO {
	if c == nil {
		return nil
	}
	return &ClientDTO{
		ID:                   c.ID,
		IdentificationTypeID: c.IdentificationTypeID,
		IdentificationNumber: c.IdentificationNumber,
		FirstName:            c.FirstName,
		LastName:             c.LastName,
		CompanyName:          c.CompanyName,
		BirthDate:            c.BirthDate,
		Email:                c.Email,
		EmailVerified:        c.EmailVerified,
		Phone:                c.Phone,
		ProvinceID:           c.ProvinceID,
		CantonID:             c.CantonID,
		Address:              c.Address,
		Status:               c.Status,
		Type:                 c.Type,
		MilitaryStatus:       c.MilitaryStatus,
		VendorID:             c.VendorID,
		Phantom:              c.Phantom,
		CreatedAt:            c.CreatedAt,
		UpdatedAt:            c.UpdatedAt,
	}
}
