package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/armeriaops/armimport-backend/pkg/enums"
)

// Client is a buyer going through onboarding. The identification pair
// (type, number) is unique at the storage layer; rows are soft-stated via
// Status and never hard-deleted.
type Client struct {
	ID                   uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	IdentificationTypeID uuid.UUID            `gorm:"column:identification_type_id;type:uuid;not null;uniqueIndex:idx_clients_identification"`
	IdentificationNumber string               `gorm:"column:identification_number;not null;uniqueIndex:idx_clients_identification"`
	FirstName            string               `gorm:"column:first_name"`
	LastName             string               `gorm:"column:last_name"`
	CompanyName          string               `gorm:"column:company_name"`
	BirthDate            *time.Time           `gorm:"column:birth_date"`
	Email                string               `gorm:"column:email;not null"`
	EmailVerified        bool                 `gorm:"column:email_verified;not null;default:false"`
	Phone                string               `gorm:"column:phone"`
	ProvinceID           *uuid.UUID           `gorm:"column:province_id;type:uuid"`
	CantonID             *uuid.UUID           `gorm:"column:canton_id;type:uuid"`
	Address              string               `gorm:"column:address"`
	Status               enums.ClientStatus   `gorm:"column:status;type:client_status;not null;default:'pending'"`
	Type                 enums.ClientType     `gorm:"column:type;type:client_type;not null"`
	MilitaryStatus       enums.MilitaryStatus `gorm:"column:military_status;type:military_status"`
	VendorID             uuid.UUID            `gorm:"column:vendor_id;type:uuid;not null"`
	Phantom              bool                 `gorm:"column:phantom;not null;default:false"`
	CreatedAt            time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// FullName returns the display name for natural persons or the company name.
func (c Client) FullName() string {
	if c.Type == enums.ClientTypeCompany {
		return c.CompanyName
	}
	if c.FirstName == "" {
		return c.LastName
	}
	return c.FirstName + " " + c.LastName
}
