package enums

import "fmt"

// DocumentStatus maps to the document_status enum in Postgres.
type DocumentStatus string

const (
	DocumentStatusPending  DocumentStatus = "pending"
	DocumentStatusApproved DocumentStatus = "approved"
	DocumentStatusRejected DocumentStatus = "rejected"
)

var validDocumentStatuses = []DocumentStatus{
	DocumentStatusPending,
	DocumentStatusApproved,
	DocumentStatusRejected,
}

// String implements fmt.Stringer.
func (d DocumentStatus) String() string {
	return string(d)
}

// IsValid reports whether the value matches the canonical document_status enum.
func (d DocumentStatus) IsValid() bool {
	for _, candidate := range validDocumentStatuses {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDocumentStatus converts raw input into DocumentStatus.
func ParseDocumentStatus(value string) (DocumentStatus, error) {
	for _, candidate := range validDocumentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid document status %q", value)
}

// DocumentKind maps to the document_kind enum in Postgres.
type DocumentKind string

const (
	DocumentKindIdentification  DocumentKind = "identification"
	DocumentKindWeaponPermit    DocumentKind = "weapon_permit"
	DocumentKindMilitaryCard    DocumentKind = "military_card"
	DocumentKindCompanyCharter  DocumentKind = "company_charter"
	DocumentKindSportFederation DocumentKind = "sport_federation"
)

var validDocumentKinds = []DocumentKind{
	DocumentKindIdentification,
	DocumentKindWeaponPermit,
	DocumentKindMilitaryCard,
	DocumentKindCompanyCharter,
	DocumentKindSportFederation,
}

// String implements fmt.Stringer.
func (d DocumentKind) String() string {
	return string(d)
}

// IsValid reports whether the value matches the canonical document_kind enum.
func (d DocumentKind) IsValid() bool {
	for _, candidate := range validDocumentKinds {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDocumentKind converts raw input into DocumentKind.
func ParseDocumentKind(value string) (DocumentKind, error) {
	for _, candidate := range validDocumentKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid document kind %q", value)
}

// RequiredDocumentKinds returns the kinds a client of the given type must have
// approved before joining a group manually.
func RequiredDocumentKinds(clientType ClientType) []DocumentKind {
	switch clientType {
	case ClientTypeMilitary:
		return []DocumentKind{DocumentKindIdentification, DocumentKindMilitaryCard}
	case ClientTypeCompany:
		return []DocumentKind{DocumentKindIdentification, DocumentKindCompanyCharter}
	case ClientTypeAthlete:
		return []DocumentKind{DocumentKindIdentification, DocumentKindSportFederation}
	default:
		return []DocumentKind{DocumentKindIdentification, DocumentKindWeaponPermit}
	}
}
