package enums

import "fmt"

// ClientType maps to the client_type enum in Postgres.
type ClientType string

const (
	ClientTypeCivilian ClientType = "civilian"
	ClientTypeMilitary ClientType = "military"
	ClientTypeCompany  ClientType = "company"
	ClientTypeAthlete  ClientType = "athlete"
)

var validClientTypes = []ClientType{
	ClientTypeCivilian,
	ClientTypeMilitary,
	ClientTypeCompany,
	ClientTypeAthlete,
}

// String implements fmt.Stringer.
func (c ClientType) String() string {
	return string(c)
}

// IsValid reports whether the value matches the canonical client_type enum.
func (c ClientType) IsValid() bool {
	for _, candidate := range validClientTypes {
		if candidate == c {
			return true
		}
	}
	return false
}

// IsNaturalPerson reports whether the client type represents an individual
// subject to age validation.
func (c ClientType) IsNaturalPerson() bool {
	return c != ClientTypeCompany
}

// ParseClientType converts raw input into ClientType.
func ParseClientType(value string) (ClientType, error) {
	for _, candidate := range validClientTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid client type %q", value)
}

// MilitaryStatus maps to the military_status enum in Postgres. Only meaningful
// for military clients.
type MilitaryStatus string

const (
	MilitaryStatusActive  MilitaryStatus = "active"
	MilitaryStatusPassive MilitaryStatus = "passive"
)

var validMilitaryStatuses = []MilitaryStatus{
	MilitaryStatusActive,
	MilitaryStatusPassive,
}

// String implements fmt.Stringer.
func (m MilitaryStatus) String() string {
	return string(m)
}

// IsValid reports whether the value matches the canonical military_status enum.
func (m MilitaryStatus) IsValid() bool {
	for _, candidate := range validMilitaryStatuses {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseMilitaryStatus converts raw input into MilitaryStatus.
func ParseMilitaryStatus(value string) (MilitaryStatus, error) {
	for _, candidate := range validMilitaryStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid military status %q", value)
}
