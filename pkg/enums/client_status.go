package enums

import "fmt"

// ClientStatus maps to the client_status enum in Postgres. Clients are never
// hard-deleted; archiving is the terminal state.
type ClientStatus string

const (
	ClientStatusPending   ClientStatus = "pending"
	ClientStatusActive    ClientStatus = "active"
	ClientStatusSuspended ClientStatus = "suspended"
	ClientStatusArchived  ClientStatus = "archived"
)

var validClientStatuses = []ClientStatus{
	ClientStatusPending,
	ClientStatusActive,
	ClientStatusSuspended,
	ClientStatusArchived,
}

var clientStatusTransitions = map[ClientStatus][]ClientStatus{
	ClientStatusPending:   {ClientStatusActive, ClientStatusArchived},
	ClientStatusActive:    {ClientStatusSuspended, ClientStatusArchived},
	ClientStatusSuspended: {ClientStatusActive, ClientStatusArchived},
	ClientStatusArchived:  {},
}

// String implements fmt.Stringer.
func (c ClientStatus) String() string {
	return string(c)
}

// IsValid reports whether the value matches the canonical client_status enum.
func (c ClientStatus) IsValid() bool {
	for _, candidate := range validClientStatuses {
		if candidate == c {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether the transition table allows moving to next.
func (c ClientStatus) CanTransitionTo(next ClientStatus) bool {
	for _, allowed := range clientStatusTransitions[c] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ParseClientStatus converts raw input into ClientStatus.
func ParseClientStatus(value string) (ClientStatus, error) {
	for _, candidate := range validClientStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid client status %q", value)
}
