package enums

import "fmt"

// MembershipStatus maps to the membership_status enum in Postgres. It tracks a
// client's passage through one import group independently of the group stage.
type MembershipStatus string

const (
	MembershipStatusPending    MembershipStatus = "pending"
	MembershipStatusConfirmed  MembershipStatus = "confirmed"
	MembershipStatusApproved   MembershipStatus = "approved"
	MembershipStatusInProgress MembershipStatus = "in_progress"
	MembershipStatusCompleted  MembershipStatus = "completed"
	MembershipStatusCancelled  MembershipStatus = "cancelled"
)

var validMembershipStatuses = []MembershipStatus{
	MembershipStatusPending,
	MembershipStatusConfirmed,
	MembershipStatusApproved,
	MembershipStatusInProgress,
	MembershipStatusCompleted,
	MembershipStatusCancelled,
}

var membershipStatusTransitions = map[MembershipStatus][]MembershipStatus{
	MembershipStatusPending:    {MembershipStatusConfirmed, MembershipStatusCancelled},
	MembershipStatusConfirmed:  {MembershipStatusApproved, MembershipStatusCancelled},
	MembershipStatusApproved:   {MembershipStatusInProgress, MembershipStatusCancelled},
	MembershipStatusInProgress: {MembershipStatusCompleted, MembershipStatusCancelled},
	MembershipStatusCompleted:  {},
	MembershipStatusCancelled:  {},
}

// ActiveMembershipStatuses are the statuses that occupy the client's single
// membership slot and count toward quota occupancy.
var ActiveMembershipStatuses = []MembershipStatus{
	MembershipStatusPending,
	MembershipStatusConfirmed,
	MembershipStatusApproved,
	MembershipStatusInProgress,
}

// String implements fmt.Stringer.
func (m MembershipStatus) String() string {
	return string(m)
}

// IsValid reports whether the value matches the canonical membership_status enum.
func (m MembershipStatus) IsValid() bool {
	for _, candidate := range validMembershipStatuses {
		if candidate == m {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed.
func (m MembershipStatus) IsTerminal() bool {
	return m == MembershipStatusCompleted || m == MembershipStatusCancelled
}

// IsCountable reports whether the membership occupies group capacity.
func (m MembershipStatus) IsCountable() bool {
	return !m.IsTerminal()
}

// CanTransitionTo reports whether the transition table allows moving to next.
func (m MembershipStatus) CanTransitionTo(next MembershipStatus) bool {
	for _, allowed := range membershipStatusTransitions[m] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ParseMembershipStatus converts raw input into MembershipStatus.
func ParseMembershipStatus(value string) (MembershipStatus, error) {
	for _, candidate := range validMembershipStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid membership status %q", value)
}
