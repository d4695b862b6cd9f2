package enums

import "fmt"

// SerialStatus maps to the serial_status enum in Postgres. A serial identifies
// one physical weapon unit; retirement is reachable from every state and is
// terminal.
type SerialStatus string

const (
	SerialStatusAvailable SerialStatus = "available"
	SerialStatusAssigned  SerialStatus = "assigned"
	SerialStatusSold      SerialStatus = "sold"
	SerialStatusRetired   SerialStatus = "retired"
)

var validSerialStatuses = []SerialStatus{
	SerialStatusAvailable,
	SerialStatusAssigned,
	SerialStatusSold,
	SerialStatusRetired,
}

var serialStatusTransitions = map[SerialStatus][]SerialStatus{
	SerialStatusAvailable: {SerialStatusAssigned, SerialStatusRetired},
	SerialStatusAssigned:  {SerialStatusAvailable, SerialStatusSold, SerialStatusRetired},
	SerialStatusSold:      {SerialStatusRetired},
	SerialStatusRetired:   {},
}

// String implements fmt.Stringer.
func (s SerialStatus) String() string {
	return string(s)
}

// IsValid reports whether the value matches the canonical serial_status enum.
func (s SerialStatus) IsValid() bool {
	for _, candidate := range validSerialStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether the transition table allows moving to next.
func (s SerialStatus) CanTransitionTo(next SerialStatus) bool {
	for _, allowed := range serialStatusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ParseSerialStatus converts raw input into SerialStatus.
func ParseSerialStatus(value string) (SerialStatus, error) {
	for _, candidate := range validSerialStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid serial status %q", value)
}
