package enums

import "fmt"

// ReservationStatus maps to the reservation_status enum in Postgres. A
// reservation is a client's claim on a weapon model before a physical serial
// is attached.
type ReservationStatus string

const (
	ReservationStatusReserved  ReservationStatus = "reserved"
	ReservationStatusAssigned  ReservationStatus = "assigned"
	ReservationStatusSold      ReservationStatus = "sold"
	ReservationStatusCancelled ReservationStatus = "cancelled"
)

var validReservationStatuses = []ReservationStatus{
	ReservationStatusReserved,
	ReservationStatusAssigned,
	ReservationStatusSold,
	ReservationStatusCancelled,
}

var reservationStatusTransitions = map[ReservationStatus][]ReservationStatus{
	ReservationStatusReserved:  {ReservationStatusAssigned, ReservationStatusCancelled},
	ReservationStatusAssigned:  {ReservationStatusReserved, ReservationStatusSold},
	ReservationStatusSold:      {},
	ReservationStatusCancelled: {},
}

// String implements fmt.Stringer.
func (r ReservationStatus) String() string {
	return string(r)
}

// IsValid reports whether the value matches the canonical reservation_status enum.
func (r ReservationStatus) IsValid() bool {
	for _, candidate := range validReservationStatuses {
		if candidate == r {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether the transition table allows moving to next.
// assigned -> reserved is the liberation path: releasing a serial reverts the
// reservation with it.
func (r ReservationStatus) CanTransitionTo(next ReservationStatus) bool {
	for _, allowed := range reservationStatusTransitions[r] {
		if allowed == next {
			return true
		}
	}
	return false
}

// CountsTowardQuota reports whether the reservation's quantity occupies group
// category capacity.
func (r ReservationStatus) CountsTowardQuota() bool {
	return r == ReservationStatusReserved || r == ReservationStatusAssigned
}

// ParseReservationStatus converts raw input into ReservationStatus.
func ParseReservationStatus(value string) (ReservationStatus, error) {
	for _, candidate := range validReservationStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid reservation status %q", value)
}
