package enums

import "fmt"

// SeatStatus tracks occupancy of a physical seat at a location.
type SeatStatus string

const (
	SeatStatusVacant   SeatStatus = "vacant"
	SeatStatusOccupied SeatStatus = "occupied"
)

var validSeatStatuses = []SeatStatus{
	SeatStatusVacant,
	SeatStatusOccupied,
}

// String implements fmt.Stringer.
func (s SeatStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is known.
func (s SeatStatus) IsValid() bool {
	for _, candidate := range validSeatStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSeatStatus converts raw input into a SeatStatus.
func ParseSeatStatus(value string) (SeatStatus, error) {
	for _, candidate := range validSeatStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid seat status %q", value)
}
