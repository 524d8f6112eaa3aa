package enums

import "fmt"

// GrievanceStatus tracks the handling state of a member grievance.
type GrievanceStatus string

const (
	GrievanceStatusPending    GrievanceStatus = "pending"
	GrievanceStatusInProgress GrievanceStatus = "in_progress"
	GrievanceStatusResolved   GrievanceStatus = "resolved"
	GrievanceStatusRejected   GrievanceStatus = "rejected"
)

var validGrievanceStatuses = []GrievanceStatus{
	GrievanceStatusPending,
	GrievanceStatusInProgress,
	GrievanceStatusResolved,
	GrievanceStatusRejected,
}

var grievanceTransitions = map[GrievanceStatus][]GrievanceStatus{
	GrievanceStatusPending:    {GrievanceStatusInProgress, GrievanceStatusResolved, GrievanceStatusRejected},
	GrievanceStatusInProgress: {GrievanceStatusResolved, GrievanceStatusRejected},
}

// String implements fmt.Stringer.
func (s GrievanceStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is known.
func (s GrievanceStatus) IsValid() bool {
	for _, candidate := range validGrievanceStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether the status may move to next.
func (s GrievanceStatus) CanTransitionTo(next GrievanceStatus) bool {
	for _, candidate := range grievanceTransitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// ParseGrievanceStatus converts raw input into a GrievanceStatus.
func ParseGrievanceStatus(value string) (GrievanceStatus, error) {
	for _, candidate := range validGrievanceStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid grievance status %q", value)
}

// GrievancePriority ranks how urgently a grievance needs attention.
type GrievancePriority string

const (
	GrievancePriorityLow    GrievancePriority = "low"
	GrievancePriorityMedium GrievancePriority = "medium"
	GrievancePriorityHigh   GrievancePriority = "high"
)

var validGrievancePriorities = []GrievancePriority{
	GrievancePriorityLow,
	GrievancePriorityMedium,
	GrievancePriorityHigh,
}

// IsValid reports whether the value is known.
func (p GrievancePriority) IsValid() bool {
	for _, candidate := range validGrievancePriorities {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParseGrievancePriority converts raw input into a GrievancePriority.
func ParseGrievancePriority(value string) (GrievancePriority, error) {
	for _, candidate := range validGrievancePriorities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid grievance priority %q", value)
}
