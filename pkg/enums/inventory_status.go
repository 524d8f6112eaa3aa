package enums

import "fmt"

// InventoryStatus tracks the physical condition of an inventory item.
type InventoryStatus string

const (
	InventoryStatusWorking          InventoryStatus = "working"
	InventoryStatusUnderMaintenance InventoryStatus = "under_maintenance"
	InventoryStatusBroken           InventoryStatus = "broken"
	InventoryStatusRetired          InventoryStatus = "retired"
)

var validInventoryStatuses = []InventoryStatus{
	InventoryStatusWorking,
	InventoryStatusUnderMaintenance,
	InventoryStatusBroken,
	InventoryStatusRetired,
}

var inventoryTransitions = map[InventoryStatus][]InventoryStatus{
	InventoryStatusWorking:          {InventoryStatusUnderMaintenance, InventoryStatusBroken, InventoryStatusRetired},
	InventoryStatusUnderMaintenance: {InventoryStatusWorking, InventoryStatusBroken, InventoryStatusRetired},
	InventoryStatusBroken:           {InventoryStatusUnderMaintenance, InventoryStatusRetired},
}

// String implements fmt.Stringer.
func (s InventoryStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is known.
func (s InventoryStatus) IsValid() bool {
	for _, candidate := range validInventoryStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether the status may move to next.
func (s InventoryStatus) CanTransitionTo(next InventoryStatus) bool {
	for _, candidate := range inventoryTransitions[s] {
		if candidate == next {
			return true
		}
	}
	return false
}

// ParseInventoryStatus converts raw input into an InventoryStatus.
func ParseInventoryStatus(value string) (InventoryStatus, error) {
	for _, candidate := range validInventoryStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid inventory status %q", value)
}
