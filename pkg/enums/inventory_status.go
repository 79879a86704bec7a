package enums

import "fmt"

// InventoryStatus is the derived availability bucket for a product. It is
// computed from quantity vs reorder level and never stored.
type InventoryStatus string

const (
	InventoryStatusOut       InventoryStatus = "out"
	InventoryStatusLow       InventoryStatus = "low"
	InventoryStatusAvailable InventoryStatus = "available"
)

// String implements fmt.Stringer.
func (s InventoryStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known InventoryStatus.
func (s InventoryStatus) IsValid() bool {
	switch s {
	case InventoryStatusOut, InventoryStatusLow, InventoryStatusAvailable:
		return true
	default:
		return false
	}
}

// ParseInventoryStatus converts a raw string into an InventoryStatus.
func ParseInventoryStatus(value string) (InventoryStatus, error) {
	status := InventoryStatus(value)
	if !status.IsValid() {
		return "", fmt.Errorf("invalid inventory status %q", value)
	}
	return status, nil
}
