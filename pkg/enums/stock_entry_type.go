package enums

import "fmt"

// StockEntryType is the direction of a stock ledger movement.
type StockEntryType string

const (
	StockEntryTypeIn  StockEntryType = "in"
	StockEntryTypeOut StockEntryType = "out"
)

var validStockEntryTypes = []StockEntryType{
	StockEntryTypeIn,
	StockEntryTypeOut,
}

// IsValid reports whether the value matches the canonical entry type enum.
func (t StockEntryType) IsValid() bool {
	for _, candidate := range validStockEntryTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseStockEntryType converts raw input into StockEntryType.
func ParseStockEntryType(value string) (StockEntryType, error) {
	for _, candidate := range validStockEntryTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stock entry type %q", value)
}
