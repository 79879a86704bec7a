package enums

import "fmt"

// StockReference names the operation a ledger entry was written for.
type StockReference string

const (
	StockReferenceOrder       StockReference = "order"
	StockReferenceOrderVoid   StockReference = "order_void"
	StockReferenceOrderDelete StockReference = "order_delete"
	StockReferenceRestock     StockReference = "restock"
)

var validStockReferences = []StockReference{
	StockReferenceOrder,
	StockReferenceOrderVoid,
	StockReferenceOrderDelete,
	StockReferenceRestock,
}

// IsValid reports whether the value is a known StockReference.
func (r StockReference) IsValid() bool {
	for _, candidate := range validStockReferences {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseStockReference converts raw input into StockReference.
func ParseStockReference(value string) (StockReference, error) {
	for _, candidate := range validStockReferences {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stock reference %q", value)
}
