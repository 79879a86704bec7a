package enums

import "fmt"

// ProductStatus marks whether a catalog entry may be sold.
type ProductStatus string

const (
	ProductStatusActive   ProductStatus = "active"
	ProductStatusInactive ProductStatus = "inactive"
)

// IsValid reports whether the value is a known ProductStatus.
func (s ProductStatus) IsValid() bool {
	return s == ProductStatusActive || s == ProductStatusInactive
}

// ParseProductStatus converts raw input into ProductStatus.
func ParseProductStatus(value string) (ProductStatus, error) {
	switch ProductStatus(value) {
	case ProductStatusActive:
		return ProductStatusActive, nil
	case ProductStatusInactive:
		return ProductStatusInactive, nil
	}
	return "", fmt.Errorf("invalid product status %q", value)
}
