package models

import (
	"time"

	"github.com/google/uuid"
)

// Inventory holds the current on-hand quantity per product (1:1). Quantity is
// mutated only through conditional updates so it can never go negative.
type Inventory struct {
	ProductID           uuid.UUID  `gorm:"column:product_id;type:uuid;primaryKey"`
	Quantity            int        `gorm:"column:quantity;not null;default:0"`
	ReorderLevel        int        `gorm:"column:reorder_level;not null;default:0"`
	ReorderQuantity     int        `gorm:"column:reorder_quantity;not null;default:0"`
	LastRestockDate     *time.Time `gorm:"column:last_restock_date"`
	LastRestockQuantity *int       `gorm:"column:last_restock_quantity"`
	UpdatedAt           time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
