package models

// OrderCounter backs order-number generation. One row per year, incremented
// atomically inside the order-creation transaction.
type OrderCounter struct {
	Year      int   `gorm:"column:year;primaryKey"`
	LastValue int64 `gorm:"column:last_value;not null;default:0"`
}
