package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem snapshots one cart line. ProductID is nullable so catalog
// deletions never cascade into order history; ProductName keeps the label.
type OrderItem struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID     uuid.UUID       `gorm:"column:order_id;type:uuid;not null"`
	ProductID   *uuid.UUID      `gorm:"column:product_id;type:uuid"`
	ProductName string          `gorm:"column:product_name;not null"`
	Quantity    int             `gorm:"column:quantity;not null"`
	UnitPrice   decimal.Decimal `gorm:"column:unit_price;type:numeric(10,2);not null"`
	Subtotal    decimal.Decimal `gorm:"column:subtotal;type:numeric(10,2);not null"`
	Notes       *string         `gorm:"column:notes"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
}
