package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jomarvillega/stockroom-backend/pkg/enums"
)

// Product is a catalog entry. Historical order items keep a denormalized name
// snapshot so deleting a product never rewrites an order.
type Product struct {
	ID           uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string              `gorm:"column:name;not null"`
	Barcode      *string             `gorm:"column:barcode;uniqueIndex"`
	CategoryName string              `gorm:"column:category_name;not null;default:'Other'"`
	Price        decimal.Decimal     `gorm:"column:price;type:numeric(10,2);not null"`
	Cost         decimal.Decimal     `gorm:"column:cost;type:numeric(10,2);not null;default:0"`
	Status       enums.ProductStatus `gorm:"column:status;type:text;not null;default:'active'"`
	Inventory    *Inventory          `gorm:"foreignKey:ProductID"`
	CreatedAt    time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
