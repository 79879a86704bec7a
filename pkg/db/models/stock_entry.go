package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jomarvillega/stockroom-backend/pkg/enums"
)

// StockEntry is one immutable row of the stock ledger. Entries are only ever
// appended; a reversal is a new IN entry referencing the voided order, never
// an update of the original OUT entry.
type StockEntry struct {
	ID            uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID     uuid.UUID            `gorm:"column:product_id;type:uuid;not null;index"`
	Type          enums.StockEntryType `gorm:"column:type;type:text;not null"`
	Quantity      int                  `gorm:"column:quantity;not null"`
	UnitPrice     decimal.Decimal      `gorm:"column:unit_price;type:numeric(10,2);not null;default:0"`
	TotalAmount   decimal.Decimal      `gorm:"column:total_amount;type:numeric(10,2);not null;default:0"`
	ReferenceType enums.StockReference `gorm:"column:reference_type;type:text;not null"`
	ReferenceID   *uuid.UUID           `gorm:"column:reference_id;type:uuid;index"`
	UserID        *uuid.UUID           `gorm:"column:user_id;type:uuid"`
	Notes         *string              `gorm:"column:notes"`
	CreatedAt     time.Time            `gorm:"column:created_at;autoCreateTime"`
}
