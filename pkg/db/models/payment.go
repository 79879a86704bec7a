package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jomarvillega/stockroom-backend/pkg/enums"
)

// Payment records how a completed order was settled. Exactly one row exists
// per completed order; payment capture happens at the counter, not here.
type Payment struct {
	ID              uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID         uuid.UUID           `gorm:"column:order_id;type:uuid;not null;uniqueIndex"`
	Method          enums.PaymentMethod `gorm:"column:method;type:text;not null"`
	Amount          decimal.Decimal     `gorm:"column:amount;type:numeric(10,2);not null"`
	ReferenceNumber *string             `gorm:"column:reference_number"`
	PaymentDate     time.Time           `gorm:"column:payment_date;not null"`
	ProcessedBy     *uuid.UUID          `gorm:"column:processed_by;type:uuid"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime"`
}
