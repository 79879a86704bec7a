package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jomarvillega/stockroom-backend/pkg/enums"
)

// Order is the fulfillment aggregate root. VoidedFrom records the status the
// order held when it was voided; a nil value means the order was never voided,
// so a cancelled order with VoidedFrom set is a reversed sale while a
// cancelled order without it was simply never fulfilled.
type Order struct {
	ID                  uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber         string             `gorm:"column:order_number;not null;uniqueIndex"`
	CustomerName        *string            `gorm:"column:customer_name"`
	ServiceType         string             `gorm:"column:service_type;not null;default:'Other'"`
	Notes               *string            `gorm:"column:notes"`
	PreferredPickupDate *time.Time         `gorm:"column:preferred_pickup_date"`
	TotalAmount         decimal.Decimal    `gorm:"column:total_amount;type:numeric(10,2);not null;default:0"`
	Status              enums.OrderStatus  `gorm:"column:status;type:text;not null;default:'pending'"`
	VoidedFrom          *enums.OrderStatus `gorm:"column:voided_from;type:text"`
	VoidReason          *string            `gorm:"column:void_reason"`
	VoidedBy            *uuid.UUID         `gorm:"column:voided_by;type:uuid"`
	VoidedAt            *time.Time         `gorm:"column:voided_at"`
	CompletedDate       *time.Time         `gorm:"column:completed_date"`
	Items               []OrderItem        `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	Payment             *Payment           `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt           time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// IsVoided reports whether the order has been administratively reversed.
func (o *Order) IsVoided() bool {
	return o != nil && o.VoidedFrom != nil
}
