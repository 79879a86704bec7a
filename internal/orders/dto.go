package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jomarvillega/stockroom-backend/pkg/db/models"
	"github.com/jomarvillega/stockroom-backend/pkg/enums"
)

// LineItemInput is one requested cart line.
type LineItemInput struct {
	ProductID uuid.UUID
	Quantity  int
	UnitPrice decimal.Decimal
	Notes     *string
}

// PaymentInput carries the settlement details recorded at completion.
type PaymentInput struct {
	Method          enums.PaymentMethod
	Amount          decimal.Decimal
	ReferenceNumber *string
}

// CreateOrderInput is the full order-creation contract. A non-nil Payment
// selects the POS instant-sale path: the order completes inside the same
// transaction that created it.
type CreateOrderInput struct {
	CustomerName        *string
	Notes               *string
	PreferredPickupDate *time.Time
	Items               []LineItemInput
	Payment             *PaymentInput
	ActorUserID         uuid.UUID
}

// CompleteOrderInput transitions an existing order to completed.
type CompleteOrderInput struct {
	OrderID     uuid.UUID
	Payment     PaymentInput
	ActorUserID uuid.UUID
}

// VoidOrderInput reverses an order's stock and marks it cancelled.
type VoidOrderInput struct {
	OrderID     uuid.UUID
	Reason      string
	ActorUserID uuid.UUID
}

// Receipt is the minimal payload the POS terminal renders after a write.
type Receipt struct {
	OrderID       uuid.UUID         `json:"order_id"`
	OrderNumber   string            `json:"order_number"`
	TotalAmount   decimal.Decimal   `json:"total_amount"`
	Status        enums.OrderStatus `json:"status"`
	CompletedDate *time.Time        `json:"completed_date,omitempty"`
	CustomerName  *string           `json:"customer_name,omitempty"`
}

// OrderItemView is the wire shape of one order line.
type OrderItemView struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   *uuid.UUID      `json:"product_id,omitempty"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
	Notes       *string         `json:"notes,omitempty"`
}

// PaymentView is the wire shape of a recorded payment.
type PaymentView struct {
	Method          enums.PaymentMethod `json:"method"`
	Amount          decimal.Decimal     `json:"amount"`
	ReferenceNumber *string             `json:"reference_number,omitempty"`
	PaymentDate     time.Time           `json:"payment_date"`
}

// OrderView is the wire shape of a full order. IsVoided is derived from
// VoidedFrom so the two can never disagree.
type OrderView struct {
	ID                  uuid.UUID          `json:"id"`
	OrderNumber         string             `json:"order_number"`
	CustomerName        *string            `json:"customer_name,omitempty"`
	ServiceType         string             `json:"service_type"`
	Notes               *string            `json:"notes,omitempty"`
	PreferredPickupDate *time.Time         `json:"preferred_pickup_date,omitempty"`
	TotalAmount         decimal.Decimal    `json:"total_amount"`
	Status              enums.OrderStatus  `json:"status"`
	IsVoided            bool               `json:"is_voided"`
	VoidedFrom          *enums.OrderStatus `json:"voided_from,omitempty"`
	VoidReason          *string            `json:"void_reason,omitempty"`
	VoidedBy            *uuid.UUID         `json:"voided_by,omitempty"`
	VoidedAt            *time.Time         `json:"voided_at,omitempty"`
	CompletedDate       *time.Time         `json:"completed_date,omitempty"`
	CreatedAt           time.Time          `json:"created_at"`
	Items               []OrderItemView    `json:"items,omitempty"`
	Payment             *PaymentView       `json:"payment,omitempty"`
}

// ToOrderView maps a persisted order onto its wire shape.
func ToOrderView(order *models.Order) OrderView {
	view := OrderView{
		ID:                  order.ID,
		OrderNumber:         order.OrderNumber,
		CustomerName:        order.CustomerName,
		ServiceType:         order.ServiceType,
		Notes:               order.Notes,
		PreferredPickupDate: order.PreferredPickupDate,
		TotalAmount:         order.TotalAmount,
		Status:              order.Status,
		IsVoided:            order.IsVoided(),
		VoidedFrom:          order.VoidedFrom,
		VoidReason:          order.VoidReason,
		VoidedBy:            order.VoidedBy,
		VoidedAt:            order.VoidedAt,
		CompletedDate:       order.CompletedDate,
		CreatedAt:           order.CreatedAt,
	}
	for _, item := range order.Items {
		view.Items = append(view.Items, OrderItemView{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    item.Subtotal,
			Notes:       item.Notes,
		})
	}
	if order.Payment != nil {
		view.Payment = &PaymentView{
			Method:          order.Payment.Method,
			Amount:          order.Payment.Amount,
			ReferenceNumber: order.Payment.ReferenceNumber,
			PaymentDate:     order.Payment.PaymentDate,
		}
	}
	return view
}

// ListFilters narrows order listings. An exact OrderNumber combined with
// CompletedOnly is the void-search flow the POS uses before reversing a sale.
type ListFilters struct {
	OrderNumber   string
	Status        *enums.OrderStatus
	Voided        *bool
	CompletedOnly bool
}

// OrderPage is one cursor page of orders.
type OrderPage struct {
	Orders     []OrderView `json:"orders"`
	NextCursor *string     `json:"next_cursor,omitempty"`
}
