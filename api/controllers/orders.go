package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jomarvillega/stockroom-backend/api/middleware"
	"github.com/jomarvillega/stockroom-backend/api/responses"
	"github.com/jomarvillega/stockroom-backend/api/validators"
	internalorders "github.com/jomarvillega/stockroom-backend/internal/orders"
	"github.com/jomarvillega/stockroom-backend/pkg/enums"
	pkgerrors "github.com/jomarvillega/stockroom-backend/pkg/errors"
	"github.com/jomarvillega/stockroom-backend/pkg/logger"
	"github.com/jomarvillega/stockroom-backend/pkg/pagination"
)

type orderItemRequest struct {
	ProductID string          `json:"product_id" validate:"required,uuid"`
	Quantity  int             `json:"quantity" validate:"required,min=1"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Notes     *string         `json:"notes,omitempty" validate:"omitempty,max=500"`
}

type paymentRequest struct {
	Method          string          `json:"method" validate:"required,oneof=cash gcash"`
	Amount          decimal.Decimal `json:"amount"`
	ReferenceNumber *string         `json:"reference_number,omitempty" validate:"omitempty,max=100"`
}

type createOrderRequest struct {
	CustomerName        *string            `json:"customer_name,omitempty" validate:"omitempty,max=150"`
	Notes               *string            `json:"notes,omitempty" validate:"omitempty,max=1000"`
	PreferredPickupDate *time.Time         `json:"preferred_pickup_date,omitempty"`
	Items               []orderItemRequest `json:"items" validate:"required,min=1,dive"`
	Payment             *paymentRequest    `json:"payment,omitempty"`
}

type voidOrderRequest struct {
	Reason string `json:"reason" validate:"required,max=500"`
}

// CreateOrder handles both counter flows: without a payment block the order
// parks as pending, with one it is sold and completed on the spot.
func CreateOrder(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := internalorders.CreateOrderInput{
			CustomerName:        req.CustomerName,
			Notes:               req.Notes,
			PreferredPickupDate: req.PreferredPickupDate,
			ActorUserID:         actorFromContext(r),
		}
		for _, item := range req.Items {
			productID, err := uuid.Parse(item.ProductID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
				return
			}
			input.Items = append(input.Items, internalorders.LineItemInput{
				ProductID: productID,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
				Notes:     item.Notes,
			})
		}
		if req.Payment != nil {
			input.Payment = &internalorders.PaymentInput{
				Method:          enums.PaymentMethod(req.Payment.Method),
				Amount:          req.Payment.Amount,
				ReferenceNumber: req.Payment.ReferenceNumber,
			}
		}

		receipt, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, receipt)
	}
}

// CompleteOrder settles a parked order.
func CompleteOrder(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderId"), "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req paymentRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		receipt, err := svc.Complete(r.Context(), internalorders.CompleteOrderInput{
			OrderID: orderID,
			Payment: internalorders.PaymentInput{
				Method:          enums.PaymentMethod(req.Method),
				Amount:          req.Amount,
				ReferenceNumber: req.ReferenceNumber,
			},
			ActorUserID: actorFromContext(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, receipt)
	}
}

// VoidOrder reverses a sale and returns its stock.
func VoidOrder(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderId"), "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req voidOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		view, err := svc.Void(r.Context(), internalorders.VoidOrderInput{
			OrderID:     orderID,
			Reason:      req.Reason,
			ActorUserID: actorFromContext(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// DeleteOrder removes an unfulfilled order.
func DeleteOrder(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderId"), "orderId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), orderID, actorFromContext(r)); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// OrderDetail returns one order with its items and payment.
func OrderDetail(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(chi.URLParam(r, "orderId"))
		if orderID, err := uuid.Parse(raw); err == nil {
			view, err := svc.Get(r.Context(), orderID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, view)
			return
		}

		// Non-uuid path segments are treated as an order number lookup, which
		// is what the receipt-scan flow sends.
		view, err := svc.GetByOrderNumber(r.Context(), raw)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

// ListOrders returns a cursor page of orders.
func ListOrders(svc internalorders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		params := pagination.Params{
			Limit:  limit,
			Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
		}

		filters := internalorders.ListFilters{
			OrderNumber: validators.SanitizeString(r.URL.Query().Get("order_number"), 64),
		}
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseOrderStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
				return
			}
			filters.Status = &status
		}
		voided, err := validators.ParseQueryBool(r, "voided")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters.Voided = voided
		completed, err := validators.ParseQueryBool(r, "completed_only")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if completed != nil {
			filters.CompletedOnly = *completed
		}

		page, err := svc.List(r.Context(), params, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

func actorFromContext(r *http.Request) uuid.UUID {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil
	}
	return id
}
