package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/jomarvillega/stockroom-backend/api/responses"
	"github.com/jomarvillega/stockroom-backend/api/validators"
	internalinventory "github.com/jomarvillega/stockroom-backend/internal/inventory"
	"github.com/jomarvillega/stockroom-backend/internal/ledger"
	"github.com/jomarvillega/stockroom-backend/pkg/enums"
	pkgerrors "github.com/jomarvillega/stockroom-backend/pkg/errors"
	"github.com/jomarvillega/stockroom-backend/pkg/logger"
)

type restockRequest struct {
	Quantity int     `json:"quantity" validate:"required,min=1"`
	Notes    *string `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// Restock records a manual stock intake for one product.
func Restock(svc internalinventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.ParsePathUUID(chi.URLParam(r, "productId"), "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req restockRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		inv, err := svc.Restock(r.Context(), internalinventory.RestockInput{
			ProductID:   productID,
			Quantity:    req.Quantity,
			Notes:       req.Notes,
			ActorUserID: actorFromContext(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, inv)
	}
}

// ListStock returns all products with their on-hand quantity and derived status.
func ListStock(svc internalinventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var filter *enums.InventoryStatus
		if raw := strings.TrimSpace(r.URL.Query().Get("status")); raw != "" {
			status, err := enums.ParseInventoryStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter"))
				return
			}
			filter = &status
		}

		views, err := svc.List(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, views)
	}
}

// StockMovements returns the recent ledger entries for one product.
func StockMovements(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.ParsePathUUID(chi.URLParam(r, "productId"), "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 50, 1, 500)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entries, err := svc.Movements(r.Context(), productID, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.Summary(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"entries": entries,
			"summary": summary,
		})
	}
}
