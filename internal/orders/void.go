package orders

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jomarvillega/stockroom-backend/internal/cache"
	"github.com/jomarvillega/stockroom-backend/pkg/db/models"
	"github.com/jomarvillega/stockroom-backend/pkg/enums"
	pkgerrors "github.com/jomarvillega/stockroom-backend/pkg/errors"
)

const maxVoidReasonLen = 500

// Void reverses an order: every line's quantity goes back to inventory,
// matching inbound ledger entries are appended, and the order lands in
// cancelled with VoidedFrom recording where it came from. Voiding an already
// voided order fails without touching stock, which keeps the operation safe
// to retry from a confused terminal.
func (s *service) Void(ctx context.Context, input VoidOrderInput) (*OrderView, error) {
	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "void reason required")
	}
	if len(reason) > maxVoidReasonLen {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "void reason too long").
			WithDetails(map[string]any{"max_length": maxVoidReasonLen})
	}

	start := time.Now()
	var view *OrderView
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByID(ctx, input.OrderID)
		if err != nil {
			return err
		}
		if order.IsVoided() {
			return pkgerrors.New(pkgerrors.CodeAlreadyVoided, "order already voided").
				WithDetails(map[string]any{"order_number": order.OrderNumber})
		}

		if err := s.restoreStockTx(ctx, tx, order, enums.StockReferenceOrderVoid, input.ActorUserID, &reason); err != nil {
			return err
		}

		now := time.Now().UTC()
		priorStatus := order.Status
		updates := map[string]any{
			"status":      enums.OrderStatusCancelled,
			"voided_from": priorStatus,
			"void_reason": reason,
			"voided_at":   now,
		}
		if input.ActorUserID != uuid.Nil {
			updates["voided_by"] = input.ActorUserID
		}
		if err := repo.Update(ctx, order.ID, updates); err != nil {
			return err
		}

		order.Status = enums.OrderStatusCancelled
		order.VoidedFrom = &priorStatus
		order.VoidReason = &reason
		order.VoidedAt = &now
		if input.ActorUserID != uuid.Nil {
			actor := input.ActorUserID
			order.VoidedBy = &actor
		}
		v := ToOrderView(order)
		view = &v
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncVoided()
	s.metrics.ObserveDuration("void", time.Since(start))
	if s.cache != nil {
		s.cache.Invalidate(ctx, cache.TopicOrder, cache.TopicInventory)
	}
	return view, nil
}

// Delete removes an unfulfilled order outright. Completed orders must be
// voided instead so the sale stays on the books; an already voided order has
// its stock back, so only never-voided orders trigger a restore here.
func (s *service) Delete(ctx context.Context, orderID uuid.UUID, actorUserID uuid.UUID) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		if order.CompletedDate != nil || order.Status == enums.OrderStatusCompleted {
			return pkgerrors.New(pkgerrors.CodeConflict, "completed orders cannot be deleted, void them instead").
				WithDetails(map[string]any{"order_number": order.OrderNumber})
		}
		if order.Status == enums.OrderStatusInProgress {
			return pkgerrors.New(pkgerrors.CodeConflict, "order is being worked on and cannot be deleted").
				WithDetails(map[string]any{"order_number": order.OrderNumber})
		}

		if !order.IsVoided() {
			if err := s.restoreStockTx(ctx, tx, order, enums.StockReferenceOrderDelete, actorUserID, nil); err != nil {
				return err
			}
		}
		return repo.Delete(ctx, order.ID)
	})
	if err != nil {
		return err
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, cache.TopicOrder, cache.TopicInventory)
	}
	return nil
}

// restoreStockTx puts every line's quantity back and appends the matching
// inbound ledger entries inside the caller's transaction.
func (s *service) restoreStockTx(ctx context.Context, tx *gorm.DB, order *models.Order, ref enums.StockReference, actorUserID uuid.UUID, notes *string) error {
	invRepo := s.inventory.WithTx(tx)
	ledgerRepo := s.ledger.WithTx(tx)

	entries := make([]models.StockEntry, 0, len(order.Items))
	for _, item := range order.Items {
		if item.ProductID == nil {
			continue
		}
		if err := invRepo.Restore(ctx, *item.ProductID, item.Quantity); err != nil {
			return err
		}
		entry := models.StockEntry{
			ProductID:     *item.ProductID,
			Type:          enums.StockEntryTypeIn,
			Quantity:      item.Quantity,
			UnitPrice:     item.UnitPrice,
			TotalAmount:   item.Subtotal,
			ReferenceType: ref,
			ReferenceID:   ptrOf(order.ID),
			Notes:         notes,
		}
		if actorUserID != uuid.Nil {
			actor := actorUserID
			entry.UserID = &actor
		}
		entries = append(entries, entry)
	}
	if err := ledgerRepo.CreateBatch(ctx, entries); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append stock ledger entries")
	}
	return nil
}
