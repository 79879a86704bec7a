package orders

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/jomarvillega/stockroom-backend/internal/cache"
	"github.com/jomarvillega/stockroom-backend/internal/inventory"
	"github.com/jomarvillega/stockroom-backend/internal/ledger"
	"github.com/jomarvillega/stockroom-backend/internal/products"
	"github.com/jomarvillega/stockroom-backend/pkg/db/models"
	"github.com/jomarvillega/stockroom-backend/pkg/enums"
	pkgerrors "github.com/jomarvillega/stockroom-backend/pkg/errors"
	"github.com/jomarvillega/stockroom-backend/pkg/metrics"
	"github.com/jomarvillega/stockroom-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type invalidator interface {
	Invalidate(ctx context.Context, topics ...cache.Topic)
}

// Service executes the order fulfillment state machine.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*Receipt, error)
	Complete(ctx context.Context, input CompleteOrderInput) (*Receipt, error)
	Void(ctx context.Context, input VoidOrderInput) (*OrderView, error)
	Delete(ctx context.Context, orderID uuid.UUID, actorUserID uuid.UUID) error
	Get(ctx context.Context, orderID uuid.UUID) (*OrderView, error)
	GetByOrderNumber(ctx context.Context, orderNumber string) (*OrderView, error)
	List(ctx context.Context, params pagination.Params, filters ListFilters) (*OrderPage, error)
}

type service struct {
	tx        txRunner
	repo      Repository
	inventory inventory.Repository
	ledger    ledger.Repository
	products  products.Repository
	cache     invalidator
	metrics   *metrics.FulfillmentMetrics
}

// NewService builds the order fulfillment service.
func NewService(
	tx txRunner,
	repo Repository,
	inventoryRepo inventory.Repository,
	ledgerRepo ledger.Repository,
	productRepo products.Repository,
	cacheInv invalidator,
	fm *metrics.FulfillmentMetrics,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if inventoryRepo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if ledgerRepo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if productRepo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{
		tx:        tx,
		repo:      repo,
		inventory: inventoryRepo,
		ledger:    ledgerRepo,
		products:  productRepo,
		cache:     cacheInv,
		metrics:   fm,
	}, nil
}

// Create validates stock, reserves it, and persists the aggregate in one
// transaction. An abort at any point leaves zero side effects: no order row,
// no stock mutation, no ledger entries.
func (s *service) Create(ctx context.Context, input CreateOrderInput) (*Receipt, error) {
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}

	start := time.Now()
	var receipt *Receipt
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		invRepo := s.inventory.WithTx(tx)
		productRepo := s.products.WithTx(tx)

		loaded := make(map[uuid.UUID]*models.Product, len(input.Items))
		for _, item := range input.Items {
			if _, ok := loaded[item.ProductID]; ok {
				continue
			}
			product, err := productRepo.FindByID(ctx, item.ProductID)
			if err != nil {
				return err
			}
			if product.Status != enums.ProductStatusActive {
				return pkgerrors.New(pkgerrors.CodeValidation, "product is not for sale").
					WithDetails(map[string]any{"product_id": product.ID, "product_name": product.Name})
			}
			loaded[item.ProductID] = product
		}

		// The service type is a deliberate simplification: the category of
		// the first line item's product labels the whole order.
		serviceType := loaded[input.Items[0].ProductID].CategoryName
		if serviceType == "" {
			serviceType = "Other"
		}

		// Stock is taken in ascending product order so two carts touching
		// the same products can never deadlock on reversed acquisition.
		for _, item := range sortedByProduct(input.Items) {
			ok, available, err := invRepo.Reserve(ctx, item.ProductID, item.Quantity)
			if err != nil {
				return err
			}
			if !ok {
				s.metrics.IncShortfall()
				return pkgerrors.New(pkgerrors.CodeInsufficientStock, "insufficient stock").
					WithDetails(map[string]any{
						"product_id":   item.ProductID,
						"product_name": loaded[item.ProductID].Name,
						"requested":    item.Quantity,
						"available":    available,
					})
			}
		}

		year := time.Now().UTC().Year()
		seq, err := repo.NextSequence(ctx, year)
		if err != nil {
			return err
		}

		order := &models.Order{
			OrderNumber:         FormatOrderNumber(year, seq),
			CustomerName:        input.CustomerName,
			ServiceType:         serviceType,
			Notes:               input.Notes,
			PreferredPickupDate: input.PreferredPickupDate,
			Status:              enums.OrderStatusPending,
		}

		total := decimal.Zero
		items := make([]models.OrderItem, 0, len(input.Items))
		for _, item := range input.Items {
			subtotal := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
			total = total.Add(subtotal)
			items = append(items, models.OrderItem{
				ProductID:   ptrOf(item.ProductID),
				ProductName: loaded[item.ProductID].Name,
				Quantity:    item.Quantity,
				UnitPrice:   item.UnitPrice,
				Subtotal:    subtotal,
				Notes:       item.Notes,
			})
		}
		order.TotalAmount = total

		if err := repo.Create(ctx, order); err != nil {
			return err
		}
		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := repo.CreateItems(ctx, items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order items")
		}
		order.Items = items

		if input.Payment != nil {
			if err := s.completeTx(ctx, tx, order, *input.Payment, input.ActorUserID); err != nil {
				return err
			}
		}

		receipt = receiptFor(order)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncCreated(string(receipt.Status))
	s.metrics.ObserveDuration("create", time.Since(start))
	if receipt.Status == enums.OrderStatusCompleted {
		s.metrics.IncCompleted()
	}
	if s.cache != nil {
		s.cache.Invalidate(ctx, cache.TopicOrder, cache.TopicInventory)
	}
	return receipt, nil
}

// completeTx performs the completion steps inside the caller's transaction.
// Stock was already decremented when the order was created; the ledger append
// here is record-only and must not decrement again.
func (s *service) completeTx(ctx context.Context, tx *gorm.DB, order *models.Order, payment PaymentInput, actorUserID uuid.UUID) error {
	if order.Status == enums.OrderStatusCompleted {
		return pkgerrors.New(pkgerrors.CodeAlreadyCompleted, "order already completed").
			WithDetails(map[string]any{"order_number": order.OrderNumber})
	}
	if !order.Status.CanComplete() {
		return pkgerrors.New(pkgerrors.CodeConflict, "cancelled order cannot be completed").
			WithDetails(map[string]any{"order_number": order.OrderNumber, "status": order.Status})
	}

	repo := s.repo.WithTx(tx)
	ledgerRepo := s.ledger.WithTx(tx)
	now := time.Now().UTC()

	row := &models.Payment{
		OrderID:         order.ID,
		Method:          payment.Method,
		Amount:          payment.Amount,
		ReferenceNumber: payment.ReferenceNumber,
		PaymentDate:     now,
	}
	if actorUserID != uuid.Nil {
		actor := actorUserID
		row.ProcessedBy = &actor
	}
	if err := repo.CreatePayment(ctx, row); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record payment")
	}

	if err := repo.Update(ctx, order.ID, map[string]any{
		"status":         enums.OrderStatusCompleted,
		"completed_date": now,
	}); err != nil {
		return err
	}

	entries := make([]models.StockEntry, 0, len(order.Items))
	for _, item := range order.Items {
		if item.ProductID == nil {
			continue
		}
		entry := models.StockEntry{
			ProductID:     *item.ProductID,
			Type:          enums.StockEntryTypeOut,
			Quantity:      item.Quantity,
			UnitPrice:     item.UnitPrice,
			TotalAmount:   item.Subtotal,
			ReferenceType: enums.StockReferenceOrder,
			ReferenceID:   ptrOf(order.ID),
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

	order.Status = enums.OrderStatusCompleted
	order.CompletedDate = &now
	order.Payment = row
	return nil
}

func validateCreateInput(input CreateOrderInput) error {
	if len(input.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "order requires at least one item")
	}
	for i, item := range input.Items {
		if item.ProductID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "item product id required").
				WithDetails(map[string]any{"index": i})
		}
		if item.Quantity < 1 {
			return pkgerrors.New(pkgerrors.CodeValidation, "item quantity must be at least 1").
				WithDetails(map[string]any{"index": i, "product_id": item.ProductID})
		}
		if item.UnitPrice.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "item unit price cannot be negative").
				WithDetails(map[string]any{"index": i, "product_id": item.ProductID})
		}
	}
	if input.Payment != nil {
		return validatePayment(*input.Payment)
	}
	return nil
}

func validatePayment(payment PaymentInput) error {
	if !payment.Method.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid payment method")
	}
	if !payment.Amount.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment amount must be positive")
	}
	return nil
}

func sortedByProduct(items []LineItemInput) []LineItemInput {
	sorted := append([]LineItemInput(nil), items...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ProductID.String() < sorted[j].ProductID.String()
	})
	return sorted
}

func receiptFor(order *models.Order) *Receipt {
	return &Receipt{
		OrderID:       order.ID,
		OrderNumber:   order.OrderNumber,
		TotalAmount:   order.TotalAmount,
		Status:        order.Status,
		CompletedDate: order.CompletedDate,
		CustomerName:  order.CustomerName,
	}
}

func ptrOf[T any](v T) *T {
	return &v
}
