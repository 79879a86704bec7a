package orders

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/jomarvillega/stockroom-backend/internal/inventory"
	"github.com/jomarvillega/stockroom-backend/internal/ledger"
	"github.com/jomarvillega/stockroom-backend/internal/products"
	"github.com/jomarvillega/stockroom-backend/pkg/db/models"
	"github.com/jomarvillega/stockroom-backend/pkg/enums"
	pkgerrors "github.com/jomarvillega/stockroom-backend/pkg/errors"
)

var fulfillmentSchema = []string{
	`CREATE TABLE products (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		barcode TEXT,
		category_name TEXT NOT NULL DEFAULT 'Other',
		price NUMERIC NOT NULL DEFAULT 0,
		cost NUMERIC NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'active',
		created_at DATETIME,
		updated_at DATETIME
	);`,
	`CREATE TABLE inventories (
		product_id TEXT PRIMARY KEY,
		quantity INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0),
		reorder_level INTEGER NOT NULL DEFAULT 0,
		reorder_quantity INTEGER NOT NULL DEFAULT 0,
		last_restock_date DATETIME,
		last_restock_quantity INTEGER,
		updated_at DATETIME
	);`,
	`CREATE TABLE orders (
		id TEXT PRIMARY KEY,
		order_number TEXT NOT NULL UNIQUE,
		customer_name TEXT,
		service_type TEXT NOT NULL DEFAULT 'Other',
		notes TEXT,
		preferred_pickup_date DATETIME,
		total_amount NUMERIC NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'pending',
		voided_from TEXT,
		void_reason TEXT,
		voided_by TEXT,
		voided_at DATETIME,
		completed_date DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	);`,
	`CREATE TABLE order_items (
		id TEXT PRIMARY KEY,
		order_id TEXT NOT NULL,
		product_id TEXT,
		product_name TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		unit_price NUMERIC NOT NULL DEFAULT 0,
		subtotal NUMERIC NOT NULL DEFAULT 0,
		notes TEXT,
		created_at DATETIME
	);`,
	`CREATE TABLE payments (
		id TEXT PRIMARY KEY,
		order_id TEXT NOT NULL UNIQUE,
		method TEXT NOT NULL,
		amount NUMERIC NOT NULL,
		reference_number TEXT,
		payment_date DATETIME NOT NULL,
		processed_by TEXT,
		created_at DATETIME
	);`,
	`CREATE TABLE stock_entries (
		id TEXT PRIMARY KEY,
		product_id TEXT NOT NULL,
		type TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		unit_price NUMERIC NOT NULL DEFAULT 0,
		total_amount NUMERIC NOT NULL DEFAULT 0,
		reference_type TEXT NOT NULL,
		reference_id TEXT,
		user_id TEXT,
		notes TEXT,
		created_at DATETIME
	);`,
	`CREATE TABLE order_counters (
		year INTEGER PRIMARY KEY,
		last_value INTEGER NOT NULL DEFAULT 0
	);`,
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:orders_" + uuid.NewString() + "?mode=memory&cache=shared"
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	for _, stmt := range fulfillmentSchema {
		if err := gdb.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	return gdb
}

type gormTxRunner struct {
	db *gorm.DB
}

func (g gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return g.db.WithContext(ctx).Transaction(fn)
}

func newTestService(t *testing.T, gdb *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(
		gormTxRunner{db: gdb},
		NewRepository(gdb),
		inventory.NewRepository(gdb),
		ledger.NewRepository(gdb),
		products.NewRepository(gdb),
		nil,
		nil,
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func seedProduct(t *testing.T, gdb *gorm.DB, name string, price string, qty int) uuid.UUID {
	t.Helper()
	product := models.Product{
		ID:           uuid.New(),
		Name:         name,
		CategoryName: "School Supplies",
		Price:        decimal.RequireFromString(price),
		Cost:         decimal.RequireFromString(price).Div(decimal.NewFromInt(2)),
		Status:       enums.ProductStatusActive,
	}
	if err := gdb.Create(&product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	if err := gdb.Create(&models.Inventory{ProductID: product.ID, Quantity: qty, ReorderLevel: 2}).Error; err != nil {
		t.Fatalf("seed inventory: %v", err)
	}
	return product.ID
}

func quantityOf(t *testing.T, gdb *gorm.DB, productID uuid.UUID) int {
	t.Helper()
	var inv models.Inventory
	if err := gdb.First(&inv, "product_id = ?", productID).Error; err != nil {
		t.Fatalf("load inventory: %v", err)
	}
	return inv.Quantity
}

func countRows(t *testing.T, gdb *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	if err := gdb.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count rows: %v", err)
	}
	return n
}

func TestCreateOrderParksPending(t *testing.T) {
	t.Parallel()

	gdb := newTestDB(t)
	svc := newTestService(t, gdb)
	ctx := context.Background()

	pencils := seedProduct(t, gdb, "Pencil", "10.00", 20)
	pads := seedProduct(t, gdb, "Writing Pad", "25.50", 5)

	receipt, err := svc.Create(ctx, CreateOrderInput{
		Items: []LineItemInput{
			{ProductID: pencils, Quantity: 3, UnitPrice: decimal.RequireFromString("10.00")},
			{ProductID: pads, Quantity: 2, UnitPrice: decimal.RequireFromString("25.50")},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if receipt.Status != enums.OrderStatusPending {
		t.Fatalf("status = %s, want pending", receipt.Status)
	}
	wantPrefix := "ORD-" + time.Now().UTC().Format("2006") + "-"
	if !strings.HasPrefix(receipt.OrderNumber, wantPrefix) {
		t.Fatalf("order number %q missing prefix %q", receipt.OrderNumber, wantPrefix)
	}
	if want := decimal.RequireFromString("81.00"); !receipt.TotalAmount.Equal(want) {
		t.Fatalf("total = %s, want %s", receipt.TotalAmount, want)
	}

	// Stock is held at creation time, not completion time.
	if got := quantityOf(t, gdb, pencils); got != 17 {
		t.Fatalf("pencil quantity = %d, want 17", got)
	}
	if got := quantityOf(t, gdb, pads); got != 3 {
		t.Fatalf("pad quantity = %d, want 3", got)
	}

	// The ledger records nothing until the sale actually closes.
	if n := countRows(t, gdb, &models.StockEntry{}); n != 0 {
		t.Fatalf("stock entries = %d, want 0", n)
	}

	view, err := svc.Get(ctx, receipt.OrderID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(view.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(view.Items))
	}
	if view.ServiceType != "School Supplies" {
		t.Fatalf("service type = %q", view.ServiceType)
	}
	if view.IsVoided {
		t.Fatal("new order must not be voided")
	}
}

func TestCreateOrderInstantSale(t *testing.T) {
	t.Parallel()

	gdb := newTestDB(t)
	svc := newTestService(t, gdb)
	ctx := context.Background()

	notebooks := seedProduct(t, gdb, "Notebook", "45.00", 10)
	cashier := uuid.New()

	receipt, err := svc.Create(ctx, CreateOrderInput{
		Items: []LineItemInput{
			{ProductID: notebooks, Quantity: 2, UnitPrice: decimal.RequireFromString("45.00")},
		},
		Payment: &PaymentInput{
			Method: enums.PaymentMethodCash,
			Amount: decimal.RequireFromString("90.00"),
		},
		ActorUserID: cashier,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if receipt.Status != enums.OrderStatusCompleted {
		t.Fatalf("status = %s, want completed", receipt.Status)
	}
	if receipt.CompletedDate == nil {
		t.Fatal("expected completed date")
	}
	if got := quantityOf(t, gdb, notebooks); got != 8 {
		t.Fatalf("quantity = %d, want 8", got)
	}

	var payment models.Payment
	if err := gdb.First(&payment, "order_id = ?", receipt.OrderID).Error; err != nil {
		t.Fatalf("load payment: %v", err)
	}
	if payment.Method != enums.PaymentMethodCash {
		t.Fatalf("method = %s", payment.Method)
	}
	if payment.ProcessedBy == nil || *payment.ProcessedBy != cashier {
		t.Fatalf("processed_by = %v, want %s", payment.ProcessedBy, cashier)
	}

	var entries []models.StockEntry
	if err := gdb.Find(&entries, "reference_id = ?", receipt.OrderID).Error; err != nil {
		t.Fatalf("load entries: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	if entries[0].Type != enums.StockEntryTypeOut || entries[0].ReferenceType != enums.StockReferenceOrder {
		t.Fatalf("unexpected ledger entry: %+v", entries[0])
	}
	if entries[0].Quantity != 2 {
		t.Fatalf("ledger quantity = %d, want 2", entries[0].Quantity)
	}
}

func TestCreateOrderShortfallLeavesNoTrace(t *testing.T) {
	t.Parallel()

	gdb := newTestDB(t)
	svc := newTestService(t, gdb)
	ctx := context.Background()

	pencils := seedProduct(t, gdb, "Pencil", "10.00", 20)
	glue := seedProduct(t, gdb, "Glue Stick", "18.00", 1)

	_, err := svc.Create(ctx, CreateOrderInput{
		Items: []LineItemInput{
			{ProductID: pencils, Quantity: 5, UnitPrice: decimal.RequireFromString("10.00")},
			{ProductID: glue, Quantity: 3, UnitPrice: decimal.RequireFromString("18.00")},
		},
	})
	if err == nil {
		t.Fatal("expected insufficient stock error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
		t.Fatalf("error = %v, want %s", err, pkgerrors.CodeInsufficientStock)
	}
	details, ok := typed.Details().(map[string]any)
	if !ok {
		t.Fatalf("expected details map, got %T", typed.Details())
	}
	if details["requested"] != 3 || details["available"] != 1 {
		t.Fatalf("unexpected shortfall details: %v", details)
	}

	// The whole attempt rolls back: even the line that had stock is untouched.
	if got := quantityOf(t, gdb, pencils); got != 20 {
		t.Fatalf("pencil quantity = %d, want 20", got)
	}
	if got := quantityOf(t, gdb, glue); got != 1 {
		t.Fatalf("glue quantity = %d, want 1", got)
	}
	if n := countRows(t, gdb, &models.Order{}); n != 0 {
		t.Fatalf("orders = %d, want 0", n)
	}
	if n := countRows(t, gdb, &models.StockEntry{}); n != 0 {
		t.Fatalf("stock entries = %d, want 0", n)
	}
	if n := countRows(t, gdb, &models.OrderCounter{}); n != 0 {
		t.Fatalf("counters = %d, want 0", n)
	}
}

func TestCreateOrderRejectsInactiveProduct(t *testing.T) {
	t.Parallel()

	gdb := newTestDB(t)
	svc := newTestService(t, gdb)
	ctx := context.Background()

	discontinued := seedProduct(t, gdb, "Old Uniform", "300.00", 4)
	if err := gdb.Model(&models.Product{}).Where("id = ?", discontinued).Update("status", enums.ProductStatusInactive).Error; err != nil {
		t.Fatalf("deactivate product: %v", err)
	}

	_, err := svc.Create(ctx, CreateOrderInput{
		Items: []LineItemInput{
			{ProductID: discontinued, Quantity: 1, UnitPrice: decimal.RequireFromString("300.00")},
		},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("error = %v, want %s", err, pkgerrors.CodeValidation)
	}
}

func TestCompleteOrderOnceOnly(t *testing.T) {
	t.Parallel()

	gdb := newTestDB(t)
	svc := newTestService(t, gdb)
	ctx := context.Background()

	pens := seedProduct(t, gdb, "Ballpen", "12.00", 30)

	receipt, err := svc.Create(ctx, CreateOrderInput{
		Items: []LineItemInput{
			{ProductID: pens, Quantity: 10, UnitPrice: decimal.RequireFromString("12.00")},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	payment := PaymentInput{Method: enums.PaymentMethodGCash, Amount: decimal.RequireFromString("120.00")}
	completed, err := svc.Complete(ctx, CompleteOrderInput{OrderID: receipt.OrderID, Payment: payment})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if completed.Status != enums.OrderStatusCompleted {
		t.Fatalf("status = %s", completed.Status)
	}

	// Completion must not touch stock again; creation already held it.
	if got := quantityOf(t, gdb, pens); got != 20 {
		t.Fatalf("quantity = %d, want 20", got)
	}

	_, err = svc.Complete(ctx, CompleteOrderInput{OrderID: receipt.OrderID, Payment: payment})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeAlreadyCompleted {
		t.Fatalf("error = %v, want %s", err, pkgerrors.CodeAlreadyCompleted)
	}

	if n := countRows(t, gdb, &models.Payment{}); n != 1 {
		t.Fatalf("payments = %d, want 1", n)
	}
}

func TestVoidRoundTripsStock(t *testing.T) {
	t.Parallel()

	gdb := newTestDB(t)
	svc := newTestService(t, gdb)
	ctx := context.Background()

	crayons := seedProduct(t, gdb, "Crayons", "55.00", 12)
	manager := uuid.New()

	receipt, err := svc.Create(ctx, CreateOrderInput{
		Items: []LineItemInput{
			{ProductID: crayons, Quantity: 4, UnitPrice: decimal.RequireFromString("55.00")},
		},
		Payment: &PaymentInput{Method: enums.PaymentMethodCash, Amount: decimal.RequireFromString("220.00")},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got := quantityOf(t, gdb, crayons); got != 8 {
		t.Fatalf("quantity after sale = %d, want 8", got)
	}

	view, err := svc.Void(ctx, VoidOrderInput{OrderID: receipt.OrderID, Reason: "wrong item rung up", ActorUserID: manager})
	if err != nil {
		t.Fatalf("void: %v", err)
	}

	if view.Status != enums.OrderStatusCancelled {
		t.Fatalf("status = %s, want cancelled", view.Status)
	}
	if !view.IsVoided {
		t.Fatal("expected voided view")
	}
	if view.VoidedFrom == nil || *view.VoidedFrom != enums.OrderStatusCompleted {
		t.Fatalf("voided_from = %v, want completed", view.VoidedFrom)
	}
	if view.VoidedBy == nil || *view.VoidedBy != manager {
		t.Fatalf("voided_by = %v", view.VoidedBy)
	}

	// Every unit is back on the shelf.
	if got := quantityOf(t, gdb, crayons); got != 12 {
		t.Fatalf("quantity after void = %d, want 12", got)
	}

	var entries []models.StockEntry
	if err := gdb.Order("created_at ASC, type DESC").Find(&entries, "product_id = ?", crayons).Error; err != nil {
		t.Fatalf("load entries: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2 (out + reversing in)", len(entries))
	}
	var sawVoidIn bool
	for _, entry := range entries {
		if entry.Type == enums.StockEntryTypeIn && entry.ReferenceType == enums.StockReferenceOrderVoid {
			sawVoidIn = true
			if entry.Quantity != 4 {
				t.Fatalf("reversal quantity = %d, want 4", entry.Quantity)
			}
		}
	}
	if !sawVoidIn {
		t.Fatal("expected an order_void IN entry")
	}

	// Retrying the void must not restore stock a second time.
	_, err = svc.Void(ctx, VoidOrderInput{OrderID: receipt.OrderID, Reason: "double click"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeAlreadyVoided {
		t.Fatalf("error = %v, want %s", err, pkgerrors.CodeAlreadyVoided)
	}
	if got := quantityOf(t, gdb, crayons); got != 12 {
		t.Fatalf("quantity after repeat void = %d, want 12", got)
	}
}

func TestVoidRejectsBlankReason(t *testing.T) {
	t.Parallel()

	gdb := newTestDB(t)
	svc := newTestService(t, gdb)

	_, err := svc.Void(context.Background(), VoidOrderInput{OrderID: uuid.New(), Reason: "   "})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("error = %v, want %s", err, pkgerrors.CodeValidation)
	}
}

func TestCompleteVoidedOrderRejected(t *testing.T) {
	t.Parallel()

	gdb := newTestDB(t)
	svc := newTestService(t, gdb)
	ctx := context.Background()

	rulers := seedProduct(t, gdb, "Ruler", "15.00", 6)

	receipt, err := svc.Create(ctx, CreateOrderInput{
		Items: []LineItemInput{
			{ProductID: rulers, Quantity: 1, UnitPrice: decimal.RequireFromString("15.00")},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Void(ctx, VoidOrderInput{OrderID: receipt.OrderID, Reason: "customer walked away"}); err != nil {
		t.Fatalf("void: %v", err)
	}

	_, err = svc.Complete(ctx, CompleteOrderInput{
		OrderID: receipt.OrderID,
		Payment: PaymentInput{Method: enums.PaymentMethodCash, Amount: decimal.RequireFromString("15.00")},
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("error = %v, want %s", err, pkgerrors.CodeConflict)
	}
}

func TestDeletePendingRestoresStock(t *testing.T) {
	t.Parallel()

	gdb := newTestDB(t)
	svc := newTestService(t, gdb)
	ctx := context.Background()

	erasers := seedProduct(t, gdb, "Eraser", "8.00", 9)

	receipt, err := svc.Create(ctx, CreateOrderInput{
		Items: []LineItemInput{
			{ProductID: erasers, Quantity: 4, UnitPrice: decimal.RequireFromString("8.00")},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got := quantityOf(t, gdb, erasers); got != 5 {
		t.Fatalf("quantity = %d, want 5", got)
	}

	if err := svc.Delete(ctx, receipt.OrderID, uuid.Nil); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got := quantityOf(t, gdb, erasers); got != 9 {
		t.Fatalf("quantity after delete = %d, want 9", got)
	}

	var entry models.StockEntry
	if err := gdb.First(&entry, "reference_type = ?", enums.StockReferenceOrderDelete).Error; err != nil {
		t.Fatalf("expected an order_delete entry: %v", err)
	}

	if _, err := svc.Get(ctx, receipt.OrderID); pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestDeleteCompletedOrderRejected(t *testing.T) {
	t.Parallel()

	gdb := newTestDB(t)
	svc := newTestService(t, gdb)
	ctx := context.Background()

	bags := seedProduct(t, gdb, "School Bag", "600.00", 3)

	receipt, err := svc.Create(ctx, CreateOrderInput{
		Items: []LineItemInput{
			{ProductID: bags, Quantity: 1, UnitPrice: decimal.RequireFromString("600.00")},
		},
		Payment: &PaymentInput{Method: enums.PaymentMethodGCash, Amount: decimal.RequireFromString("600.00")},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	err = svc.Delete(ctx, receipt.OrderID, uuid.Nil)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("error = %v, want %s", err, pkgerrors.CodeConflict)
	}
}

func TestOrderNumbersAreSequentialPerYear(t *testing.T) {
	t.Parallel()

	gdb := newTestDB(t)
	svc := newTestService(t, gdb)
	ctx := context.Background()

	pencils := seedProduct(t, gdb, "Pencil", "10.00", 100)

	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		receipt, err := svc.Create(ctx, CreateOrderInput{
			Items: []LineItemInput{
				{ProductID: pencils, Quantity: 1, UnitPrice: decimal.RequireFromString("10.00")},
			},
		})
		if err != nil {
			t.Fatalf("create %d: %v", i, err)
		}
		if seen[receipt.OrderNumber] {
			t.Fatalf("duplicate order number %s", receipt.OrderNumber)
		}
		seen[receipt.OrderNumber] = true
	}

	year := time.Now().UTC().Year()
	if !seen[FormatOrderNumber(year, 1)] || !seen[FormatOrderNumber(year, 2)] || !seen[FormatOrderNumber(year, 3)] {
		t.Fatalf("expected sequence 1..3, got %v", seen)
	}
}
