package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/jomarvillega/stockroom-backend/internal/inventory"
	"github.com/jomarvillega/stockroom-backend/internal/ledger"
	internalorders "github.com/jomarvillega/stockroom-backend/internal/orders"
	"github.com/jomarvillega/stockroom-backend/internal/products"
	"github.com/jomarvillega/stockroom-backend/pkg/db/models"
	"github.com/jomarvillega/stockroom-backend/pkg/enums"
)

var testSchema = []string{
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

type gormTxRunner struct {
	db *gorm.DB
}

func (g gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return g.db.WithContext(ctx).Transaction(fn)
}

type testEnv struct {
	db     *gorm.DB
	router chi.Router
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dsn := "file:controllers_" + uuid.NewString() + "?mode=memory&cache=shared"
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	for _, stmt := range testSchema {
		if err := gdb.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}

	ledgerRepo := ledger.NewRepository(gdb)
	productRepo := products.NewRepository(gdb)
	inventoryRepo := inventory.NewRepository(gdb)
	ordersRepo := internalorders.NewRepository(gdb)

	ordersSvc, err := internalorders.NewService(gormTxRunner{db: gdb}, ordersRepo, inventoryRepo, ledgerRepo, productRepo, nil, nil)
	if err != nil {
		t.Fatalf("orders service: %v", err)
	}
	inventorySvc, err := inventory.NewService(gormTxRunner{db: gdb}, inventoryRepo, ledgerRepo, productRepo, nil, nil, 0)
	if err != nil {
		t.Fatalf("inventory service: %v", err)
	}
	ledgerSvc, err := ledger.NewService(ledgerRepo)
	if err != nil {
		t.Fatalf("ledger service: %v", err)
	}

	r := chi.NewRouter()
	r.Post("/orders", CreateOrder(ordersSvc, nil))
	r.Get("/orders", ListOrders(ordersSvc, nil))
	r.Get("/orders/{orderId}", OrderDetail(ordersSvc, nil))
	r.Post("/orders/{orderId}/void", VoidOrder(ordersSvc, nil))
	r.Post("/inventory/{productId}/restock", Restock(inventorySvc, nil))
	r.Get("/inventory", ListStock(inventorySvc, nil))
	r.Get("/inventory/{productId}/movements", StockMovements(ledgerSvc, nil))

	return &testEnv{db: gdb, router: r}
}

func (e *testEnv) seedProduct(t *testing.T, name string, qty int) uuid.UUID {
	t.Helper()
	product := models.Product{
		ID:           uuid.New(),
		Name:         name,
		CategoryName: "School Supplies",
		Price:        decimal.RequireFromString("20.00"),
		Cost:         decimal.RequireFromString("10.00"),
		Status:       enums.ProductStatusActive,
	}
	if err := e.db.Create(&product).Error; err != nil {
		t.Fatalf("seed product: %v", err)
	}
	if err := e.db.Create(&models.Inventory{ProductID: product.ID, Quantity: qty, ReorderLevel: 2}).Error; err != nil {
		t.Fatalf("seed inventory: %v", err)
	}
	return product.ID
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func TestCreateOrderEndpoint(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	productID := env.seedProduct(t, "Notebook", 10)

	rec := env.do(t, http.MethodPost, "/orders", map[string]any{
		"items": []map[string]any{
			{"product_id": productID.String(), "quantity": 2, "unit_price": "20.00"},
		},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Data struct {
			OrderID     uuid.UUID `json:"order_id"`
			OrderNumber string    `json:"order_number"`
			Status      string    `json:"status"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Data.Status != "pending" || envelope.Data.OrderNumber == "" {
		t.Fatalf("unexpected receipt: %+v", envelope.Data)
	}

	detail := env.do(t, http.MethodGet, "/orders/"+envelope.Data.OrderID.String(), nil)
	if detail.Code != http.StatusOK {
		t.Fatalf("detail status = %d", detail.Code)
	}
}

func TestCreateOrderEndpointRejectsUnknownFields(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/orders", map[string]any{
		"items":    []map[string]any{},
		"discount": "100%",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCreateOrderEndpointShortfall(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	productID := env.seedProduct(t, "Glue", 1)

	rec := env.do(t, http.MethodPost, "/orders", map[string]any{
		"items": []map[string]any{
			{"product_id": productID.String(), "quantity": 5, "unit_price": "18.00"},
		},
	})
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422, body %s", rec.Code, rec.Body.String())
	}

	var envelope struct {
		Error struct {
			Code    string         `json:"code"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if envelope.Error.Code != "INSUFFICIENT_STOCK" {
		t.Fatalf("code = %s", envelope.Error.Code)
	}
	if envelope.Error.Details["available"] != float64(1) {
		t.Fatalf("details = %v", envelope.Error.Details)
	}
}

func TestVoidEndpointRoundTrip(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	productID := env.seedProduct(t, "Crayons", 8)

	created := env.do(t, http.MethodPost, "/orders", map[string]any{
		"items": []map[string]any{
			{"product_id": productID.String(), "quantity": 3, "unit_price": "20.00"},
		},
		"payment": map[string]any{"method": "cash", "amount": "60.00"},
	})
	if created.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", created.Code, created.Body.String())
	}
	var envelope struct {
		Data struct {
			OrderID uuid.UUID `json:"order_id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(created.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}

	voidPath := fmt.Sprintf("/orders/%s/void", envelope.Data.OrderID)
	voided := env.do(t, http.MethodPost, voidPath, map[string]any{"reason": "wrong item"})
	if voided.Code != http.StatusOK {
		t.Fatalf("void status = %d, body %s", voided.Code, voided.Body.String())
	}

	again := env.do(t, http.MethodPost, voidPath, map[string]any{"reason": "double click"})
	if again.Code != http.StatusBadRequest {
		t.Fatalf("second void status = %d, want 400", again.Code)
	}
}

func TestRestockAndListStockEndpoints(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	productID := env.seedProduct(t, "Bond Paper", 1)

	rec := env.do(t, http.MethodPost, "/inventory/"+productID.String()+"/restock", map[string]any{"quantity": 50})
	if rec.Code != http.StatusOK {
		t.Fatalf("restock status = %d, body %s", rec.Code, rec.Body.String())
	}

	list := env.do(t, http.MethodGet, "/inventory?status=available", nil)
	if list.Code != http.StatusOK {
		t.Fatalf("list status = %d", list.Code)
	}
	var envelope struct {
		Data []struct {
			ProductID uuid.UUID `json:"product_id"`
			Quantity  int       `json:"quantity"`
			Status    string    `json:"status"`
		} `json:"data"`
	}
	if err := json.NewDecoder(list.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(envelope.Data) != 1 || envelope.Data[0].Quantity != 51 || envelope.Data[0].Status != "available" {
		t.Fatalf("unexpected stock list: %+v", envelope.Data)
	}

	movements := env.do(t, http.MethodGet, "/inventory/"+productID.String()+"/movements", nil)
	if movements.Code != http.StatusOK {
		t.Fatalf("movements status = %d", movements.Code)
	}
}

func TestListOrdersRejectsMalformedBooleans(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	for _, query := range []string{"?voided=banana", "?completed_only=banana"} {
		rec := env.do(t, http.MethodGet, "/orders"+query, nil)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status for %s = %d, want 400", query, rec.Code)
		}
	}
}
