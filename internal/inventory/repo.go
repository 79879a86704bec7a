package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jomarvillega/stockroom-backend/pkg/db"
	"github.com/jomarvillega/stockroom-backend/pkg/db/models"
	pkgerrors "github.com/jomarvillega/stockroom-backend/pkg/errors"
)

// Repository mutates inventory rows through single atomic statements so the
// quantity >= 0 invariant holds under concurrent terminals without explicit
// row locks held across round trips.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	GetByProductID(ctx context.Context, productID uuid.UUID) (*models.Inventory, error)
	ListWithProducts(ctx context.Context) ([]ProductStock, error)
	Reserve(ctx context.Context, productID uuid.UUID, qty int) (ok bool, available int, err error)
	Restore(ctx context.Context, productID uuid.UUID, qty int) error
	Restock(ctx context.Context, productID uuid.UUID, qty int, at time.Time) error
}

// ProductStock is the joined inventory/catalog row the dashboard lists.
type ProductStock struct {
	ProductID       uuid.UUID  `json:"product_id"`
	ProductName     string     `json:"product_name"`
	CategoryName    string     `json:"category_name"`
	Quantity        int        `json:"quantity"`
	ReorderLevel    int        `json:"reorder_level"`
	ReorderQuantity int        `json:"reorder_quantity"`
	LastRestockDate *time.Time `json:"last_restock_date"`
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an inventory repository backed by the provided DB.
func NewRepository(gdb *gorm.DB) Repository {
	return &repository{db: gdb}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) GetByProductID(ctx context.Context, productID uuid.UUID) (*models.Inventory, error) {
	var inv models.Inventory
	err := r.db.WithContext(ctx).Where("product_id = ?", productID).First(&inv).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "inventory not found").
				WithDetails(map[string]any{"product_id": productID})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inventory")
	}
	return &inv, nil
}

func (r *repository) ListWithProducts(ctx context.Context) ([]ProductStock, error) {
	var rows []ProductStock
	err := r.db.WithContext(ctx).
		Table("inventories").
		Select(`inventories.product_id,
			products.name AS product_name,
			products.category_name,
			inventories.quantity,
			inventories.reorder_level,
			inventories.reorder_quantity,
			inventories.last_restock_date`).
		Joins("JOIN products ON products.id = inventories.product_id").
		Order("products.name ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list inventory")
	}
	return rows, nil
}

// Reserve decrements quantity iff enough stock is on hand. The compare and
// the decrement are one statement, so two concurrent reservations can never
// both pass the check against the same units. ok=false reports the shortfall
// together with the quantity actually available.
func (r *repository) Reserve(ctx context.Context, productID uuid.UUID, qty int) (bool, int, error) {
	if qty <= 0 {
		return false, 0, pkgerrors.New(pkgerrors.CodeValidation, "reserve quantity must be positive")
	}

	res := r.db.WithContext(ctx).Exec(`
		UPDATE inventories
		SET quantity = quantity - ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE product_id = ? AND quantity >= ?
	`, qty, productID, qty)
	if res.Error != nil {
		if db.IsLockTimeout(res.Error) {
			return false, 0, pkgerrors.Wrap(pkgerrors.CodeContention, res.Error, "inventory row contended").
				WithDetails(map[string]any{"product_id": productID})
		}
		return false, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "reserve stock")
	}
	if res.RowsAffected > 0 {
		return true, 0, nil
	}

	inv, err := r.GetByProductID(ctx, productID)
	if err != nil {
		return false, 0, err
	}
	return false, inv.Quantity, nil
}

// Restore unconditionally returns units to stock; used by void, order delete,
// and item replacement.
func (r *repository) Restore(ctx context.Context, productID uuid.UUID, qty int) error {
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "restore quantity must be positive")
	}

	res := r.db.WithContext(ctx).Exec(`
		UPDATE inventories
		SET quantity = quantity + ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE product_id = ?
	`, qty, productID)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "restore stock")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "inventory not found").
			WithDetails(map[string]any{"product_id": productID})
	}
	return nil
}

// Restock increments quantity and stamps the restock metadata.
func (r *repository) Restock(ctx context.Context, productID uuid.UUID, qty int, at time.Time) error {
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "restock quantity must be positive")
	}

	res := r.db.WithContext(ctx).Exec(`
		UPDATE inventories
		SET quantity = quantity + ?,
			last_restock_date = ?,
			last_restock_quantity = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE product_id = ?
	`, qty, at, qty, productID)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "restock inventory")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "inventory not found").
			WithDetails(map[string]any{"product_id": productID})
	}
	return nil
}
