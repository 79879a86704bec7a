package ledger

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/jomarvillega/stockroom-backend/pkg/db/models"
	"github.com/jomarvillega/stockroom-backend/pkg/enums"
)

// Repository manages persistence for stock ledger entries. Entries are
// append-only; there are deliberately no update or delete methods.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, entry *models.StockEntry) error
	CreateBatch(ctx context.Context, entries []models.StockEntry) error
	ListByProduct(ctx context.Context, productID uuid.UUID, limit int) ([]models.StockEntry, error)
	ListByReference(ctx context.Context, refType enums.StockReference, refID uuid.UUID) ([]models.StockEntry, error)
	SumQuantityByType(ctx context.Context, productID uuid.UUID, entryType enums.StockEntryType) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, entry *models.StockEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) CreateBatch(ctx context.Context, entries []models.StockEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&entries).Error
}

func (r *repository) ListByProduct(ctx context.Context, productID uuid.UUID, limit int) ([]models.StockEntry, error) {
	var entries []models.StockEntry
	q := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) ListByReference(ctx context.Context, refType enums.StockReference, refID uuid.UUID) ([]models.StockEntry, error) {
	var entries []models.StockEntry
	if err := r.db.WithContext(ctx).
		Where("reference_type = ? AND reference_id = ?", refType, refID).
		Order("created_at ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) SumQuantityByType(ctx context.Context, productID uuid.UUID, entryType enums.StockEntryType) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.StockEntry{}).
		Select("COALESCE(SUM(quantity), 0)").
		Where("product_id = ? AND type = ?", productID, entryType).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}
