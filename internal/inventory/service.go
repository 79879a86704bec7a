package inventory

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/jomarvillega/stockroom-backend/internal/cache"
	"github.com/jomarvillega/stockroom-backend/internal/ledger"
	"github.com/jomarvillega/stockroom-backend/internal/products"
	"github.com/jomarvillega/stockroom-backend/pkg/db/models"
	"github.com/jomarvillega/stockroom-backend/pkg/enums"
	pkgerrors "github.com/jomarvillega/stockroom-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type invalidator interface {
	Invalidate(ctx context.Context, topics ...cache.Topic)
}

// readCache is the slice of the redis client the dashboard read path uses.
type readCache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	CacheKey(parts ...string) string
}

const stockListCacheKey = "inventory_levels"

// Service owns the write paths that touch inventory outside of order
// fulfillment, plus the dashboard read projection.
type Service interface {
	Restock(ctx context.Context, input RestockInput) (*models.Inventory, error)
	List(ctx context.Context, statusFilter *enums.InventoryStatus) ([]StockView, error)
}

// RestockInput captures a manual stock intake.
type RestockInput struct {
	ProductID   uuid.UUID
	Quantity    int
	Notes       *string
	ActorUserID uuid.UUID
}

// StockView is a ProductStock row with its derived availability status.
type StockView struct {
	ProductStock
	Status enums.InventoryStatus `json:"status"`
}

type service struct {
	tx       txRunner
	repo     Repository
	ledger   ledger.Repository
	products products.Repository
	cache    invalidator
	store    readCache
	cacheTTL time.Duration
}

// NewService builds the inventory service. The read cache is optional; when
// absent every List hits the database.
func NewService(tx txRunner, repo Repository, ledgerRepo ledger.Repository, productRepo products.Repository, cacheInv invalidator, store readCache, cacheTTL time.Duration) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if ledgerRepo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if productRepo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	return &service{
		tx:       tx,
		repo:     repo,
		ledger:   ledgerRepo,
		products: productRepo,
		cache:    cacheInv,
		store:    store,
		cacheTTL: cacheTTL,
	}, nil
}

func (s *service) Restock(ctx context.Context, input RestockInput) (*models.Inventory, error) {
	if input.ProductID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id required")
	}
	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "restock quantity must be at least 1")
	}

	var result *models.Inventory
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		ledgerRepo := s.ledger.WithTx(tx)

		product, err := s.products.WithTx(tx).FindByID(ctx, input.ProductID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		if err := repo.Restock(ctx, input.ProductID, input.Quantity, now); err != nil {
			return err
		}

		entry := models.StockEntry{
			ProductID:     product.ID,
			Type:          enums.StockEntryTypeIn,
			Quantity:      input.Quantity,
			UnitPrice:     product.Cost,
			TotalAmount:   product.Cost.Mul(decimal.NewFromInt(int64(input.Quantity))),
			ReferenceType: enums.StockReferenceRestock,
			Notes:         input.Notes,
		}
		if input.ActorUserID != uuid.Nil {
			actor := input.ActorUserID
			entry.UserID = &actor
		}
		if err := ledgerRepo.Create(ctx, &entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append restock ledger entry")
		}

		result, err = repo.GetByProductID(ctx, input.ProductID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, cache.TopicInventory, cache.TopicProduct)
	}
	return result, nil
}

func (s *service) List(ctx context.Context, statusFilter *enums.InventoryStatus) ([]StockView, error) {
	// Only the unfiltered list is cached; it is what the dashboard polls.
	// Eviction happens on every stock mutation, the TTL covers missed ones.
	cacheable := statusFilter == nil && s.store != nil
	if cacheable {
		if raw, err := s.store.Get(ctx, s.store.CacheKey(stockListCacheKey)); err == nil {
			var cached []StockView
			if err := json.Unmarshal([]byte(raw), &cached); err == nil {
				return cached, nil
			}
		}
	}

	rows, err := s.repo.ListWithProducts(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]StockView, 0, len(rows))
	for _, row := range rows {
		status := DeriveStatus(&models.Inventory{
			Quantity:     row.Quantity,
			ReorderLevel: row.ReorderLevel,
		})
		if statusFilter != nil && status != *statusFilter {
			continue
		}
		views = append(views, StockView{ProductStock: row, Status: status})
	}

	if cacheable {
		if payload, err := json.Marshal(views); err == nil {
			_ = s.store.Set(ctx, s.store.CacheKey(stockListCacheKey), payload, s.cacheTTL)
		}
	}
	return views, nil
}
