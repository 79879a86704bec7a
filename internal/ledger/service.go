package ledger

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jomarvillega/stockroom-backend/pkg/db/models"
	"github.com/jomarvillega/stockroom-backend/pkg/enums"
)

// Service exposes the audit read side of the stock ledger.
type Service interface {
	Movements(ctx context.Context, productID uuid.UUID, limit int) ([]models.StockEntry, error)
	Summary(ctx context.Context, productID uuid.UUID) (*MovementSummary, error)
}

// MovementSummary aggregates lifetime ledger flow for a product.
type MovementSummary struct {
	ProductID uuid.UUID `json:"product_id"`
	TotalIn   int64     `json:"total_in"`
	TotalOut  int64     `json:"total_out"`
}

type service struct {
	repo Repository
}

// NewService wires a ledger service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Movements(ctx context.Context, productID uuid.UUID, limit int) ([]models.StockEntry, error) {
	if productID == uuid.Nil {
		return nil, fmt.Errorf("product id is required")
	}
	return s.repo.ListByProduct(ctx, productID, limit)
}

func (s *service) Summary(ctx context.Context, productID uuid.UUID) (*MovementSummary, error) {
	if productID == uuid.Nil {
		return nil, fmt.Errorf("product id is required")
	}
	totalIn, err := s.repo.SumQuantityByType(ctx, productID, enums.StockEntryTypeIn)
	if err != nil {
		return nil, err
	}
	totalOut, err := s.repo.SumQuantityByType(ctx, productID, enums.StockEntryTypeOut)
	if err != nil {
		return nil, err
	}
	return &MovementSummary{
		ProductID: productID,
		TotalIn:   totalIn,
		TotalOut:  totalOut,
	}, nil
}
