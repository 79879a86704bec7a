package orders

import (
	"context"

	"github.com/google/uuid"

	"github.com/jomarvillega/stockroom-backend/pkg/pagination"
)

// Get returns a single order with its items and payment.
func (s *service) Get(ctx context.Context, orderID uuid.UUID) (*OrderView, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	view := ToOrderView(order)
	return &view, nil
}

// GetByOrderNumber is the POS lookup used before voiding a sale.
func (s *service) GetByOrderNumber(ctx context.Context, orderNumber string) (*OrderView, error) {
	order, err := s.repo.FindByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	view := ToOrderView(order)
	return &view, nil
}

// List returns one cursor page of orders matching the filters.
func (s *service) List(ctx context.Context, params pagination.Params, filters ListFilters) (*OrderPage, error) {
	return s.repo.List(ctx, params, filters)
}
