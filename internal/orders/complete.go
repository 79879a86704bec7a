package orders

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/jomarvillega/stockroom-backend/internal/cache"
)

// Complete settles an existing pending or in-progress order. The stock was
// reserved at creation time, so completion only records the payment, flips
// the status, and appends the outbound ledger entries.
func (s *service) Complete(ctx context.Context, input CompleteOrderInput) (*Receipt, error) {
	if err := validatePayment(input.Payment); err != nil {
		return nil, err
	}

	start := time.Now()
	var receipt *Receipt
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		order, err := s.repo.WithTx(tx).FindByID(ctx, input.OrderID)
		if err != nil {
			return err
		}
		if err := s.completeTx(ctx, tx, order, input.Payment, input.ActorUserID); err != nil {
			return err
		}
		receipt = receiptFor(order)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncCompleted()
	s.metrics.ObserveDuration("complete", time.Since(start))
	if s.cache != nil {
		s.cache.Invalidate(ctx, cache.TopicOrder, cache.TopicInventory)
	}
	return receipt, nil
}
