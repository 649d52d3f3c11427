package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"storefront/internal/domain"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// StockAdjuster lowers variant stock for the items of a verified order.
type StockAdjuster interface {
	Apply(ctx context.Context, orderID int64, items []domain.OrderItem) error
}

type stockAdjuster struct {
	productRepo domain.ProductRepository
	workers     int
	log         *logrus.Logger
}

func NewStockAdjuster(productRepo domain.ProductRepository, workers int, logger *logrus.Logger) StockAdjuster {
	if workers < 1 {
		workers = 1
	}
	return &stockAdjuster{
		productRepo: productRepo,
		workers:     workers,
		log:         logger,
	}
}

// Apply decrements every item independently. Items whose product, colour or
// tracked quantity is missing are skipped. Failures of single items do not stop
// the others and come back joined.
func (s *stockAdjuster) Apply(ctx context.Context, orderID int64, items []domain.OrderItem) error {
	var (
		mu   sync.Mutex
		errs []error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for _, item := range items {
		g.Go(func() error {
			applied, err := s.productRepo.DecrementColorStock(gctx, item.ProductID, item.Color, item.Quantity)
			if err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("product %d color '%s': %w", item.ProductID, item.Color, err))
				mu.Unlock()
				return nil
			}
			if !applied {
				s.log.Debugf("Use Case: Order %d: skipped stock for product %d color '%s' (missing or untracked)", orderID, item.ProductID, item.Color)
				return nil
			}
			s.log.Debugf("Use Case: Order %d: decremented product %d color '%s' by %d", orderID, item.ProductID, item.Color, item.Quantity)
			return nil
		})
	}
	_ = g.Wait()

	if len(errs) > 0 {
		return fmt.Errorf("stock adjustment for order %d failed for %d of %d items: %w", orderID, len(errs), len(items), errors.Join(errs...))
	}
	s.log.Infof("Use Case: Stock adjusted for order %d (%d items)", orderID, len(items))
	return nil
}
