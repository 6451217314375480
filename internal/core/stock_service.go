package core

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"stocktrail-backend-go/internal/db"
	"stocktrail-backend-go/internal/models"
)

// stockService implements StockService.
type stockService struct {
	stockRepo db.StockRepository
	logger    *zap.Logger

	indexWarn sync.Once
}

// NewStockService creates a StockService.
func NewStockService(stockRepo db.StockRepository, logger *zap.Logger) StockService {
	return &stockService{stockRepo: stockRepo, logger: logger}
}

// UpdateStock gates on the role policy and then delegates to the
// transactional repository. Negative newStock values pass through unchecked;
// the stock floor is a caller-side domain decision.
func (s *stockService) UpdateStock(ctx context.Context, actor *models.User, productID string, newStock, newCartons int64, reason string) (*models.StockHistoryEntry, error) {
	if !IsAdmin(actor) {
		return nil, fmt.Errorf("update stock for product '%s': %w", productID, ErrForbidden)
	}

	actorID := ""
	if actor != nil {
		actorID = actor.ID
	}
	entry, err := s.stockRepo.UpdateStock(ctx, productID, newStock, newCartons, actorID, reason)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("update stock: %w", ErrProductNotFound)
		}
		return nil, fmt.Errorf("failed to update stock for product '%s': %w", productID, err)
	}

	s.logger.Info("stock updated",
		zap.String("productID", productID),
		zap.Int64("previousStock", entry.PreviousStock),
		zap.Int64("newStock", entry.NewStock),
		zap.Int64("changeAmount", entry.ChangeAmount),
		zap.String("actorID", actorID))
	return entry, nil
}

// HistoryByProduct reads the audit trail newest first. When the store
// rejects the sorted query for lack of its composite index, the unordered
// query is used instead and the entries are sorted here; the caller sees the
// same ordering either way.
func (s *stockService) HistoryByProduct(ctx context.Context, productID string) ([]*models.StockHistoryEntry, error) {
	entries, err := s.stockRepo.ListHistoryByProduct(ctx, productID)
	if err == nil {
		return entries, nil
	}
	if !errors.Is(err, db.ErrMissingIndex) {
		return nil, fmt.Errorf("failed to read stock history for product '%s': %w", productID, err)
	}

	s.indexWarn.Do(func() {
		s.logger.Warn("stock history query is missing its composite index; "+
			"sorting client-side. Create a permanent index on "+
			"(productId ASC, timestamp DESC) for the stockHistory collection.",
			zap.String("productID", productID))
	})

	entries, err = s.stockRepo.ListHistoryByProductUnordered(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to read stock history for product '%s': %w", productID, err)
	}
	models.SortHistoryNewestFirst(entries)
	return entries, nil
}

// WatchHistory streams the audit trail for a product. The repository applies
// the same missing-index fallback internally.
func (s *stockService) WatchHistory(ctx context.Context, productID string, fn func([]*models.StockHistoryEntry)) (*db.Subscription, error) {
	return s.stockRepo.WatchHistoryByProduct(ctx, productID, fn)
}
