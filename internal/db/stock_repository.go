package db

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"stocktrail-backend-go/internal/models"
)

const stockHistoryCollection = "stockHistory"

// stockTxMaxAttempts bounds the store's transparent conflict retries. A
// transaction that still conflicts after this many attempts surfaces as an
// error to the caller.
const stockTxMaxAttempts = 5

// historyStream delivers successive decoded snapshots of one product's
// history. next blocks until the store pushes the next snapshot.
type historyStream interface {
	next() ([]*models.StockHistoryEntry, error)
	stop()
}

// openHistoryStreamFunc opens a history stream for a product, server-sorted
// newest first when ordered is true.
type openHistoryStreamFunc func(ctx context.Context, productID string, ordered bool) historyStream

// firestoreStockRepository implements StockRepository using Firestore
// transactions across the products and stockHistory collections.
type firestoreStockRepository struct {
	client *firestore.Client
	logger *zap.Logger

	openHistory openHistoryStreamFunc
	indexWarn   sync.Once // one-time diagnostic for the missing composite index
}

// NewFirestoreStockRepository creates a Firestore-backed StockRepository.
func NewFirestoreStockRepository(client *firestore.Client, logger *zap.Logger) StockRepository {
	if client == nil {
		panic("Firestore client is not initialized for StockRepository")
	}
	r := &firestoreStockRepository{client: client, logger: logger}
	r.openHistory = r.openFirestoreHistoryStream
	return r
}

// UpdateStock sets the product's counters and appends the matching history
// entry inside one transaction. The read of the current counters, the product
// update and the history insert all belong to the same attempt, so no observer
// can see one side of the pair without the other. Firestore retries the whole
// body on conflict up to stockTxMaxAttempts times.
func (r *firestoreStockRepository) UpdateStock(ctx context.Context, productID string, newStock, newCartons int64, actorID, reason string) (*models.StockHistoryEntry, error) {
	if productID == "" {
		return nil, errors.New("productID cannot be empty for UpdateStock operation")
	}

	var entry *models.StockHistoryEntry
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		productRef := r.client.Collection(productsCollection).Doc(productID)
		snap, err := tx.Get(productRef)
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return fmt.Errorf("product with ID '%s' not found: %w", productID, ErrNotFound)
			}
			return fmt.Errorf("failed to read product '%s' in transaction: %w", productID, err)
		}

		var current models.Product
		if err := snap.DataTo(&current); err != nil {
			return fmt.Errorf("failed to decode product '%s' in transaction: %w", productID, err)
		}

		// One timestamp shared by the counter update and the history entry.
		now := time.Now().UTC()

		if err := tx.Update(productRef, []firestore.Update{
			{Path: "stock", Value: newStock},
			{Path: "cartons", Value: newCartons},
			{Path: "lastUpdated", Value: now},
		}); err != nil {
			return fmt.Errorf("failed to update product counters for '%s': %w", productID, err)
		}

		historyRef := r.client.Collection(stockHistoryCollection).NewDoc()
		e := &models.StockHistoryEntry{
			ID:              historyRef.ID,
			ProductID:       productID,
			ProductName:     current.Name,
			PreviousStock:   current.Stock,
			NewStock:        newStock,
			PreviousCartons: current.Cartons,
			NewCartons:      newCartons,
			ChangeAmount:    newStock - current.Stock,
			UserID:          actorID,
			ChangeReason:    reason,
			Timestamp:       now,
		}
		if err := tx.Create(historyRef, e); err != nil {
			return fmt.Errorf("failed to append stock history for '%s': %w", productID, err)
		}

		entry = e
		return nil
	}, firestore.MaxAttempts(stockTxMaxAttempts))
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// ListHistoryByProduct returns a product's history ordered newest first,
// using Firestore's server-side sort. The combined filter+sort needs a
// composite index; its absence is reported as ErrMissingIndex so the caller
// can fall back to the unordered variant.
func (r *firestoreStockRepository) ListHistoryByProduct(ctx context.Context, productID string) ([]*models.StockHistoryEntry, error) {
	query := r.client.Collection(stockHistoryCollection).
		Where("productId", "==", productID).
		OrderBy("timestamp", firestore.Desc)
	entries, err := r.collectHistory(ctx, query, productID)
	if err != nil && isMissingIndex(err) {
		return nil, fmt.Errorf("sorted stock history query for '%s': %w", productID, ErrMissingIndex)
	}
	return entries, err
}

// ListHistoryByProductUnordered returns a product's history in store order.
func (r *firestoreStockRepository) ListHistoryByProductUnordered(ctx context.Context, productID string) ([]*models.StockHistoryEntry, error) {
	query := r.client.Collection(stockHistoryCollection).Where("productId", "==", productID)
	return r.collectHistory(ctx, query, productID)
}

func (r *firestoreStockRepository) collectHistory(ctx context.Context, query firestore.Query, productID string) ([]*models.StockHistoryEntry, error) {
	iter := query.Documents(ctx)
	defer iter.Stop()

	var entries []*models.StockHistoryEntry
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate stock history for '%s': %w", productID, err)
		}
		entry, err := decodeHistoryEntry(doc)
		if err != nil {
			r.logger.Warn("skipping undecodable stock history document",
				zap.String("docID", doc.Ref.ID), zap.Error(err))
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// WatchHistoryByProduct streams a product's history newest first. It starts
// with the server-sorted query; if Firestore rejects it for lack of the
// composite index, the stream restarts on the unordered query and entries are
// sorted here before delivery. Either way fn always receives entries in
// descending timestamp order.
func (r *firestoreStockRepository) WatchHistoryByProduct(ctx context.Context, productID string, fn func([]*models.StockHistoryEntry)) (*Subscription, error) {
	if productID == "" {
		return nil, errors.New("productID cannot be empty for WatchHistoryByProduct operation")
	}
	sub, watchCtx := newSubscription(ctx)

	go func() {
		defer close(sub.done)

		if done := r.pumpHistory(watchCtx, productID, true, fn); done {
			return
		}

		// Server-side sort unavailable; degrade to the filtered query and
		// sort each snapshot client-side.
		r.indexWarn.Do(func() {
			r.logger.Warn("stock history query is missing its composite index; "+
				"falling back to client-side sorting. Create a permanent index on "+
				"(productId ASC, timestamp DESC) for the stockHistory collection.",
				zap.String("productID", productID))
		})
		r.pumpHistory(watchCtx, productID, false, fn)
	}()

	return sub, nil
}

// pumpHistory delivers history snapshots to fn until the context is cancelled
// or the stream fails. It returns true when the stream is finished for good
// and false when the query needs the missing-index fallback. fn always
// receives entries newest first: either the store sorted them or this does.
func (r *firestoreStockRepository) pumpHistory(ctx context.Context, productID string, ordered bool, fn func([]*models.StockHistoryEntry)) bool {
	stream := r.openHistory(ctx, productID, ordered)
	defer stream.stop()

	for {
		entries, err := stream.next()
		if err != nil {
			if status.Code(err) == codes.Canceled || errors.Is(err, context.Canceled) {
				return true
			}
			if ordered && isMissingIndex(err) {
				return false
			}
			r.logger.Error("stock history subscription terminated",
				zap.String("productID", productID), zap.Error(err))
			return true
		}
		if !ordered {
			models.SortHistoryNewestFirst(entries)
		}
		fn(entries)
	}
}

// openFirestoreHistoryStream is the production openHistoryStreamFunc.
func (r *firestoreStockRepository) openFirestoreHistoryStream(ctx context.Context, productID string, ordered bool) historyStream {
	query := r.client.Collection(stockHistoryCollection).Where("productId", "==", productID)
	if ordered {
		query = query.OrderBy("timestamp", firestore.Desc)
	}
	return &firestoreHistoryStream{it: query.Snapshots(ctx), logger: r.logger}
}

// firestoreHistoryStream adapts a query snapshot iterator to historyStream.
type firestoreHistoryStream struct {
	it     *firestore.QuerySnapshotIterator
	logger *zap.Logger
}

func (s *firestoreHistoryStream) next() ([]*models.StockHistoryEntry, error) {
	for {
		snap, err := s.it.Next()
		if err != nil {
			return nil, err
		}
		docs, err := snap.Documents.GetAll()
		if err != nil {
			s.logger.Error("failed to read stock history snapshot", zap.Error(err))
			continue
		}
		entries := make([]*models.StockHistoryEntry, 0, len(docs))
		for _, doc := range docs {
			entry, err := decodeHistoryEntry(doc)
			if err != nil {
				s.logger.Warn("skipping undecodable stock history document",
					zap.String("docID", doc.Ref.ID), zap.Error(err))
				continue
			}
			entries = append(entries, entry)
		}
		return entries, nil
	}
}

func (s *firestoreHistoryStream) stop() { s.it.Stop() }

func decodeHistoryEntry(doc *firestore.DocumentSnapshot) (*models.StockHistoryEntry, error) {
	var entry models.StockHistoryEntry
	if err := doc.DataTo(&entry); err != nil {
		return nil, fmt.Errorf("failed to decode stock history data for ID '%s': %w", doc.Ref.ID, err)
	}
	entry.ID = doc.Ref.ID
	return &entry, nil
}
