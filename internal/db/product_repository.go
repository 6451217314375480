package db

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"stocktrail-backend-go/internal/models"
)

const productsCollection = "products"

// firestoreProductRepository implements ProductRepository using Firestore.
type firestoreProductRepository struct {
	client *firestore.Client
	logger *zap.Logger
}

// NewFirestoreProductRepository creates a Firestore-backed ProductRepository.
func NewFirestoreProductRepository(client *firestore.Client, logger *zap.Logger) ProductRepository {
	if client == nil {
		panic("Firestore client is not initialized for ProductRepository")
	}
	return &firestoreProductRepository{client: client, logger: logger}
}

// Create adds a new product with an auto-generated document ID and returns
// that ID.
func (r *firestoreProductRepository) Create(ctx context.Context, product *models.Product) (string, error) {
	docRef := r.client.Collection(productsCollection).NewDoc()
	product.ID = docRef.ID
	if _, err := docRef.Create(ctx, product); err != nil {
		return "", fmt.Errorf("failed to create product: %w", err)
	}
	return docRef.ID, nil
}

// GetByID retrieves a product document by its ID.
func (r *firestoreProductRepository) GetByID(ctx context.Context, productID string) (*models.Product, error) {
	if productID == "" {
		return nil, errors.New("productID cannot be empty for GetByID operation")
	}
	docSnap, err := r.client.Collection(productsCollection).Doc(productID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("product with ID '%s' not found: %w", productID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get product with ID '%s': %w", productID, err)
	}
	return decodeProduct(docSnap)
}

// ListByGroup returns all products with the given groupId.
func (r *firestoreProductRepository) ListByGroup(ctx context.Context, groupID string) ([]*models.Product, error) {
	if groupID == "" {
		return nil, errors.New("groupID cannot be empty for ListByGroup operation")
	}
	iter := r.client.Collection(productsCollection).Where("groupId", "==", groupID).Documents(ctx)
	defer iter.Stop()

	var products []*models.Product
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate products for group '%s': %w", groupID, err)
		}
		product, err := decodeProduct(doc)
		if err != nil {
			r.logger.Warn("skipping undecodable product document",
				zap.String("docID", doc.Ref.ID), zap.Error(err))
			continue
		}
		products = append(products, product)
	}
	return products, nil
}

// Count returns the total number of product documents.
func (r *firestoreProductRepository) Count(ctx context.Context) (int64, error) {
	iter := r.client.Collection(productsCollection).Documents(ctx)
	defer iter.Stop()

	var count int64
	for {
		_, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("failed to iterate products for counting: %w", err)
		}
		count++
	}
	return count, nil
}

// Delete removes a product document. History entries referencing the product
// are intentionally left in place for the audit trail.
func (r *firestoreProductRepository) Delete(ctx context.Context, productID string) error {
	if productID == "" {
		return errors.New("productID cannot be empty for Delete operation")
	}
	_, err := r.client.Collection(productsCollection).Doc(productID).Delete(ctx)
	if err != nil {
		return fmt.Errorf("failed to delete product with ID '%s': %w", productID, err)
	}
	return nil
}

// WatchByGroup streams the products of a group on every change.
func (r *firestoreProductRepository) WatchByGroup(ctx context.Context, groupID string, fn func([]*models.Product)) (*Subscription, error) {
	if groupID == "" {
		return nil, errors.New("groupID cannot be empty for WatchByGroup operation")
	}
	sub, watchCtx := newSubscription(ctx)

	go func() {
		defer close(sub.done)
		it := r.client.Collection(productsCollection).Where("groupId", "==", groupID).Snapshots(watchCtx)
		defer it.Stop()

		for {
			snap, err := it.Next()
			if err != nil {
				if status.Code(err) == codes.Canceled || errors.Is(err, context.Canceled) {
					return
				}
				r.logger.Error("product subscription terminated",
					zap.String("groupID", groupID), zap.Error(err))
				return
			}
			docs, err := snap.Documents.GetAll()
			if err != nil {
				r.logger.Error("failed to read product snapshot", zap.Error(err))
				continue
			}
			products := make([]*models.Product, 0, len(docs))
			for _, doc := range docs {
				product, err := decodeProduct(doc)
				if err != nil {
					r.logger.Warn("skipping undecodable product document",
						zap.String("docID", doc.Ref.ID), zap.Error(err))
					continue
				}
				products = append(products, product)
			}
			fn(products)
		}
	}()

	return sub, nil
}

// WatchByID streams a single product document on every change. fn receives
// nil when the document is deleted.
func (r *firestoreProductRepository) WatchByID(ctx context.Context, productID string, fn func(*models.Product)) (*Subscription, error) {
	if productID == "" {
		return nil, errors.New("productID cannot be empty for WatchByID operation")
	}
	sub, watchCtx := newSubscription(ctx)

	go func() {
		defer close(sub.done)
		it := r.client.Collection(productsCollection).Doc(productID).Snapshots(watchCtx)
		defer it.Stop()

		for {
			snap, err := it.Next()
			if err != nil {
				if status.Code(err) == codes.Canceled || errors.Is(err, context.Canceled) {
					return
				}
				r.logger.Error("single product subscription terminated",
					zap.String("productID", productID), zap.Error(err))
				return
			}
			if !snap.Exists() {
				fn(nil)
				continue
			}
			product, err := decodeProduct(snap)
			if err != nil {
				r.logger.Warn("skipping undecodable product snapshot",
					zap.String("productID", productID), zap.Error(err))
				continue
			}
			fn(product)
		}
	}()

	return sub, nil
}

func decodeProduct(doc *firestore.DocumentSnapshot) (*models.Product, error) {
	var product models.Product
	if err := doc.DataTo(&product); err != nil {
		return nil, fmt.Errorf("failed to decode product data for ID '%s': %w", doc.Ref.ID, err)
	}
	product.ID = doc.Ref.ID
	return &product, nil
}
