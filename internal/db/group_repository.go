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

const productGroupsCollection = "productGroups"

// firestoreGroupRepository implements GroupRepository using Firestore.
type firestoreGroupRepository struct {
	client *firestore.Client
	logger *zap.Logger
}

// NewFirestoreGroupRepository creates a Firestore-backed GroupRepository.
func NewFirestoreGroupRepository(client *firestore.Client, logger *zap.Logger) GroupRepository {
	if client == nil {
		panic("Firestore client is not initialized for GroupRepository")
	}
	return &firestoreGroupRepository{client: client, logger: logger}
}

// Create adds a new product group with an auto-generated document ID and
// returns that ID.
func (r *firestoreGroupRepository) Create(ctx context.Context, group *models.ProductGroup) (string, error) {
	docRef := r.client.Collection(productGroupsCollection).NewDoc()
	group.ID = docRef.ID
	if _, err := docRef.Create(ctx, group); err != nil {
		return "", fmt.Errorf("failed to create product group: %w", err)
	}
	return docRef.ID, nil
}

// List returns all product groups.
func (r *firestoreGroupRepository) List(ctx context.Context) ([]*models.ProductGroup, error) {
	iter := r.client.Collection(productGroupsCollection).Documents(ctx)
	defer iter.Stop()

	var groups []*models.ProductGroup
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate product groups: %w", err)
		}
		group, err := decodeGroup(doc)
		if err != nil {
			r.logger.Warn("skipping undecodable product group document",
				zap.String("docID", doc.Ref.ID), zap.Error(err))
			continue
		}
		groups = append(groups, group)
	}
	return groups, nil
}

// Watch streams the full group collection on every change.
func (r *firestoreGroupRepository) Watch(ctx context.Context, fn func([]*models.ProductGroup)) (*Subscription, error) {
	sub, watchCtx := newSubscription(ctx)

	go func() {
		defer close(sub.done)
		it := r.client.Collection(productGroupsCollection).Snapshots(watchCtx)
		defer it.Stop()

		for {
			snap, err := it.Next()
			if err != nil {
				if status.Code(err) == codes.Canceled || errors.Is(err, context.Canceled) {
					return
				}
				r.logger.Error("product group subscription terminated", zap.Error(err))
				return
			}
			docs, err := snap.Documents.GetAll()
			if err != nil {
				r.logger.Error("failed to read product group snapshot", zap.Error(err))
				continue
			}
			groups := make([]*models.ProductGroup, 0, len(docs))
			for _, doc := range docs {
				group, err := decodeGroup(doc)
				if err != nil {
					r.logger.Warn("skipping undecodable product group document",
						zap.String("docID", doc.Ref.ID), zap.Error(err))
					continue
				}
				groups = append(groups, group)
			}
			fn(groups)
		}
	}()

	return sub, nil
}

func decodeGroup(doc *firestore.DocumentSnapshot) (*models.ProductGroup, error) {
	var group models.ProductGroup
	if err := doc.DataTo(&group); err != nil {
		return nil, err
	}
	group.ID = doc.Ref.ID
	return &group, nil
}
