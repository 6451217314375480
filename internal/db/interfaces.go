package db

import (
	"context"

	"stocktrail-backend-go/internal/models"
)

// UserRepository defines the interface for user profile storage operations.
type UserRepository interface {
	GetByID(ctx context.Context, userID string) (*models.User, error)
	// FindByEmail returns the first user document matching the email, or
	// ErrNotFound when none exists.
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, userID string) error
	List(ctx context.Context) ([]*models.User, error)
}

// GroupRepository defines the interface for product group storage operations.
type GroupRepository interface {
	Create(ctx context.Context, group *models.ProductGroup) (string, error)
	List(ctx context.Context) ([]*models.ProductGroup, error)
	// Watch streams the full group collection to fn on every change until the
	// returned subscription is cancelled.
	Watch(ctx context.Context, fn func([]*models.ProductGroup)) (*Subscription, error)
}

// ProductRepository defines the interface for product storage operations.
// Stock counters are deliberately absent here; they change only through
// StockRepository.UpdateStock.
type ProductRepository interface {
	Create(ctx context.Context, product *models.Product) (string, error)
	GetByID(ctx context.Context, productID string) (*models.Product, error)
	ListByGroup(ctx context.Context, groupID string) ([]*models.Product, error)
	Count(ctx context.Context) (int64, error)
	// Delete removes the product document only. History entries referencing
	// it are retained for audit.
	Delete(ctx context.Context, productID string) error
	WatchByGroup(ctx context.Context, groupID string, fn func([]*models.Product)) (*Subscription, error)
	WatchByID(ctx context.Context, productID string, fn func(*models.Product)) (*Subscription, error)
}

// StockRepository owns the transactional stock mutation and the audit trail
// reads over it.
type StockRepository interface {
	// UpdateStock atomically sets the product's stock/cartons counters and
	// appends a history entry carrying the previous values, the actor and a
	// shared timestamp. The pair commits together or not at all; conflicting
	// concurrent transactions on the same product are retried by the store.
	UpdateStock(ctx context.Context, productID string, newStock, newCartons int64, actorID, reason string) (*models.StockHistoryEntry, error)

	// ListHistoryByProduct returns the product's history ordered newest
	// first using a store-side sort. It returns ErrMissingIndex when the
	// composite index backing the sorted query is absent.
	ListHistoryByProduct(ctx context.Context, productID string) ([]*models.StockHistoryEntry, error)

	// ListHistoryByProductUnordered is the degraded variant used when the
	// composite index is missing; results arrive in store order.
	ListHistoryByProductUnordered(ctx context.Context, productID string) ([]*models.StockHistoryEntry, error)

	// WatchHistoryByProduct streams the product's history newest first. The
	// missing-index fallback is applied internally; fn always receives
	// correctly sorted entries.
	WatchHistoryByProduct(ctx context.Context, productID string, fn func([]*models.StockHistoryEntry)) (*Subscription, error)
}

// AuthAccounts abstracts the auth provider's account management used by the
// bootstrap seeder and admin user creation.
type AuthAccounts interface {
	// Create provisions a new credential and returns its subject ID. It
	// returns ErrEmailExists when the email is already registered.
	Create(ctx context.Context, email, password, displayName string) (string, error)
	// LookupByEmail resolves an existing account's subject ID, or ErrNotFound.
	LookupByEmail(ctx context.Context, email string) (string, error)
}
