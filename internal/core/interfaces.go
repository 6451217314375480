package core

import (
	"context"

	"stocktrail-backend-go/internal/db"
	"stocktrail-backend-go/internal/models"
)

// IdentityService resolves an authenticated subject to an application user
// profile.
type IdentityService interface {
	// Resolve loads (or creates on first sign-in) the user profile for the
	// given auth subject. The live email and display name from the auth
	// event take precedence in the returned record. Resolve never fails:
	// on a store error it returns a minimal fallback record so callers are
	// never left without an identity. The boolean reports whether a new
	// profile document was created.
	Resolve(ctx context.Context, subjectID, email, displayName string) (*models.User, bool)
}

// StockService owns the stock mutation protocol and the audit trail reads.
type StockService interface {
	// UpdateStock atomically applies the counter change and its history
	// entry. Requires the admin role.
	UpdateStock(ctx context.Context, actor *models.User, productID string, newStock, newCartons int64, reason string) (*models.StockHistoryEntry, error)

	// HistoryByProduct returns the product's history newest first, applying
	// the missing-index fallback transparently.
	HistoryByProduct(ctx context.Context, productID string) ([]*models.StockHistoryEntry, error)

	// WatchHistory streams the product's history newest first.
	WatchHistory(ctx context.Context, productID string, fn func([]*models.StockHistoryEntry)) (*db.Subscription, error)
}

// CatalogService manages product groups and products.
type CatalogService interface {
	CreateGroup(ctx context.Context, actor *models.User, req models.CreateGroupRequest) (*models.ProductGroup, error)
	ListGroups(ctx context.Context) ([]*models.ProductGroup, error)
	WatchGroups(ctx context.Context, fn func([]*models.ProductGroup)) (*db.Subscription, error)

	CreateProduct(ctx context.Context, actor *models.User, req models.CreateProductRequest) (*models.Product, error)
	GetProduct(ctx context.Context, productID string) (*models.Product, error)
	ListProductsByGroup(ctx context.Context, groupID string) ([]*models.Product, error)
	CountProducts(ctx context.Context) (int64, error)
	DeleteProduct(ctx context.Context, actor *models.User, productID string) error
	WatchProductsByGroup(ctx context.Context, groupID string, fn func([]*models.Product)) (*db.Subscription, error)
	WatchProduct(ctx context.Context, productID string, fn func(*models.Product)) (*db.Subscription, error)
}

// UserService covers profile access and admin-side user management.
type UserService interface {
	GetByID(ctx context.Context, userID string) (*models.User, error)
	RoleOf(ctx context.Context, userID string) (string, error)
	UpdateProfile(ctx context.Context, userID string, req models.UpdateProfileRequest) (*models.User, error)

	ListUsers(ctx context.Context, actor *models.User) ([]*models.User, error)
	CreateUser(ctx context.Context, actor *models.User, req models.CreateUserRequest) (*models.User, error)
	// DeleteUser removes the profile document only; the auth provider
	// account is deliberately left untouched.
	DeleteUser(ctx context.Context, actor *models.User, userID string) error
}

// BootstrapService seeds the designated administrator account.
type BootstrapService interface {
	// EnsureInitialAdmin is idempotent and safe to call on every start.
	EnsureInitialAdmin(ctx context.Context) error
}
