package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"stocktrail-backend-go/internal/cache"
	"stocktrail-backend-go/internal/db"
	"stocktrail-backend-go/internal/models"
)

const (
	groupListCacheKey    = "catalog:groups"
	productCountCacheKey = "catalog:productCount"
	catalogCacheTTL      = 30 * time.Second
)

// catalogService implements CatalogService. The cache is optional; a nil
// Cache disables read-through caching without changing behavior.
type catalogService struct {
	groupRepo   db.GroupRepository
	productRepo db.ProductRepository
	cache       *cache.Cache
	logger      *zap.Logger
}

// NewCatalogService creates a CatalogService.
func NewCatalogService(groupRepo db.GroupRepository, productRepo db.ProductRepository, c *cache.Cache, logger *zap.Logger) CatalogService {
	return &catalogService{
		groupRepo:   groupRepo,
		productRepo: productRepo,
		cache:       c,
		logger:      logger,
	}
}

// CreateGroup creates a product group. Admin only.
func (s *catalogService) CreateGroup(ctx context.Context, actor *models.User, req models.CreateGroupRequest) (*models.ProductGroup, error) {
	if !IsAdmin(actor) {
		return nil, fmt.Errorf("create product group: %w", ErrForbidden)
	}

	group := &models.ProductGroup{
		Name:        req.Name,
		Description: req.Description,
		CreatedAt:   time.Now().UTC(),
	}
	if _, err := s.groupRepo.Create(ctx, group); err != nil {
		return nil, fmt.Errorf("failed to create product group: %w", err)
	}
	s.invalidate(ctx, groupListCacheKey)
	return group, nil
}

// ListGroups returns all product groups, read-through cached.
func (s *catalogService) ListGroups(ctx context.Context) ([]*models.ProductGroup, error) {
	if s.cache == nil {
		return s.groupRepo.List(ctx)
	}
	groups, err := cache.GetOrLoadJSON(s.cache, ctx, groupListCacheKey, catalogCacheTTL,
		func(ctx context.Context) ([]*models.ProductGroup, error) {
			return s.groupRepo.List(ctx)
		})
	if err != nil {
		return nil, fmt.Errorf("failed to list product groups: %w", err)
	}
	return groups, nil
}

// WatchGroups streams the group collection.
func (s *catalogService) WatchGroups(ctx context.Context, fn func([]*models.ProductGroup)) (*db.Subscription, error) {
	return s.groupRepo.Watch(ctx, fn)
}

// CreateProduct creates a product. Admin only.
func (s *catalogService) CreateProduct(ctx context.Context, actor *models.User, req models.CreateProductRequest) (*models.Product, error) {
	if !IsAdmin(actor) {
		return nil, fmt.Errorf("create product: %w", ErrForbidden)
	}

	now := time.Now().UTC()
	product := &models.Product{
		GroupID:     req.GroupID,
		Name:        req.Name,
		MRP:         req.MRP,
		Unit:        req.Unit,
		Stock:       req.Stock,
		Cartons:     req.Cartons,
		Description: req.Description,
		ImageURI:    req.ImageURI,
		CreatedAt:   now,
		LastUpdated: now,
	}
	if _, err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}
	s.invalidate(ctx, productCountCacheKey)
	return product, nil
}

// GetProduct retrieves a product by ID.
func (s *catalogService) GetProduct(ctx context.Context, productID string) (*models.Product, error) {
	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("get product: %w", ErrProductNotFound)
		}
		return nil, fmt.Errorf("failed to get product '%s': %w", productID, err)
	}
	return product, nil
}

// ListProductsByGroup returns all products in a group.
func (s *catalogService) ListProductsByGroup(ctx context.Context, groupID string) ([]*models.Product, error) {
	return s.productRepo.ListByGroup(ctx, groupID)
}

// CountProducts returns the total product count, read-through cached.
func (s *catalogService) CountProducts(ctx context.Context) (int64, error) {
	if s.cache == nil {
		return s.productRepo.Count(ctx)
	}
	count, err := cache.GetOrLoadJSON(s.cache, ctx, productCountCacheKey, catalogCacheTTL,
		func(ctx context.Context) (int64, error) {
			return s.productRepo.Count(ctx)
		})
	if err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}

// DeleteProduct hard-deletes a product. Admin only. History entries for the
// product survive as orphaned audit rows.
func (s *catalogService) DeleteProduct(ctx context.Context, actor *models.User, productID string) error {
	if !IsAdmin(actor) {
		return fmt.Errorf("delete product: %w", ErrForbidden)
	}
	if err := s.productRepo.Delete(ctx, productID); err != nil {
		return fmt.Errorf("failed to delete product '%s': %w", productID, err)
	}
	s.invalidate(ctx, productCountCacheKey)
	s.logger.Info("product deleted",
		zap.String("productID", productID), zap.String("actorID", actor.ID))
	return nil
}

// WatchProductsByGroup streams a group's products.
func (s *catalogService) WatchProductsByGroup(ctx context.Context, groupID string, fn func([]*models.Product)) (*db.Subscription, error) {
	return s.productRepo.WatchByGroup(ctx, groupID, fn)
}

// WatchProduct streams a single product.
func (s *catalogService) WatchProduct(ctx context.Context, productID string, fn func(*models.Product)) (*db.Subscription, error) {
	return s.productRepo.WatchByID(ctx, productID, fn)
}

func (s *catalogService) invalidate(ctx context.Context, keys ...string) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, keys...)
	}
}
