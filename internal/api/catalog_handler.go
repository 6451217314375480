package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stocktrail-backend-go/internal/core"
	"stocktrail-backend-go/internal/models"
)

// CatalogHandler serves product group and product endpoints.
type CatalogHandler struct {
	catalog core.CatalogService
}

// NewCatalogHandler creates a CatalogHandler.
func NewCatalogHandler(catalog core.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// CreateGroup handles POST /api/v1/groups. Admin only.
func (h *CatalogHandler) CreateGroup(c *gin.Context) {
	actor, ok := currentUserOr401(c)
	if !ok {
		return
	}
	var req models.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Details: err.Error()})
		return
	}

	group, err := h.catalog.CreateGroup(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, group)
}

// ListGroups handles GET /api/v1/groups.
func (h *CatalogHandler) ListGroups(c *gin.Context) {
	groups, err := h.catalog.ListGroups(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if groups == nil {
		groups = []*models.ProductGroup{}
	}
	c.JSON(http.StatusOK, groups)
}

// CreateProduct handles POST /api/v1/products. Admin only.
func (h *CatalogHandler) CreateProduct(c *gin.Context) {
	actor, ok := currentUserOr401(c)
	if !ok {
		return
	}
	var req models.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Details: err.Error()})
		return
	}

	product, err := h.catalog.CreateProduct(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, product)
}

// GetProduct handles GET /api/v1/products/:productId.
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	product, err := h.catalog.GetProduct(c.Request.Context(), c.Param("productId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, product)
}

// ListProductsByGroup handles GET /api/v1/groups/:groupId/products.
func (h *CatalogHandler) ListProductsByGroup(c *gin.Context) {
	products, err := h.catalog.ListProductsByGroup(c.Request.Context(), c.Param("groupId"))
	if err != nil {
		respondError(c, err)
		return
	}
	if products == nil {
		products = []*models.Product{}
	}
	c.JSON(http.StatusOK, products)
}

// CountProducts handles GET /api/v1/products/count.
func (h *CatalogHandler) CountProducts(c *gin.Context) {
	count, err := h.catalog.CountProducts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, CountResponse{Count: count})
}

// DeleteProduct handles DELETE /api/v1/products/:productId. Admin only.
func (h *CatalogHandler) DeleteProduct(c *gin.Context) {
	actor, ok := currentUserOr401(c)
	if !ok {
		return
	}
	if err := h.catalog.DeleteProduct(c.Request.Context(), actor, c.Param("productId")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Product deleted"})
}
