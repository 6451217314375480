package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"stocktrail-backend-go/internal/core"
	"stocktrail-backend-go/internal/db"
)

// respondError maps service-layer errors onto HTTP status codes. Unknown
// errors become a 500 with the wrapped message in the details field.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, core.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{Error: "Admin role required"})
	case errors.Is(err, core.ErrProductNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Product not found"})
	case errors.Is(err, core.ErrUserNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "User not found"})
	case errors.Is(err, core.ErrInvalidRole):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid role", Details: err.Error()})
	case errors.Is(err, db.ErrEmailExists):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "Email already in use"})
	case errors.Is(err, db.ErrNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Not found"})
	default:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Internal error", Details: err.Error()})
	}
}
