package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stocktrail-backend-go/internal/core"
	"stocktrail-backend-go/internal/middleware"
	"stocktrail-backend-go/internal/models"
)

// IdentityHandler serves the endpoints around identity resolution.
type IdentityHandler struct {
	identity core.IdentityService
}

// NewIdentityHandler creates an IdentityHandler.
func NewIdentityHandler(identity core.IdentityService) *IdentityHandler {
	return &IdentityHandler{identity: identity}
}

// InitializeProfile handles POST /api/v1/users/initialize. Clients call it
// after a Firebase sign-in event so the backend profile exists before any
// other call. Returns 201 when the profile was created on this call.
func (h *IdentityHandler) InitializeProfile(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserID)
	if uid == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication error: user ID not found in context"})
		return
	}

	user, created := h.identity.Resolve(c.Request.Context(),
		uid,
		c.GetString(middleware.CtxUserEmail),
		c.GetString(middleware.CtxUserDisplayName))
	if created {
		c.JSON(http.StatusCreated, user)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Me handles GET /api/v1/users/me, returning the resolved identity.
func (h *IdentityHandler) Me(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Identity not resolved"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// currentUserOr401 fetches the resolved identity or rejects the request.
func currentUserOr401(c *gin.Context) (*models.User, bool) {
	user := middleware.CurrentUser(c)
	if user == nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Identity not resolved"})
		return nil, false
	}
	return user, true
}
