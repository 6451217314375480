package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stocktrail-backend-go/internal/core"
	"stocktrail-backend-go/internal/models"
)

// ResolveIdentity turns the verified token claims into a full user profile
// and stores it under CtxCurrentUser. Must run after VerifyToken.
func ResolveIdentity(identity core.IdentityService) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := c.GetString(CtxUserID)
		if uid == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication error: user ID not found in context"})
			return
		}
		user, _ := identity.Resolve(c.Request.Context(),
			uid, c.GetString(CtxUserEmail), c.GetString(CtxUserDisplayName))
		c.Set(CtxCurrentUser, user)
		c.Next()
	}
}

// RequireAdmin rejects requests whose resolved identity is not an admin.
// This is a presentation-layer convenience; the services re-check the role
// before every privileged store operation.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !core.IsAdmin(CurrentUser(c)) {
			c.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Error: "Admin role required"})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the identity resolved by ResolveIdentity, or nil.
func CurrentUser(c *gin.Context) *models.User {
	if v, ok := c.Get(CtxCurrentUser); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}
