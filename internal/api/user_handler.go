package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stocktrail-backend-go/internal/core"
	"stocktrail-backend-go/internal/models"
)

// UserHandler serves profile and admin user-management endpoints.
type UserHandler struct {
	users core.UserService
}

// NewUserHandler creates a UserHandler.
func NewUserHandler(users core.UserService) *UserHandler {
	return &UserHandler{users: users}
}

// UpdateProfile handles PUT /api/v1/users/me.
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	actor, ok := currentUserOr401(c)
	if !ok {
		return
	}
	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Details: err.Error()})
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), actor.ID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// ListUsers handles GET /api/v1/users. Admin only.
func (h *UserHandler) ListUsers(c *gin.Context) {
	actor, ok := currentUserOr401(c)
	if !ok {
		return
	}
	users, err := h.users.ListUsers(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// CreateUser handles POST /api/v1/users. Admin only.
func (h *UserHandler) CreateUser(c *gin.Context) {
	actor, ok := currentUserOr401(c)
	if !ok {
		return
	}
	var req models.CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Details: err.Error()})
		return
	}

	user, err := h.users.CreateUser(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

// DeleteUser handles DELETE /api/v1/users/:userId. Admin only. Removes the
// profile document; the auth account is untouched.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	actor, ok := currentUserOr401(c)
	if !ok {
		return
	}
	userID := c.Param("userId")
	if err := h.users.DeleteUser(c.Request.Context(), actor, userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "User profile deleted"})
}

// GetUser handles GET /api/v1/users/:userId. Admin only.
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.users.GetByID(c.Request.Context(), c.Param("userId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
