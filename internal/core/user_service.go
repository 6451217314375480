package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"stocktrail-backend-go/internal/db"
	"stocktrail-backend-go/internal/models"
)

// userService implements UserService.
type userService struct {
	userRepo     db.UserRepository
	authAccounts db.AuthAccounts
	logger       *zap.Logger
}

// NewUserService creates a UserService.
func NewUserService(userRepo db.UserRepository, authAccounts db.AuthAccounts, logger *zap.Logger) UserService {
	return &userService{userRepo: userRepo, authAccounts: authAccounts, logger: logger}
}

// GetByID retrieves a user profile.
func (s *userService) GetByID(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: ID '%s'", ErrUserNotFound, userID)
		}
		return nil, fmt.Errorf("failed to get user '%s': %w", userID, err)
	}
	return user, nil
}

// RoleOf returns the stored role of a user, defaulting to RoleUser for a
// profile without one.
func (s *userService) RoleOf(ctx context.Context, userID string) (string, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user.Role == "" {
		return models.RoleUser, nil
	}
	return user.Role, nil
}

// UpdateProfile merges the provided fields into the caller's own profile.
// Last-writer-wins; no transaction needed for profile metadata.
func (s *userService) UpdateProfile(ctx context.Context, userID string, req models.UpdateProfileRequest) (*models.User, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.DisplayName != nil {
		user.DisplayName = *req.DisplayName
	}
	user.LastUpdated = time.Now().UTC()

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update profile for '%s': %w", userID, err)
	}
	return user, nil
}

// ListUsers returns all user profiles. Admin only.
func (s *userService) ListUsers(ctx context.Context, actor *models.User) ([]*models.User, error) {
	if !IsAdmin(actor) {
		return nil, fmt.Errorf("list users: %w", ErrForbidden)
	}
	return s.userRepo.List(ctx)
}

// CreateUser provisions an auth account plus its profile document on behalf
// of an administrator. The created account is never signed in here; account
// management through the Admin SDK carries no session.
func (s *userService) CreateUser(ctx context.Context, actor *models.User, req models.CreateUserRequest) (*models.User, error) {
	if !IsAdmin(actor) {
		return nil, fmt.Errorf("create user: %w", ErrForbidden)
	}

	role := req.Role
	switch role {
	case "":
		role = models.RoleUser
	case models.RoleAdmin, models.RoleUser:
	default:
		return nil, fmt.Errorf("%w: '%s'", ErrInvalidRole, req.Role)
	}

	uid, err := s.authAccounts.Create(ctx, req.Email, req.Password, req.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to create auth account: %w", err)
	}

	user := &models.User{
		ID:          uid,
		Email:       req.Email,
		DisplayName: req.Name,
		Name:        req.Name,
		Role:        role,
		CreatedBy:   actor.ID,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user profile for '%s': %w", uid, err)
	}

	s.logger.Info("user created by admin",
		zap.String("userID", uid), zap.String("role", role), zap.String("actorID", actor.ID))
	return user, nil
}

// DeleteUser removes a user's profile document. Admin only. The auth account
// stays; the subject can still authenticate and will get a fresh default
// profile on next sign-in.
func (s *userService) DeleteUser(ctx context.Context, actor *models.User, userID string) error {
	if !IsAdmin(actor) {
		return fmt.Errorf("delete user: %w", ErrForbidden)
	}
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete user '%s': %w", userID, err)
	}
	s.logger.Info("user profile deleted",
		zap.String("userID", userID), zap.String("actorID", actor.ID))
	return nil
}
