package core

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"stocktrail-backend-go/internal/db"
	"stocktrail-backend-go/internal/models"
)

// identityService implements IdentityService over the user repository.
type identityService struct {
	userRepo            db.UserRepository
	bootstrapAdminEmail string
	logger              *zap.Logger
}

// NewIdentityService creates an IdentityService. bootstrapAdminEmail is the
// configured address whose first sign-in is promoted to admin.
func NewIdentityService(userRepo db.UserRepository, bootstrapAdminEmail string, logger *zap.Logger) IdentityService {
	return &identityService{
		userRepo:            userRepo,
		bootstrapAdminEmail: bootstrapAdminEmail,
		logger:              logger,
	}
}

// Resolve maps a verified auth event onto a user profile.
//
// The stored document is authoritative for role and audit fields, but the
// email and display name from the live auth event win in the returned record.
// A missing document is created with defaults; a failing store yields a
// minimal fallback record rather than an error, so the caller always ends up
// with a definite identity.
func (s *identityService) Resolve(ctx context.Context, subjectID, email, displayName string) (*models.User, bool) {
	user, err := s.userRepo.GetByID(ctx, subjectID)
	if err == nil && user != nil {
		if email != "" {
			user.Email = email
		}
		if displayName != "" {
			user.DisplayName = displayName
		}
		return user, false
	}

	if err != nil && !errors.Is(err, db.ErrNotFound) {
		s.logger.Warn("identity resolution degraded to fallback record",
			zap.String("subjectID", subjectID), zap.Error(err))
		return s.fallbackRecord(subjectID, email, displayName), false
	}

	// First sign-in: create the default profile.
	newUser := &models.User{
		ID:          subjectID,
		Email:       email,
		DisplayName: displayName,
		Name:        nameOrEmail(displayName, email),
		Role:        s.defaultRole(email),
		CreatedAt:   time.Now().UTC(),
	}
	if createErr := s.userRepo.Create(ctx, newUser); createErr != nil {
		s.logger.Warn("failed to persist first-sign-in profile, using fallback record",
			zap.String("subjectID", subjectID), zap.Error(createErr))
		return s.fallbackRecord(subjectID, email, displayName), false
	}
	return newUser, true
}

// defaultRole promotes the configured bootstrap address (case-sensitive
// comparison) and nothing else.
func (s *identityService) defaultRole(email string) string {
	if s.bootstrapAdminEmail != "" && email == s.bootstrapAdminEmail {
		return models.RoleAdmin
	}
	return models.RoleUser
}

func (s *identityService) fallbackRecord(subjectID, email, displayName string) *models.User {
	return &models.User{
		ID:          subjectID,
		Email:       email,
		DisplayName: displayName,
		Name:        nameOrEmail(displayName, email),
		Role:        s.defaultRole(email),
	}
}

func nameOrEmail(displayName, email string) string {
	if displayName != "" {
		return displayName
	}
	return email
}
