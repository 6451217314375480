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

// bootstrapService implements BootstrapService.
type bootstrapService struct {
	userRepo     db.UserRepository
	authAccounts db.AuthAccounts
	adminEmail   string
	adminPass    string
	logger       *zap.Logger
}

// NewBootstrapService creates a BootstrapService for the configured
// administrator credentials.
func NewBootstrapService(userRepo db.UserRepository, authAccounts db.AuthAccounts, adminEmail, adminPassword string, logger *zap.Logger) BootstrapService {
	return &bootstrapService{
		userRepo:     userRepo,
		authAccounts: authAccounts,
		adminEmail:   adminEmail,
		adminPass:    adminPassword,
		logger:       logger,
	}
}

// EnsureInitialAdmin seeds the designated administrator account. It is
// idempotent across restarts and devices:
//
//  1. a user document with the bootstrap email already exists → no-op;
//  2. otherwise create the auth account; if the account already exists
//     without its document (a recoverable half-created state), look the
//     account up by email instead;
//  3. ensure the document carries role=admin and isInitialAdmin, upgrading a
//     demoted or default document if needed.
//
// Account management happens through the Admin SDK, so no session is created
// that would need signing out afterwards.
func (s *bootstrapService) EnsureInitialAdmin(ctx context.Context) error {
	if s.adminEmail == "" || s.adminPass == "" {
		return errors.New("bootstrap admin credentials are not configured")
	}

	existing, err := s.userRepo.FindByEmail(ctx, s.adminEmail)
	if err == nil && existing != nil {
		s.logger.Debug("initial admin already present", zap.String("userID", existing.ID))
		return nil
	}
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		return fmt.Errorf("failed to query for initial admin: %w", err)
	}

	uid, err := s.authAccounts.Create(ctx, s.adminEmail, s.adminPass, "Administrator")
	if err != nil {
		if !errors.Is(err, db.ErrEmailExists) {
			return fmt.Errorf("failed to create initial admin account: %w", err)
		}
		// Auth account exists but its document does not: recover by lookup.
		uid, err = s.authAccounts.LookupByEmail(ctx, s.adminEmail)
		if err != nil {
			return fmt.Errorf("failed to recover existing initial admin account: %w", err)
		}
	}

	return s.ensureAdminDocument(ctx, uid)
}

// ensureAdminDocument creates or upgrades the admin's user document.
func (s *bootstrapService) ensureAdminDocument(ctx context.Context, uid string) error {
	user, err := s.userRepo.GetByID(ctx, uid)
	switch {
	case err == nil && user != nil:
		if user.Role == models.RoleAdmin && user.IsInitialAdmin {
			return nil
		}
		user.Role = models.RoleAdmin
		user.IsInitialAdmin = true
		if err := s.userRepo.Update(ctx, user); err != nil {
			return fmt.Errorf("failed to promote initial admin document: %w", err)
		}
		s.logger.Info("initial admin document promoted", zap.String("userID", uid))
		return nil

	case errors.Is(err, db.ErrNotFound):
		admin := &models.User{
			ID:             uid,
			Email:          s.adminEmail,
			DisplayName:    "Administrator",
			Name:           "Administrator",
			Role:           models.RoleAdmin,
			IsInitialAdmin: true,
			CreatedAt:      time.Now().UTC(),
		}
		if err := s.userRepo.Create(ctx, admin); err != nil {
			return fmt.Errorf("failed to create initial admin document: %w", err)
		}
		s.logger.Info("initial admin created", zap.String("userID", uid))
		return nil

	default:
		return fmt.Errorf("failed to read initial admin document: %w", err)
	}
}
