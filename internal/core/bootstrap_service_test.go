package core_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"stocktrail-backend-go/internal/core"
	"stocktrail-backend-go/internal/models"
)

const (
	adminEmail = "owner@example.com"
	adminPass  = "changeme-123"
)

func newBootstrapFixture(t *testing.T) (*fakeStore, *fakeAuthAccounts, core.BootstrapService) {
	t.Helper()
	store := newFakeStore()
	accounts := newFakeAuthAccounts()
	svc := core.NewBootstrapService(&fakeUserRepo{store: store}, accounts, adminEmail, adminPass, zap.NewNop())
	return store, accounts, svc
}

func countInitialAdmins(store *fakeStore) int {
	store.mu.Lock()
	defer store.mu.Unlock()
	n := 0
	for _, u := range store.users {
		if u.IsInitialAdmin {
			n++
		}
	}
	return n
}

func TestEnsureInitialAdminSeedsAccountAndDocument(t *testing.T) {
	store, accounts, svc := newBootstrapFixture(t)

	require.NoError(t, svc.EnsureInitialAdmin(context.Background()))

	uid, err := accounts.LookupByEmail(context.Background(), adminEmail)
	require.NoError(t, err)

	store.mu.Lock()
	admin := store.users[uid]
	store.mu.Unlock()
	require.NotNil(t, admin)
	assert.Equal(t, adminEmail, admin.Email)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.True(t, admin.IsInitialAdmin)
}

func TestEnsureInitialAdminIsIdempotent(t *testing.T) {
	store, accounts, svc := newBootstrapFixture(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.EnsureInitialAdmin(ctx))
	}

	store.mu.Lock()
	assert.Len(t, store.users, 1, "repeated runs create no duplicate documents")
	store.mu.Unlock()
	assert.Equal(t, 1, countInitialAdmins(store))

	accounts.mu.Lock()
	assert.Len(t, accounts.accounts, 1, "repeated runs create no duplicate accounts")
	accounts.mu.Unlock()
}

// An auth account left over from an interrupted earlier run must be adopted,
// not treated as a conflict.
func TestEnsureInitialAdminRecoversHalfCreatedAccount(t *testing.T) {
	store, accounts, svc := newBootstrapFixture(t)
	accounts.mu.Lock()
	accounts.accounts[adminEmail] = "uid-leftover"
	accounts.mu.Unlock()

	require.NoError(t, svc.EnsureInitialAdmin(context.Background()))

	store.mu.Lock()
	admin := store.users["uid-leftover"]
	store.mu.Unlock()
	require.NotNil(t, admin, "document created for the recovered account")
	assert.True(t, admin.IsInitialAdmin)
}

func TestEnsureInitialAdminPromotesDemotedDocument(t *testing.T) {
	store, accounts, svc := newBootstrapFixture(t)
	accounts.mu.Lock()
	accounts.accounts[adminEmail] = "uid-1"
	accounts.mu.Unlock()
	created := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)
	store.mu.Lock()
	// Document exists under the account's uid but lost its admin role and
	// carries a different email, so the email lookup does not short-circuit.
	store.users["uid-1"] = &models.User{
		ID: "uid-1", Email: "renamed@example.com", Role: models.RoleUser,
		CreatedBy: "admin-0", CreatedAt: created,
	}
	store.mu.Unlock()

	require.NoError(t, svc.EnsureInitialAdmin(context.Background()))

	store.mu.Lock()
	admin := store.users["uid-1"]
	store.mu.Unlock()
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.True(t, admin.IsInitialAdmin)
	assert.Equal(t, created, admin.CreatedAt, "promotion merges, it does not rewrite audit fields")
	assert.Equal(t, "admin-0", admin.CreatedBy)
}

func TestEnsureInitialAdminRequiresCredentials(t *testing.T) {
	store := newFakeStore()
	svc := core.NewBootstrapService(&fakeUserRepo{store: store}, newFakeAuthAccounts(), "", "", zap.NewNop())

	assert.Error(t, svc.EnsureInitialAdmin(context.Background()))
}
