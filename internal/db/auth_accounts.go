package db

import (
	"context"
	"fmt"

	"firebase.google.com/go/v4/auth"
)

// firebaseAuthAccounts implements AuthAccounts on top of the Firebase Admin
// Auth client. The Admin SDK manages accounts directly; there is no session
// to establish or tear down.
type firebaseAuthAccounts struct {
	client *auth.Client
}

// NewFirebaseAuthAccounts creates an AuthAccounts backed by Firebase Auth.
func NewFirebaseAuthAccounts(client *auth.Client) AuthAccounts {
	if client == nil {
		panic("Firebase Auth client is not initialized for AuthAccounts")
	}
	return &firebaseAuthAccounts{client: client}
}

// Create provisions a new Firebase Auth account and returns its UID.
func (a *firebaseAuthAccounts) Create(ctx context.Context, email, password, displayName string) (string, error) {
	params := (&auth.UserToCreate{}).Email(email).Password(password)
	if displayName != "" {
		params = params.DisplayName(displayName)
	}
	record, err := a.client.CreateUser(ctx, params)
	if err != nil {
		if auth.IsEmailAlreadyExists(err) {
			return "", fmt.Errorf("auth account for '%s': %w", email, ErrEmailExists)
		}
		return "", fmt.Errorf("failed to create auth account for '%s': %w", email, err)
	}
	return record.UID, nil
}

// LookupByEmail resolves an existing Firebase Auth account's UID.
func (a *firebaseAuthAccounts) LookupByEmail(ctx context.Context, email string) (string, error) {
	record, err := a.client.GetUserByEmail(ctx, email)
	if err != nil {
		if auth.IsUserNotFound(err) {
			return "", fmt.Errorf("auth account for '%s': %w", email, ErrNotFound)
		}
		return "", fmt.Errorf("failed to look up auth account for '%s': %w", email, err)
	}
	return record.UID, nil
}
