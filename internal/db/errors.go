package db

import (
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var (
	// ErrNotFound is returned when a referenced document does not exist.
	ErrNotFound = errors.New("document not found")

	// ErrMissingIndex is returned when Firestore rejects a combined
	// filter+sort query because the required composite index has not been
	// created. Callers are expected to fall back to the unordered variant of
	// the query and sort client-side.
	ErrMissingIndex = errors.New("required composite index is missing")

	// ErrEmailExists is returned when an auth account with the given email
	// already exists.
	ErrEmailExists = errors.New("email already in use")
)

// isMissingIndex reports whether err is Firestore's failed-precondition
// response for a query that needs a composite index.
func isMissingIndex(err error) bool {
	return status.Code(err) == codes.FailedPrecondition
}
