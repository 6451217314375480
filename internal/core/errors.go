package core

import "errors"

// Sentinel errors shared by the core services. Handlers map these onto HTTP
// status codes.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrProductNotFound = errors.New("product not found")
	ErrForbidden       = errors.New("operation requires the admin role")
	ErrInvalidRole     = errors.New("invalid role value")
)
