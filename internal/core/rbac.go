package core

import "stocktrail-backend-go/internal/models"

// IsAdmin reports whether the resolved identity may perform privileged
// operations. A nil (unresolved or signed-out) identity is never an admin.
func IsAdmin(user *models.User) bool {
	return user != nil && user.Role == models.RoleAdmin
}

// IsUser reports whether the identity carries the regular user role. This is
// not simply !IsAdmin: a nil identity is neither admin nor user.
func IsUser(user *models.User) bool {
	return user != nil && user.Role == models.RoleUser
}
