package models

import "time"

// Role values attached to a user profile. Privileged operations are gated on
// RoleAdmin; everything else defaults to RoleUser.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User represents an application user profile stored in Firestore.
// The Firebase Auth UID is used as the document ID.
type User struct {
	ID             string    `json:"id" firestore:"-"` // Firebase Auth UID, mirrors the document ID
	Email          string    `json:"email" firestore:"email"`
	DisplayName    string    `json:"displayName,omitempty" firestore:"displayName,omitempty"`
	Name           string    `json:"name,omitempty" firestore:"name,omitempty"`
	Role           string    `json:"role" firestore:"role"` // RoleAdmin or RoleUser
	CreatedBy      string    `json:"createdBy,omitempty" firestore:"createdBy,omitempty"`
	IsInitialAdmin bool      `json:"isInitialAdmin,omitempty" firestore:"isInitialAdmin,omitempty"`
	CreatedAt      time.Time `json:"createdAt" firestore:"createdAt"`
	LastUpdated    time.Time `json:"lastUpdated,omitempty" firestore:"lastUpdated,omitempty"`
}
