package models

// CreateGroupRequest is the request body for creating a product group.
type CreateGroupRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description,omitempty"`
}

// CreateProductRequest is the request body for creating a product.
type CreateProductRequest struct {
	GroupID     string  `json:"groupId" binding:"required"`
	Name        string  `json:"name" binding:"required"`
	MRP         float64 `json:"mrp"`
	Unit        string  `json:"unit,omitempty"`
	Stock       int64   `json:"stock"`
	Cartons     int64   `json:"cartons"`
	Description string  `json:"description,omitempty"`
	ImageURI    string  `json:"imageUri,omitempty"`
}

// UpdateStockRequest is the request body for the transactional stock update.
// NewStock is intentionally not range-checked here; negative values are a
// domain decision left to the caller.
type UpdateStockRequest struct {
	NewStock     *int64 `json:"newStock" binding:"required"`
	NewCartons   *int64 `json:"newCartons" binding:"required"`
	ChangeReason string `json:"changeReason,omitempty"`
}

// CreateUserRequest is the request body for an admin creating a user account.
type CreateUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Name     string `json:"name,omitempty"`
	Role     string `json:"role,omitempty"` // defaults to RoleUser
}

// UpdateProfileRequest is the request body for updating the caller's profile.
// Pointers distinguish "not provided" from an explicit empty value.
type UpdateProfileRequest struct {
	Name        *string `json:"name,omitempty"`
	DisplayName *string `json:"displayName,omitempty"`
}
