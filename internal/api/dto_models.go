package api

// ErrorResponse is the generic error body returned by the API.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// SuccessResponse is a simple success envelope for operations without a
// natural resource body.
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// CountResponse carries a single aggregate count.
type CountResponse struct {
	Count int64 `json:"count"`
}
