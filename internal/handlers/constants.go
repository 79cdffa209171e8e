package handlers

const (
	ErrInvalidRequestBody  = "Invalid request body"
	ErrUnauthorized        = "Unauthorized"
	ErrInternalServerError = "Internal server error"
	ErrStorageUnavailable  = "Storage is temporarily unavailable, please try again"
	ErrTooManyRequests     = "Too many requests"

	maxBodyBytes = 1 << 20
)
