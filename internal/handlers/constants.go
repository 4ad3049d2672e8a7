package handlers

const (
	SessionCookieName = "session_token"
	CSRFHeaderName    = "X-CSRF-Token"
	SignInPath        = "/sign-in"

	ErrInvalidRequestBody  = "Invalid request body"
	ErrUnauthorized        = "Unauthorized"
	ErrForbidden           = "Forbidden"
	ErrInvalidCSRFToken    = "Invalid CSRF token"
	ErrTooManyRequests     = "Too many requests. Please try again later."
	ErrInternalServerError = "Internal server error"
	ErrNotPartOfFamily     = "You are not part of this family"
)

// maxBodyBytes bounds every JSON request body
const maxBodyBytes = 1 << 20
