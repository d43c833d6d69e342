package common

import "errors"

var (
	// repository specific errors
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// service specific errors
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorValidation   = errors.New("validation error")
	ErrPasswordHash   = errors.New("password hashing failed")

	// access token errors
	ErrTokenMalformed   = errors.New("access token malformed")
	ErrInvalidSignature = errors.New("access token signature invalid")
	ErrTokenExpired     = errors.New("access token expired")

	// session errors
	ErrUserNotFound    = errors.New("user not found")
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionExpired  = errors.New("session expired")

	// issuance and storage errors
	ErrEntropy          = errors.New("entropy source failure")
	ErrSigning          = errors.New("token signing failure")
	ErrStoreUnavailable = errors.New("store unavailable")
)

var authErrors = []error{
	ErrTokenMalformed,
	ErrInvalidSignature,
	ErrTokenExpired,
	ErrUserNotFound,
	ErrSessionNotFound,
	ErrSessionExpired,
	ErrorUnauthorized,
}

// IsAuthError reports whether err means the caller failed authentication.
func IsAuthError(err error) bool {
	for _, e := range authErrors {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}
