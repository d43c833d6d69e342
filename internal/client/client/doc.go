// Package client talks to the tasklist REST API.
//
// HTTPClient keeps the tokens returned by signup and login, attaches the
// access token to every protected request and, when the server answers 401,
// refreshes the access token once with the stored refresh token before
// retrying. A failed refresh clears the tokens and yields ErrSessionExpired.
//
// Failures are reported as sentinel errors matched with errors.Is:
// ErrUnavailable, ErrUnauthorized, ErrSessionExpired, ErrNotFound and
// ErrConflict. Non-2xx replies additionally unwrap to *APIError.
package client
