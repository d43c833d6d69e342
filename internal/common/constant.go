// Package common contains shared constants and sentinel errors used across
// tasklist components.
package common

// Header names exchanged between the client and the HTTP API. Lookups are
// case-insensitive on both sides.
const (
	// AccessTokenHeaderName carries the bearer access token on protected
	// requests and returns a freshly minted one on signup, login and refresh.
	AccessTokenHeaderName = "x-access-token"

	// RefreshTokenHeaderName carries the session refresh token.
	RefreshTokenHeaderName = "x-refresh-token"

	// UserIDHeaderName accompanies the refresh token on the refresh gate.
	UserIDHeaderName = "_id"
)
