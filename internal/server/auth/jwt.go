// Package auth issues and verifies the credentials used by the HTTP API:
// short-lived HS256 access tokens, random refresh tokens and bcrypt password
// hashes.
package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/tasklist/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// MinRefreshTokenBytes is the least amount of entropy put into a refresh token.
const MinRefreshTokenBytes = 64

// Claims carries the standard registered claims plus the user id under "_id".
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"_id"`
}

// Issuer mints access and refresh tokens and verifies access tokens.
type Issuer interface {
	IssueAccessToken(userID string) (string, error)
	IssueRefreshToken() (string, error)
	VerifyAccessToken(token string) (string, error)
}

// JWTIssuer is the HS256 Issuer. The secret is fixed at construction.
type JWTIssuer struct {
	secret       []byte
	ttl          time.Duration
	refreshBytes int
	entropy      io.Reader
	now          func() time.Time
}

type Option func(*JWTIssuer)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(i *JWTIssuer) { i.now = now }
}

// WithEntropy replaces crypto/rand as the refresh token source.
func WithEntropy(r io.Reader) Option {
	return func(i *JWTIssuer) { i.entropy = r }
}

// WithRefreshTokenBytes sets the refresh token size; values below
// MinRefreshTokenBytes are raised to it.
func WithRefreshTokenBytes(n int) Option {
	return func(i *JWTIssuer) { i.refreshBytes = n }
}

func NewJWTIssuer(secret []byte, ttl time.Duration, opts ...Option) *JWTIssuer {
	i := &JWTIssuer{
		secret:       secret,
		ttl:          ttl,
		refreshBytes: MinRefreshTokenBytes,
		entropy:      rand.Reader,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	if i.refreshBytes < MinRefreshTokenBytes {
		i.refreshBytes = MinRefreshTokenBytes
	}
	return i
}

func (i *JWTIssuer) IssueAccessToken(userID string) (string, error) {
	now := i.now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
		UserID: userID,
	})

	tokenString, err := token.SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrSigning, err)
	}

	return tokenString, nil
}

func (i *JWTIssuer) IssueRefreshToken() (string, error) {
	token, err := common.ReadRandHexString(i.entropy, i.refreshBytes)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrEntropy, err)
	}
	return token, nil
}

// VerifyAccessToken checks the signature and expiry of tokenString and returns
// the embedded user id. It never touches the store.
func (i *JWTIssuer) VerifyAccessToken(tokenString string) (string, error) {
	claims := &Claims{}

	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) {
			return i.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
		// a token is still valid at the exact exp instant
		jwt.WithLeeway(time.Nanosecond),
	)
	if err != nil {
		return "", classify(err)
	}

	if claims.UserID == "" {
		return "", fmt.Errorf("%w: missing _id claim", common.ErrTokenMalformed)
	}

	return claims.UserID, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return common.ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, jwt.ErrTokenUnverifiable):
		return common.ErrInvalidSignature
	default:
		return fmt.Errorf("%w: %v", common.ErrTokenMalformed, err)
	}
}
