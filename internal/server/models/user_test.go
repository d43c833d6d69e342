package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_Expired(t *testing.T) {
	t.Parallel()

	now := time.Unix(1_000, 0)

	assert.True(t, Session{ExpiresAt: 999}.Expired(now))
	assert.True(t, Session{ExpiresAt: 1_000}.Expired(now), "boundary counts as expired")
	assert.False(t, Session{ExpiresAt: 1_001}.Expired(now))
}

func TestUser_JSONOmitsSecrets(t *testing.T) {
	t.Parallel()

	u := &User{
		ID:           "u1",
		Email:        "a@b.com",
		PasswordHash: "$2a$10$hash",
		Sessions:     []Session{{Token: "tok", ExpiresAt: 1}},
	}

	b, err := json.Marshal(u)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(b, &got))
	assert.Equal(t, map[string]any{"_id": "u1", "email": "a@b.com"}, got)
}

func TestUser_FindSession(t *testing.T) {
	t.Parallel()

	u := &User{Sessions: []Session{{Token: "a", ExpiresAt: 1}, {Token: "b", ExpiresAt: 2}}}

	s, ok := u.FindSession("b")
	require.True(t, ok)
	assert.Equal(t, int64(2), s.ExpiresAt)

	_, ok = u.FindSession("B")
	assert.False(t, ok, "match is exact")
}

func TestUser_CloneDoesNotShareSessions(t *testing.T) {
	t.Parallel()

	u := &User{ID: "u1", Sessions: []Session{{Token: "a"}}}
	c := u.Clone()
	c.Sessions[0].Token = "changed"
	c.Sessions = append(c.Sessions, Session{Token: "b"})

	assert.Equal(t, "a", u.Sessions[0].Token)
	assert.Len(t, u.Sessions, 1)
}

func TestSession_JSONShape(t *testing.T) {
	t.Parallel()

	b, err := json.Marshal([]Session{{Token: "t", ExpiresAt: 42}})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"token":"t","expiresAt":42}]`, string(b))
}
