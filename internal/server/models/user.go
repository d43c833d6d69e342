package models

import (
	"slices"
	"time"
)

// User is the persisted account record. The password hash and the session
// list never leave the server.
type User struct {
	ID           string    `json:"_id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Sessions     []Session `json:"-"`
	CreatedAt    time.Time `json:"-"`
}

// Session is one refresh-token login of a user. ExpiresAt is in unix seconds.
type Session struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
}

// Expired reports whether the session is no longer usable at now. A session
// is already expired at its exact expiry second.
func (s Session) Expired(now time.Time) bool {
	return s.ExpiresAt <= now.Unix()
}

// FindSession returns the session whose token equals token exactly.
func (u *User) FindSession(token string) (Session, bool) {
	i := slices.IndexFunc(u.Sessions, func(s Session) bool { return s.Token == token })
	if i < 0 {
		return Session{}, false
	}
	return u.Sessions[i], true
}

// Clone returns a deep copy so stores can hand out users without sharing the
// session slice.
func (u *User) Clone() *User {
	c := *u
	c.Sessions = slices.Clone(u.Sessions)
	return &c
}
