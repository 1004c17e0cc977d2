package entity

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken is a long-lived opaque credential exchanged for a new token pair.
// Rows are only ever revoked, never deleted.
type RefreshToken struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
	Revoked   bool
	RevokedAt *time.Time
	UserAgent string
	IPAddress string
}

// IsExpired reports whether the token is past its expiry at now.
func (t *RefreshToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// IsActive reports whether the token can still be used at now.
func (t *RefreshToken) IsActive(now time.Time) bool {
	return !t.Revoked && !t.IsExpired(now)
}

// Revoke marks the token unusable. Calling it twice keeps the first timestamp.
func (t *RefreshToken) Revoke(now time.Time) {
	if t.Revoked {
		return
	}
	t.Revoked = true
	t.RevokedAt = &now
}

// TokenPair is what a successful register, login or refresh hands back.
type TokenPair struct {
	AccessToken         string
	RefreshToken        string
	AccessTokenExpires  time.Time
	RefreshTokenExpires time.Time
}

// ClientInfo describes the client a session was opened from.
type ClientInfo struct {
	UserAgent string
	IPAddress string
}
