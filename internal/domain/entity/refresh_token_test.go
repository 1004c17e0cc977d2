package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRefreshToken_Lifecycle(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	token := &RefreshToken{ExpiresAt: now.Add(time.Hour)}

	assert.True(t, token.IsActive(now))
	assert.False(t, token.IsExpired(now))

	assert.True(t, token.IsExpired(now.Add(time.Hour)))
	assert.False(t, token.IsActive(now.Add(2*time.Hour)))

	token.Revoke(now)
	assert.True(t, token.Revoked)
	assert.False(t, token.IsActive(now))
	if assert.NotNil(t, token.RevokedAt) {
		assert.Equal(t, now, *token.RevokedAt)
	}

	token.Revoke(now.Add(time.Minute))
	assert.Equal(t, now, *token.RevokedAt)
}

func TestUser_FullName(t *testing.T) {
	assert.Equal(t, "Ada Lovelace", (&User{FirstName: "Ada", LastName: "Lovelace"}).FullName())
	assert.Equal(t, "Ada", (&User{FirstName: "Ada"}).FullName())
	assert.Equal(t, "Lovelace", (&User{LastName: "Lovelace"}).FullName())
}
