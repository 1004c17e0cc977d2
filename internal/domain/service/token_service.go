package service

import (
	"time"

	"fintracker/internal/domain/entity"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims carried by an access token. Subject holds the user id.
type Claims struct {
	Email      string `json:"email"`
	GivenName  string `json:"given_name,omitempty"`
	FamilyName string `json:"family_name,omitempty"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim.
func (c *Claims) UserID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// TokenService issues and validates access tokens and mints opaque refresh tokens.
type TokenService interface {
	GenerateAccessToken(user *entity.User) (token string, expiresAt time.Time, err error)

	// GenerateRefreshToken returns 32 random bytes, base64 encoded.
	GenerateRefreshToken() (string, error)

	// ValidateAccessToken fully validates the token, expiry included.
	ValidateAccessToken(tokenString string) (*Claims, error)

	// ValidateExpiredToken checks signature, algorithm, issuer and audience
	// but accepts an expired token.
	ValidateExpiredToken(tokenString string) (*Claims, error)

	RefreshTokenDuration() time.Duration
}
