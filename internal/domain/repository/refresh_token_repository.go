package repository

import (
	"context"
	"time"

	"fintracker/internal/domain/entity"
	"fintracker/internal/errors"

	"github.com/google/uuid"
)

// ErrRefreshTokenNotFound is returned when no stored refresh token matches.
var ErrRefreshTokenNotFound = errors.New("refresh token not found")

// RefreshTokenRepository persists sessions. Tokens are revoked, never deleted.
type RefreshTokenRepository interface {
	CreateRefreshToken(ctx context.Context, token *entity.RefreshToken) error

	FindRefreshTokenByToken(ctx context.Context, token string) (*entity.RefreshToken, error)

	FindRefreshTokenByID(ctx context.Context, id uuid.UUID) (*entity.RefreshToken, error)

	// FindActiveRefreshTokensByUserID lists tokens that are neither revoked nor
	// expired at now, newest first.
	FindActiveRefreshTokensByUserID(ctx context.Context, userID uuid.UUID, now time.Time) ([]*entity.RefreshToken, error)

	// RevokeRefreshToken marks one token revoked. It reports false when the
	// token was already revoked, which lets rotation detect a concurrent use.
	RevokeRefreshToken(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)

	// RevokeRefreshTokensByUserID revokes every active token of the user and
	// returns how many rows changed.
	RevokeRefreshTokensByUserID(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error)
}
