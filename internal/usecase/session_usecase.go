package usecase

import (
	"context"

	"fintracker/internal/domain/entity"

	"github.com/google/uuid"
)

// SessionUsecase lets a user inspect and end their own sessions. A session is
// an active refresh token.
type SessionUsecase interface {
	ListActiveSessions(ctx context.Context, userID uuid.UUID) ([]*entity.RefreshToken, error)
	RevokeSession(ctx context.Context, userID, sessionID uuid.UUID) error

	// RevokeAllSessions logs the user out everywhere and returns how many
	// sessions were ended.
	RevokeAllSessions(ctx context.Context, userID uuid.UUID) (int64, error)
}
