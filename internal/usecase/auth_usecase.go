// Package usecase declares the application operations the delivery layer calls,
// together with their input types.
package usecase

import (
	"context"

	"fintracker/internal/domain/entity"
)

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Client    entity.ClientInfo
}

type LoginInput struct {
	Email    string
	Password string
	Client   entity.ClientInfo
}

// RefreshInput carries the refresh token and, optionally, the access token it
// was issued with. A supplied access token may be expired but must be genuine.
type RefreshInput struct {
	RefreshToken string
	AccessToken  string
	Client       entity.ClientInfo
}

// AuthUsecase covers registration, login and the refresh token lifecycle.
type AuthUsecase interface {
	Register(ctx context.Context, input *RegisterInput) (*entity.TokenPair, error)
	Login(ctx context.Context, input *LoginInput) (*entity.TokenPair, error)
	Refresh(ctx context.Context, input *RefreshInput) (*entity.TokenPair, error)

	// Revoke is idempotent: unknown or already revoked tokens are not an error.
	Revoke(ctx context.Context, refreshToken string) error
}
