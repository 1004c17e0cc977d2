// Package repository defines the persistence contracts used by the use case layer.
package repository

import (
	"context"

	"fintracker/internal/domain/entity"
	"fintracker/internal/errors"

	"github.com/google/uuid"
)

// ErrUserNotFound is returned when no user matches the lookup.
var ErrUserNotFound = errors.New("user not found")

type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)

	// FindByEmail matches the email exactly as stored.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// Create returns domainerrors.ErrDuplicateEmail when the email is taken.
	Create(ctx context.Context, user *entity.User) error
}
