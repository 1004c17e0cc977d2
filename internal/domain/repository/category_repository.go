package repository

import (
	"context"

	"fintracker/internal/domain/entity"
	"fintracker/internal/errors"

	"github.com/google/uuid"
)

// ErrCategoryNotFound is returned when no category of the user matches the lookup.
var ErrCategoryNotFound = errors.New("category not found")

// CategoryRepository stores categories. Every lookup is scoped to one user.
type CategoryRepository interface {
	// Create and CreateBatch return domainerrors.ErrDuplicateCategoryName on a
	// (user, lower(name)) collision.
	Create(ctx context.Context, category *entity.Category) error
	CreateBatch(ctx context.Context, categories []*entity.Category) error

	Update(ctx context.Context, category *entity.Category) error

	// Delete removes the category and, through the foreign key, its transactions.
	Delete(ctx context.Context, userID, id uuid.UUID) error

	FindByID(ctx context.Context, userID, id uuid.UUID) (*entity.Category, error)

	// FindByName compares names case-insensitively.
	FindByName(ctx context.Context, userID uuid.UUID, name string) (*entity.Category, error)

	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Category, error)
}
