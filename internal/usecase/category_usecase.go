package usecase

import (
	"context"

	"fintracker/internal/domain/entity"

	"github.com/google/uuid"
)

// CategoryUsecase manages the categories of one user. Missing categories are
// reported as domainerrors.ErrCategoryNotFound.
type CategoryUsecase interface {
	CreateCategory(ctx context.Context, userID uuid.UUID, name string) (*entity.Category, error)
	UpdateCategory(ctx context.Context, userID, id uuid.UUID, name string) (*entity.Category, error)

	// DeleteCategory returns the deleted category.
	DeleteCategory(ctx context.Context, userID, id uuid.UUID) (*entity.Category, error)

	ListCategories(ctx context.Context, userID uuid.UUID) ([]*entity.Category, error)
	GetCategory(ctx context.Context, userID, id uuid.UUID) (*entity.Category, error)
}
