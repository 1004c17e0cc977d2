package impl

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	deliverycontext "fintracker/internal/delivery/context"
	"fintracker/internal/domain/entity"
	domainerrors "fintracker/internal/domain/errors"
	"fintracker/internal/domain/repository"
	"fintracker/internal/errors"
	"fintracker/internal/usecase"

	"github.com/google/uuid"
	"go.uber.org/fx"
)

const maxCategoryNameLength = 100

type categoryService struct {
	txManager    repository.TransactionManager
	categoryRepo repository.CategoryRepository
	logger       *slog.Logger
}

type CategoryServiceParams struct {
	fx.In

	TxManager    repository.TransactionManager
	CategoryRepo repository.CategoryRepository
	Logger       *slog.Logger
}

func NewCategoryService(params CategoryServiceParams) usecase.CategoryUsecase {
	return &categoryService{
		txManager:    params.TxManager,
		categoryRepo: params.CategoryRepo,
		logger:       params.Logger,
	}
}

func (srv *categoryService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

func (srv *categoryService) CreateCategory(ctx context.Context, userID uuid.UUID, name string) (*entity.Category, error) {
	name, err := normalizeCategoryName(name)
	if err != nil {
		return nil, err
	}

	category := &entity.Category{ID: uuid.New(), UserID: userID, Name: name}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		categoryRepo := repoFactory.CategoryRepo()

		if err := ensureCategoryNameFree(ctx, categoryRepo, userID, uuid.Nil, name); err != nil {
			return err
		}

		if err := categoryRepo.Create(ctx, category); err != nil {
			return errors.Wrap(err, "failed to create category")
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Debug("Category created", slog.Any("category_id", category.ID))

	return category, nil
}

// UpdateCategory renames a category. Renaming a category to its own name in
// another case is allowed.
func (srv *categoryService) UpdateCategory(ctx context.Context, userID, id uuid.UUID, name string) (*entity.Category, error) {
	name, err := normalizeCategoryName(name)
	if err != nil {
		return nil, err
	}

	var category *entity.Category
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		categoryRepo := repoFactory.CategoryRepo()

		existing, err := categoryRepo.FindByID(ctx, userID, id)
		if err != nil {
			return categoryLookupError(err)
		}

		if err := ensureCategoryNameFree(ctx, categoryRepo, userID, id, name); err != nil {
			return err
		}

		existing.Name = name
		if err := categoryRepo.Update(ctx, existing); err != nil {
			return categoryLookupError(err)
		}
		category = existing

		return nil
	})
	if err != nil {
		return nil, err
	}

	return category, nil
}

// DeleteCategory also removes the transactions filed under the category.
func (srv *categoryService) DeleteCategory(ctx context.Context, userID, id uuid.UUID) (*entity.Category, error) {
	var deleted *entity.Category
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		categoryRepo := repoFactory.CategoryRepo()

		existing, err := categoryRepo.FindByID(ctx, userID, id)
		if err != nil {
			return categoryLookupError(err)
		}

		if err := categoryRepo.Delete(ctx, userID, id); err != nil {
			return categoryLookupError(err)
		}
		deleted = existing

		return nil
	})
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Info("Category deleted", slog.Any("category_id", id), slog.Any("user_id", userID))

	return deleted, nil
}

func (srv *categoryService) ListCategories(ctx context.Context, userID uuid.UUID) ([]*entity.Category, error) {
	categories, err := srv.categoryRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list categories")
	}

	return categories, nil
}

func (srv *categoryService) GetCategory(ctx context.Context, userID, id uuid.UUID) (*entity.Category, error) {
	category, err := srv.categoryRepo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, categoryLookupError(err)
	}

	return category, nil
}

// ensureCategoryNameFree fails when a category other than exceptID already
// uses name for the user.
func ensureCategoryNameFree(ctx context.Context, repo repository.CategoryRepository, userID, exceptID uuid.UUID, name string) error {
	existing, err := repo.FindByName(ctx, userID, name)
	switch {
	case errors.Is(err, repository.ErrCategoryNotFound):
		return nil
	case err != nil:
		return errors.Wrap(err, "failed to check category name")
	case existing.ID == exceptID:
		return nil
	default:
		return errors.Wrap(domainerrors.ErrDuplicateCategoryName, name)
	}
}

func categoryLookupError(err error) error {
	if errors.Is(err, repository.ErrCategoryNotFound) {
		return errors.Wrap(domainerrors.ErrCategoryNotFound, "category lookup failed")
	}

	return errors.Wrap(err, "category operation failed")
}

func normalizeCategoryName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", domainerrors.ErrValidationFailed.WithDetails("category name is required")
	}
	if utf8.RuneCountInString(name) > maxCategoryNameLength {
		return "", domainerrors.ErrValidationFailed.WithDetails(
			fmt.Sprintf("category name must be at most %d characters", maxCategoryNameLength))
	}

	return name, nil
}
