package postgres

import (
	"context"
	"time"

	"fintracker/internal/domain/entity"
	domainerrors "fintracker/internal/domain/errors"
	"fintracker/internal/domain/repository"
	"fintracker/internal/errors"
	"fintracker/internal/infra/persistence/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) repository.CategoryRepository {
	return &categoryRepository{db: db}
}

func (repo *categoryRepository) Create(ctx context.Context, category *entity.Category) error {
	return repo.CreateBatch(ctx, []*entity.Category{category})
}

func (repo *categoryRepository) CreateBatch(ctx context.Context, categories []*entity.Category) error {
	if len(categories) == 0 {
		return nil
	}

	rows := make([]*model.CategoryModel, 0, len(categories))
	for _, category := range categories {
		if category.ID == uuid.Nil {
			category.ID = uuid.New()
		}
		rows = append(rows, fromCategoryDomain(category))
	}

	if err := repo.db.WithContext(ctx).Create(rows).Error; err != nil {
		return categoryWriteError(err, "failed to create category")
	}

	for i, row := range rows {
		categories[i].CreatedAt = row.CreatedAt
		categories[i].UpdatedAt = row.UpdatedAt
	}

	return nil
}

func (repo *categoryRepository) Update(ctx context.Context, category *entity.Category) error {
	now := time.Now()

	result := repo.db.WithContext(ctx).
		Model(&model.CategoryModel{}).
		Where("id = ? AND user_id = ?", category.ID, category.UserID).
		Updates(map[string]any{"name": category.Name, "updated_at": now})
	if result.Error != nil {
		return categoryWriteError(result.Error, "failed to update category")
	}
	if result.RowsAffected == 0 {
		return repository.ErrCategoryNotFound
	}

	category.UpdatedAt = now

	return nil
}

func (repo *categoryRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	result := repo.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&model.CategoryModel{})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete category")
	}
	if result.RowsAffected == 0 {
		return repository.ErrCategoryNotFound
	}

	return nil
}

func (repo *categoryRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*entity.Category, error) {
	return repo.findOne(ctx, "id = ? AND user_id = ?", id, userID)
}

func (repo *categoryRepository) FindByName(ctx context.Context, userID uuid.UUID, name string) (*entity.Category, error) {
	return repo.findOne(ctx, "user_id = ? AND LOWER(name) = LOWER(?)", userID, name)
}

func (repo *categoryRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.Category, error) {
	var rows []*model.CategoryModel
	if err := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to list categories")
	}

	categories := make([]*entity.Category, 0, len(rows))
	for _, row := range rows {
		categories = append(categories, toCategoryDomain(row))
	}

	return categories, nil
}

func (repo *categoryRepository) findOne(ctx context.Context, query string, args ...any) (*entity.Category, error) {
	var row model.CategoryModel
	if err := repo.db.WithContext(ctx).Where(query, args...).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrCategoryNotFound
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find category")
	}

	return toCategoryDomain(&row), nil
}

func categoryWriteError(err error, details string) error {
	switch {
	case isUniqueConstraintViolation(err):
		return domainerrors.ErrDuplicateCategoryName.WrapMessage(details)
	case isForeignKeyConstraintViolation(err):
		return domainerrors.ErrUserNotFound.WrapMessage(details)
	default:
		return domainerrors.NewDatabaseExecuteError(err, details)
	}
}

func toCategoryDomain(m *model.CategoryModel) *entity.Category {
	return &entity.Category{
		ID:        m.ID,
		UserID:    m.UserID,
		Name:      m.Name,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func fromCategoryDomain(c *entity.Category) *model.CategoryModel {
	return &model.CategoryModel{
		ID:        c.ID,
		UserID:    c.UserID,
		Name:      c.Name,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
