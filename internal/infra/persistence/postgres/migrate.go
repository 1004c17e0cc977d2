package postgres

import (
	"context"

	"fintracker/internal/errors"
	"fintracker/internal/infra/persistence/model"

	"gorm.io/gorm"
)

// Expression index, which gorm struct tags cannot declare.
const categoryNameIndexSQL = `CREATE UNIQUE INDEX IF NOT EXISTS idx_categories_user_lower_name
	ON categories (user_id, LOWER(name))`

// Migrate brings the schema up to date with the models.
func Migrate(ctx context.Context, db *gorm.DB) error {
	tx := db.WithContext(ctx)

	if err := tx.AutoMigrate(
		&model.UserModel{},
		&model.CategoryModel{},
		&model.TransactionModel{},
		&model.RefreshTokenModel{},
		&model.LedgerAuditModel{},
	); err != nil {
		return errors.Wrap(err, "auto migrate")
	}

	if err := tx.Exec(categoryNameIndexSQL).Error; err != nil {
		return errors.Wrap(err, "create category name index")
	}

	return nil
}
