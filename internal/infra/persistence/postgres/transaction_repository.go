package postgres

import (
	"context"
	"net/http"
	"time"

	"fintracker/internal/domain/entity"
	domainerrors "fintracker/internal/domain/errors"
	"fintracker/internal/domain/repository"
	"fintracker/internal/errors"
	"fintracker/internal/infra/persistence/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type transactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) repository.TransactionRepository {
	return &transactionRepository{db: db}
}

func (repo *transactionRepository) Create(ctx context.Context, txn *entity.Transaction) error {
	if txn.ID == uuid.Nil {
		txn.ID = uuid.New()
	}
	row := fromTransactionDomain(txn)

	if err := repo.db.WithContext(ctx).Omit("Category").Create(row).Error; err != nil {
		return transactionWriteError(err, "failed to create transaction")
	}

	txn.CreatedAt = row.CreatedAt
	txn.UpdatedAt = row.UpdatedAt

	return nil
}

// Update overwrites every editable column.
func (repo *transactionRepository) Update(ctx context.Context, txn *entity.Transaction) error {
	now := time.Now()

	result := repo.db.WithContext(ctx).
		Model(&model.TransactionModel{}).
		Where("id = ? AND user_id = ?", txn.ID, txn.UserID).
		Updates(map[string]any{
			"description": txn.Description,
			"amount":      txn.Amount,
			"date":        txn.Date,
			"category_id": txn.CategoryID,
			"updated_at":  now,
		})
	if result.Error != nil {
		return transactionWriteError(result.Error, "failed to update transaction")
	}
	if result.RowsAffected == 0 {
		return repository.ErrTransactionNotFound
	}

	txn.UpdatedAt = now

	return nil
}

func (repo *transactionRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	result := repo.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&model.TransactionModel{})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to delete transaction")
	}
	if result.RowsAffected == 0 {
		return repository.ErrTransactionNotFound
	}

	return nil
}

func (repo *transactionRepository) FindByID(ctx context.Context, userID, id uuid.UUID) (*entity.TransactionDetail, error) {
	var row model.TransactionModel
	err := repo.withCategory(ctx).
		Where("transactions.id = ? AND transactions.user_id = ?", id, userID).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrTransactionNotFound
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to find transaction")
	}

	return toTransactionDetail(&row), nil
}

func (repo *transactionRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.TransactionDetail, error) {
	var rows []*model.TransactionModel
	if err := repo.withCategory(ctx).
		Where("transactions.user_id = ?", userID).
		Order("transactions.date DESC").
		Order("transactions.created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to list transactions")
	}

	details := make([]*entity.TransactionDetail, 0, len(rows))
	for _, row := range rows {
		details = append(details, toTransactionDetail(row))
	}

	return details, nil
}

// withCategory loads the owning category in the same query.
func (repo *transactionRepository) withCategory(ctx context.Context) *gorm.DB {
	return repo.db.WithContext(ctx).Joins("Category")
}

// A foreign key failure here means the category disappeared between the
// ownership check and the write.
func transactionWriteError(err error, details string) error {
	if isForeignKeyConstraintViolation(err) {
		return domainerrors.ErrCategoryNotFound.WithHTTPCode(http.StatusBadRequest).WrapMessage(details)
	}
	if isCheckConstraintViolation(err) || isNotNullConstraintViolation(err) {
		return domainerrors.ErrValidationFailed.WithDetails(details)
	}

	return domainerrors.NewDatabaseExecuteError(err, details)
}

func toTransactionDetail(m *model.TransactionModel) *entity.TransactionDetail {
	detail := &entity.TransactionDetail{
		Transaction: entity.Transaction{
			ID:          m.ID,
			UserID:      m.UserID,
			CategoryID:  m.CategoryID,
			Description: m.Description,
			Amount:      m.Amount,
			Date:        m.Date,
			CreatedAt:   m.CreatedAt,
			UpdatedAt:   m.UpdatedAt,
		},
	}
	if m.Category != nil {
		detail.CategoryName = m.Category.Name
	}

	return detail
}

func fromTransactionDomain(t *entity.Transaction) *model.TransactionModel {
	return &model.TransactionModel{
		ID:          t.ID,
		UserID:      t.UserID,
		CategoryID:  t.CategoryID,
		Description: t.Description,
		Amount:      t.Amount,
		Date:        t.Date,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
