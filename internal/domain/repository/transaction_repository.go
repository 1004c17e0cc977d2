package repository

import (
	"context"

	"fintracker/internal/domain/entity"
	"fintracker/internal/errors"

	"github.com/google/uuid"
)

// ErrTransactionNotFound is returned when no transaction of the user matches the lookup.
var ErrTransactionNotFound = errors.New("transaction not found")

// TransactionRepository stores money transactions. Reads join the category
// to fill in its name.
type TransactionRepository interface {
	Create(ctx context.Context, txn *entity.Transaction) error
	Update(ctx context.Context, txn *entity.Transaction) error
	Delete(ctx context.Context, userID, id uuid.UUID) error

	FindByID(ctx context.Context, userID, id uuid.UUID) (*entity.TransactionDetail, error)

	// ListByUserID returns the newest transactions first.
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.TransactionDetail, error)
}
