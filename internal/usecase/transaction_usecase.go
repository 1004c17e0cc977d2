package usecase

import (
	"context"
	"time"

	"fintracker/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateTransactionInput has no date: new transactions are dated when created.
type CreateTransactionInput struct {
	Description string
	Amount      decimal.Decimal
	CategoryID  uuid.UUID
}

type UpdateTransactionInput struct {
	ID          uuid.UUID
	Description string
	Amount      decimal.Decimal
	Date        time.Time
	CategoryID  uuid.UUID
}

// TransactionUsecase manages the transactions of one user.
type TransactionUsecase interface {
	CreateTransaction(ctx context.Context, userID uuid.UUID, input *CreateTransactionInput) (*entity.TransactionDetail, error)
	UpdateTransaction(ctx context.Context, userID uuid.UUID, input *UpdateTransactionInput) (*entity.TransactionDetail, error)
	DeleteTransaction(ctx context.Context, userID, id uuid.UUID) (*entity.TransactionDetail, error)
	ListTransactions(ctx context.Context, userID uuid.UUID) ([]*entity.TransactionDetail, error)
	GetTransaction(ctx context.Context, userID, id uuid.UUID) (*entity.TransactionDetail, error)
}
