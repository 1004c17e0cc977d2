package impl

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	deliverycontext "fintracker/internal/delivery/context"
	"fintracker/internal/domain/entity"
	domainerrors "fintracker/internal/domain/errors"
	"fintracker/internal/domain/repository"
	"fintracker/internal/domain/service"
	"fintracker/internal/errors"
	"fintracker/internal/usecase"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
)

const maxDescriptionLength = 500

// amountLimit is the first value that no longer fits numeric(18,2).
var amountLimit = decimal.New(1, 16)

type transactionService struct {
	txManager       repository.TransactionManager
	transactionRepo repository.TransactionRepository
	eventPublisher  service.EventPublisher
	logger          *slog.Logger
	now             func() time.Time
}

type TransactionServiceParams struct {
	fx.In

	TxManager       repository.TransactionManager
	TransactionRepo repository.TransactionRepository
	EventPublisher  service.EventPublisher
	Logger          *slog.Logger
}

func NewTransactionService(params TransactionServiceParams) usecase.TransactionUsecase {
	return &transactionService{
		txManager:       params.TxManager,
		transactionRepo: params.TransactionRepo,
		eventPublisher:  params.EventPublisher,
		logger:          params.Logger,
		now:             time.Now,
	}
}

func (srv *transactionService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// CreateTransaction records a transaction dated now.
func (srv *transactionService) CreateTransaction(
	ctx context.Context,
	userID uuid.UUID,
	input *usecase.CreateTransactionInput,
) (*entity.TransactionDetail, error) {
	description, err := normalizeTransactionFields(input.Description, input.Amount)
	if err != nil {
		return nil, err
	}

	detail := &entity.TransactionDetail{
		Transaction: entity.Transaction{
			ID:          uuid.New(),
			UserID:      userID,
			CategoryID:  input.CategoryID,
			Description: description,
			Amount:      input.Amount.Round(2),
			Date:        srv.now().UTC(),
		},
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		category, err := findOwnedCategory(ctx, repoFactory.CategoryRepo(), userID, input.CategoryID)
		if err != nil {
			return err
		}
		detail.CategoryName = category.Name

		if err := repoFactory.TransactionRepo().Create(ctx, &detail.Transaction); err != nil {
			return errors.Wrap(err, "failed to create transaction")
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	srv.log(ctx).Debug("Transaction created", slog.Any("transaction_id", detail.ID))
	srv.publish(ctx, service.EventTransactionCreated, detail)

	return detail, nil
}

// UpdateTransaction overwrites every editable field, the date included.
func (srv *transactionService) UpdateTransaction(
	ctx context.Context,
	userID uuid.UUID,
	input *usecase.UpdateTransactionInput,
) (*entity.TransactionDetail, error) {
	description, err := normalizeTransactionFields(input.Description, input.Amount)
	if err != nil {
		return nil, err
	}
	if input.Date.IsZero() {
		return nil, domainerrors.ErrValidationFailed.WithDetails("date is required")
	}

	var detail *entity.TransactionDetail
	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		txnRepo := repoFactory.TransactionRepo()

		existing, err := txnRepo.FindByID(ctx, userID, input.ID)
		if err != nil {
			return transactionLookupError(err)
		}

		category, err := findOwnedCategory(ctx, repoFactory.CategoryRepo(), userID, input.CategoryID)
		if err != nil {
			return err
		}

		existing.Description = description
		existing.Amount = input.Amount.Round(2)
		existing.Date = input.Date.UTC()
		existing.CategoryID = category.ID
		existing.CategoryName = category.Name

		if err := txnRepo.Update(ctx, &existing.Transaction); err != nil {
			return transactionLookupError(err)
		}
		detail = existing

		return nil
	})
	if err != nil {
		return nil, err
	}

	srv.publish(ctx, service.EventTransactionUpdated, detail)

	return detail, nil
}

func (srv *transactionService) DeleteTransaction(ctx context.Context, userID, id uuid.UUID) (*entity.TransactionDetail, error) {
	var deleted *entity.TransactionDetail
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		txnRepo := repoFactory.TransactionRepo()

		existing, err := txnRepo.FindByID(ctx, userID, id)
		if err != nil {
			return transactionLookupError(err)
		}

		if err := txnRepo.Delete(ctx, userID, id); err != nil {
			return transactionLookupError(err)
		}
		deleted = existing

		return nil
	})
	if err != nil {
		return nil, err
	}

	srv.publish(ctx, service.EventTransactionDeleted, deleted)

	return deleted, nil
}

func (srv *transactionService) ListTransactions(ctx context.Context, userID uuid.UUID) ([]*entity.TransactionDetail, error) {
	transactions, err := srv.transactionRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list transactions")
	}

	return transactions, nil
}

func (srv *transactionService) GetTransaction(ctx context.Context, userID, id uuid.UUID) (*entity.TransactionDetail, error) {
	detail, err := srv.transactionRepo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, transactionLookupError(err)
	}

	return detail, nil
}

func (srv *transactionService) publish(ctx context.Context, eventType string, detail *entity.TransactionDetail) {
	publishLedgerEvent(ctx, srv.eventPublisher, srv.log(ctx), &service.LedgerEvent{
		Type:       eventType,
		UserID:     detail.UserID.String(),
		EntityID:   detail.ID.String(),
		Amount:     detail.Amount.StringFixed(2),
		CategoryID: detail.CategoryID.String(),
	})
}

// findOwnedCategory resolves a category the user owns. A missing category is
// a bad request here rather than a missing resource.
func findOwnedCategory(ctx context.Context, repo repository.CategoryRepository, userID, categoryID uuid.UUID) (*entity.Category, error) {
	category, err := repo.FindByID(ctx, userID, categoryID)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			return nil, errors.Wrap(domainerrors.ErrCategoryNotFound.WithHTTPCode(http.StatusBadRequest), categoryID.String())
		}

		return nil, errors.Wrap(err, "failed to find category")
	}

	return category, nil
}

func transactionLookupError(err error) error {
	if errors.Is(err, repository.ErrTransactionNotFound) {
		return errors.Wrap(domainerrors.ErrTransactionNotFound, "transaction lookup failed")
	}

	return errors.Wrap(err, "transaction operation failed")
}

func normalizeTransactionFields(description string, amount decimal.Decimal) (string, error) {
	description = strings.TrimSpace(description)
	if utf8.RuneCountInString(description) > maxDescriptionLength {
		return "", domainerrors.ErrValidationFailed.WithDetails(
			fmt.Sprintf("description must be at most %d characters", maxDescriptionLength))
	}
	if amount.Abs().GreaterThanOrEqual(amountLimit) {
		return "", domainerrors.ErrValidationFailed.WithDetails("amount is out of range")
	}

	return description, nil
}
