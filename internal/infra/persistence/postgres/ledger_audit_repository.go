package postgres

import (
	"context"
	"time"

	"fintracker/internal/domain/entity"
	domainerrors "fintracker/internal/domain/errors"
	"fintracker/internal/domain/repository"
	"fintracker/internal/infra/persistence/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ledgerAuditRepository struct {
	db *gorm.DB
}

func NewLedgerAuditRepository(db *gorm.DB) repository.LedgerAuditRepository {
	return &ledgerAuditRepository{db: db}
}

// Append relies on the message id index: a redelivered message inserts nothing.
func (repo *ledgerAuditRepository) Append(ctx context.Context, entry *entity.LedgerAuditEntry) (bool, error) {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.ReceivedAt.IsZero() {
		entry.ReceivedAt = time.Now().UTC()
	}

	row := &model.LedgerAuditModel{
		ID:         entry.ID,
		MessageID:  entry.MessageID,
		RequestID:  entry.RequestID,
		EventType:  entry.EventType,
		UserID:     entry.UserID,
		EntityID:   entry.EntityID,
		Amount:     entry.Amount,
		CategoryID: entry.CategoryID,
		OccurredAt: entry.OccurredAt,
		ReceivedAt: entry.ReceivedAt,
	}

	result := repo.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "message_id"}},
			DoNothing: true,
		}).
		Create(row)
	if result.Error != nil {
		return false, domainerrors.NewDatabaseExecuteError(result.Error, "failed to append ledger audit entry")
	}

	return result.RowsAffected > 0, nil
}
