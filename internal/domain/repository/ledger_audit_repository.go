package repository

import (
	"context"

	"fintracker/internal/domain/entity"
)

// LedgerAuditRepository is the append-only store of received ledger events.
type LedgerAuditRepository interface {
	// Append stores the entry and reports false when an entry with the same
	// MessageID was stored before.
	Append(ctx context.Context, entry *entity.LedgerAuditEntry) (bool, error)
}
