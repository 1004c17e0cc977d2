package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerAuditEntry is one ledger event as received by the audit worker.
// MessageID makes redelivered messages idempotent.
type LedgerAuditEntry struct {
	ID         uuid.UUID
	MessageID  string
	RequestID  string
	EventType  string
	UserID     uuid.UUID
	EntityID   uuid.UUID
	Amount     *decimal.Decimal
	CategoryID *uuid.UUID
	OccurredAt time.Time
	ReceivedAt time.Time
}
