package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LedgerAuditModel mirrors the append-only 'ledger_audit' table.
type LedgerAuditModel struct {
	ID         uuid.UUID        `gorm:"type:uuid;primaryKey"`
	MessageID  string           `gorm:"type:varchar(255);not null;uniqueIndex:idx_ledger_audit_message_id"`
	RequestID  string           `gorm:"type:varchar(128);not null;default:''"`
	EventType  string           `gorm:"type:varchar(64);not null;index"`
	UserID     uuid.UUID        `gorm:"type:uuid;not null;index"`
	EntityID   uuid.UUID        `gorm:"type:uuid;not null"`
	Amount     *decimal.Decimal `gorm:"type:numeric(18,2)"`
	CategoryID *uuid.UUID       `gorm:"type:uuid"`
	OccurredAt time.Time        `gorm:"not null"`
	ReceivedAt time.Time        `gorm:"not null"`
}

func (LedgerAuditModel) TableName() string {
	return "ledger_audit"
}
