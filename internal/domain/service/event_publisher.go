package service

import (
	"context"
	"time"
)

// Ledger event types.
const (
	EventUserRegistered     = "user.registered"
	EventTransactionCreated = "transaction.created"
	EventTransactionUpdated = "transaction.updated"
	EventTransactionDeleted = "transaction.deleted"
)

// LedgerEvent is published after a ledger change has been committed.
type LedgerEvent struct {
	RequestID  string    `json:"request_id,omitempty"`
	Type       string    `json:"type"`
	UserID     string    `json:"user_id"`
	EntityID   string    `json:"entity_id"`
	Amount     string    `json:"amount,omitempty"`
	CategoryID string    `json:"category_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventPublisher delivers ledger events to a message broker.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, event *LedgerEvent) error

	// Close releases any resources held by the publisher.
	Close() error
}
