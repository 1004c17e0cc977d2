package impl

import (
	"context"
	"log/slog"
	"time"

	deliverycontext "fintracker/internal/delivery/context"
	"fintracker/internal/domain/service"
)

// publishLedgerEvent runs after commit. A failed publish is logged and
// otherwise ignored: the ledger change already happened.
func publishLedgerEvent(ctx context.Context, publisher service.EventPublisher, logger *slog.Logger, event *service.LedgerEvent) {
	if publisher == nil {
		return
	}

	event.RequestID = deliverycontext.GetRequestIDFromContext(ctx)
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	if err := publisher.PublishLedgerEvent(ctx, event); err != nil {
		logger.Warn("Failed to publish ledger event",
			slog.String("type", event.Type),
			slog.String("entity_id", event.EntityID),
			slog.Any("error", err),
		)
	}
}
