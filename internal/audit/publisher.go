package audit

import (
	"context"
	"log/slog"
	"time"
)

// Store is an append-only sink for audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByActor(ctx context.Context, actorID int64) ([]Event, error)
}

// Publisher captures structured audit events. Emission failures are logged
// and swallowed: the audit trail must never fail the operation it records.
type Publisher struct {
	store  Store
	logger *slog.Logger
}

func NewPublisher(store Store, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{store: store, logger: logger}
}

func (p *Publisher) Emit(ctx context.Context, event Event) {
	if p == nil || p.store == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if err := p.store.Append(ctx, event); err != nil {
		p.logger.WarnContext(ctx, "audit event dropped",
			"action", event.Action,
			"record_id", event.RecordID,
			"error", err,
		)
	}
}

func (p *Publisher) List(ctx context.Context, actorID int64) ([]Event, error) {
	return p.store.ListByActor(ctx, actorID)
}
