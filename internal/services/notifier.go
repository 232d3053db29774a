package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/sustaingain/backend/domain"
	"github.com/sustaingain/backend/internal/infrastructure/outbox"
	"github.com/sustaingain/backend/usecase"
)

// OutboxNotifier implements the notifier port by writing every event to the
// durable outbox. The relay delivers from there, so an emitting operation
// never waits on the broker.
type OutboxNotifier struct {
	store  *outbox.Store
	logger *zap.Logger
}

func NewOutboxNotifier(store *outbox.Store, logger *zap.Logger) *OutboxNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OutboxNotifier{store: store, logger: logger}
}

func (n *OutboxNotifier) Emit(_ context.Context, event domain.Event) error {
	if n == nil || n.store == nil {
		return domain.ErrInvalidPayload
	}
	return n.store.Enqueue(outbox.Entry{Event: event})
}

var _ usecase.Notifier = (*OutboxNotifier)(nil)
