package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/sustaingain/backend/domain"
	"github.com/sustaingain/backend/internal/infrastructure/outbox"
)

// EventPublisher abstracts the broker side of the relay.
type EventPublisher interface {
	PublishEvent(ctx context.Context, event domain.Event) error
}

// BrokerHealth abstracts the connection monitor functionality.
type BrokerHealth interface {
	BrokerOnline() bool
}

// RelayConfig controls how frequently the outbox is drained.
type RelayConfig struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
	Retention  time.Duration
}

// EventRelay drains the durable outbox into the message broker on a fixed
// schedule. Entries that keep failing are dropped after MaxRetries, stale
// entries are purged past the retention window.
type EventRelay struct {
	store     *outbox.Store
	publisher EventPublisher
	monitor   BrokerHealth
	logger    *zap.Logger
	cron      *cron.Cron
	cfg       RelayConfig
}

func NewEventRelay(
	store *outbox.Store,
	publisher EventPublisher,
	monitor BrokerHealth,
	logger *zap.Logger,
	cfg RelayConfig,
) *EventRelay {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 50
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.Retention <= 0 {
		cfg.Retention = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	relay := &EventRelay{
		store:     store,
		publisher: publisher,
		monitor:   monitor,
		logger:    logger,
		cfg:       cfg,
		cron:      cron.New(cron.WithSeconds()),
	}

	schedule := fmt.Sprintf("@every %ds", int(cfg.Interval.Seconds()))
	_, _ = relay.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Interval)
		defer cancel()
		if err := relay.Drain(ctx); err != nil {
			relay.logger.Error("outbox drain failed", zap.Error(err))
		}
	})

	return relay
}

// Start launches the cron scheduler.
func (r *EventRelay) Start() {
	if r == nil || r.cron == nil {
		return
	}
	r.cron.Start()
	r.logger.Info("event relay started")
}

// Stop gracefully stops the scheduler.
func (r *EventRelay) Stop(ctx context.Context) {
	if r == nil || r.cron == nil {
		return
	}
	stopCtx := r.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	r.logger.Info("event relay stopped")
}

// Drain publishes a batch of queued events synchronously. Retention runs
// first so the outbox cannot grow without bound during a long outage.
func (r *EventRelay) Drain(ctx context.Context) error {
	if r == nil || r.store == nil {
		return nil
	}
	if err := r.store.Cleanup(time.Now().Add(-r.cfg.Retention)); err != nil {
		r.logger.Warn("outbox retention sweep failed", zap.Error(err))
	}
	if r.publisher == nil {
		return nil
	}
	if r.monitor != nil && !r.monitor.BrokerOnline() {
		r.logger.Debug("skipping outbox drain (broker offline)")
		return nil
	}

	entries, err := r.store.GetBatch(r.cfg.BatchSize)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if err := r.publisher.PublishEvent(ctx, entry.Event); err != nil {
			r.logger.Error("failed to publish event",
				zap.String("entry_id", entry.ID),
				zap.String("type", string(entry.Event.Type)),
				zap.Error(err))

			if entry.Retries+1 >= r.cfg.MaxRetries {
				r.logger.Warn("dropping event (max retries reached)", zap.String("entry_id", entry.ID))
				_ = r.store.Remove(entry)
				continue
			}

			if err := r.store.Remove(entry); err != nil {
				r.logger.Warn("failed to remove outbox entry", zap.Error(err))
			}
			if err := r.store.Requeue(entry); err != nil {
				r.logger.Error("failed to requeue outbox entry", zap.Error(err))
			}
			continue
		}

		if err := r.store.Remove(entry); err != nil {
			r.logger.Warn("failed to purge delivered entry", zap.Error(err))
		}
	}

	return nil
}

// Size returns the number of queued entries.
func (r *EventRelay) Size() int {
	if r == nil || r.store == nil {
		return 0
	}
	size, err := r.store.Size()
	if err != nil {
		return 0
	}
	return size
}
