package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/sustaingain/backend/domain"
	"github.com/sustaingain/backend/internal/infrastructure/outbox"
)

type fakePublisher struct {
	published []domain.Event
	err       error
}

func (f *fakePublisher) PublishEvent(_ context.Context, event domain.Event) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, event)
	return nil
}

type fakeHealth struct{ online bool }

func (f fakeHealth) BrokerOnline() bool { return f.online }

func openRelayStore(t *testing.T) *outbox.Store {
	t.Helper()
	store, err := outbox.Open(filepath.Join(t.TempDir(), "outbox.db"), "outbox")
	if err != nil {
		t.Fatalf("outbox.Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestDrainPublishesAndRemoves(t *testing.T) {
	store := openRelayStore(t)
	pub := &fakePublisher{}
	relay := NewEventRelay(store, pub, fakeHealth{online: true}, nil, RelayConfig{})

	events := []domain.Event{
		{Type: domain.EventTagReceived, ProfileID: "p1"},
		{Type: domain.EventFriendRequestCreated, ProfileID: "p2"},
	}
	for i, event := range events {
		if err := store.Enqueue(outbox.Entry{ID: string(rune('a' + i)), Event: event}); err != nil {
			t.Fatalf("Enqueue: %v", err)
		}
	}

	if err := relay.Drain(context.Background()); err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if len(pub.published) != 2 {
		t.Fatalf("published %d events, want 2", len(pub.published))
	}
	if relay.Size() != 0 {
		t.Errorf("outbox size = %d after drain, want 0", relay.Size())
	}
}

func TestDrainSkipsWhileBrokerOffline(t *testing.T) {
	store := openRelayStore(t)
	pub := &fakePublisher{}
	relay := NewEventRelay(store, pub, fakeHealth{online: false}, nil, RelayConfig{})

	if err := store.Enqueue(outbox.Entry{ID: "queued", Event: domain.Event{}}); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	if err := relay.Drain(context.Background()); err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if len(pub.published) != 0 {
		t.Error("nothing should publish while the broker is down")
	}
	if relay.Size() != 1 {
		t.Errorf("outbox size = %d, want 1", relay.Size())
	}
}

func TestDrainPurgesStaleEntriesWhileBrokerOffline(t *testing.T) {
	store := openRelayStore(t)
	pub := &fakePublisher{}
	relay := NewEventRelay(store, pub, fakeHealth{online: false}, nil, RelayConfig{Retention: 24 * time.Hour})

	stale := outbox.Entry{
		ID:       "stale",
		Event:    domain.Event{Type: domain.EventTagReceived, ProfileID: "p1"},
		QueuedAt: time.Now().Add(-48 * time.Hour),
	}
	if err := store.Enqueue(stale); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	if err := relay.Drain(context.Background()); err != nil {
		t.Fatalf("Drain: %v", err)
	}
	if len(pub.published) != 0 {
		t.Error("nothing should publish while the broker is down")
	}
	if relay.Size() != 0 {
		t.Errorf("outbox size = %d, want 0 once the entry ages past retention", relay.Size())
	}
}

func TestDrainDropsAfterMaxRetries(t *testing.T) {
	store := openRelayStore(t)
	pub := &fakePublisher{err: errors.New("broker refused")}
	relay := NewEventRelay(store, pub, fakeHealth{online: true}, nil, RelayConfig{MaxRetries: 2})

	if err := store.Enqueue(outbox.Entry{ID: "doomed", Event: domain.Event{}}); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	// First failure requeues, second drops.
	for i := 0; i < 2; i++ {
		if err := relay.Drain(context.Background()); err != nil {
			t.Fatalf("Drain #%d: %v", i+1, err)
		}
	}
	if relay.Size() != 0 {
		t.Errorf("outbox size = %d, want 0 after the entry is dropped", relay.Size())
	}
}
