package outbox

import (
	"time"

	"github.com/google/uuid"

	"github.com/sustaingain/backend/domain"
)

// Entry is an event waiting for delivery. Events land here first and are
// relayed to the broker by a background drainer, so a broker outage never
// loses a notification.
type Entry struct {
	ID       string       `json:"id"`
	Event    domain.Event `json:"event"`
	Retries  int          `json:"retries"`
	QueuedAt time.Time    `json:"queued_at"`

	bucketKey []byte
}

func (e *Entry) normalize() {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.QueuedAt.IsZero() {
		e.QueuedAt = time.Now()
	}
}
