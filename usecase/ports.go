package usecase

import (
	"context"

	"github.com/sustaingain/backend/domain"
)

// Notifier receives abstract engagement events. Implementations deliver them
// out of band; emitting must never fail the operation that produced the event.
type Notifier interface {
	Emit(ctx context.Context, event domain.Event) error
}

// PhotoVerifier classifies photo evidence for a task. A label matching the
// task's expectation lets self-reports skip peer approval. The collaborator
// is unreliable: any error means "no auto-approval".
type PhotoVerifier interface {
	Classify(ctx context.Context, photoRef, taskTitle, category string) (string, bool, error)
}

// Geocoder resolves coordinates into a human-readable location string.
type Geocoder interface {
	Reverse(ctx context.Context, lat, lon float64) (string, error)
}
