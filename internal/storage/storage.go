// Package storage provides the key-value blob store that reminder state is
// persisted to. Each key holds one JSON-encoded collection.
package storage

import "context"

// Keys of the persisted collections.
const (
	KeyReminders    = "reminders"
	KeyMedications  = "medications"
	KeyAppointments = "appointments"
)

// Adapter gets and sets string blobs by key.
type Adapter interface {
	// Get returns the value stored under key. The boolean is false when
	// nothing has been stored yet; that is not an error.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set replaces the value stored under key.
	Set(ctx context.Context, key, value string) error
}
