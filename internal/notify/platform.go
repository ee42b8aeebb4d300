package notify

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrUnknownHandle is returned when cancelling a handle the platform
	// does not hold.
	ErrUnknownHandle = errors.New("unknown alarm handle")

	// ErrPastTrigger is returned for a one-shot trigger that has already
	// passed.
	ErrPastTrigger = errors.New("trigger time is in the past")
)

// Platform is the host alarm service.
type Platform interface {
	// RequestOneShot schedules a single delivery at the given instant and
	// returns an opaque handle.
	RequestOneShot(ctx context.Context, at time.Time, p Payload) (string, error)

	// RequestRecurring schedules a delivery every day at hour:minute.
	RequestRecurring(ctx context.Context, hour, minute int, p Payload) (string, error)

	// Cancel removes a scheduled alarm.
	Cancel(ctx context.Context, handle string) error

	// Deliver shows p immediately, bypassing any timer.
	Deliver(ctx context.Context, p Payload) error
}

// Deliverer presents a notification to the user through one channel.
type Deliverer interface {
	Deliver(ctx context.Context, p Payload) error
}

// DelivererFunc adapts a function to the Deliverer interface.
type DelivererFunc func(ctx context.Context, p Payload) error

// Deliver calls f.
func (f DelivererFunc) Deliver(ctx context.Context, p Payload) error {
	return f(ctx, p)
}
