package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"

	"github.com/nhle/carereminder/internal/model"
)

// Reason explains why no alarm was scheduled.
type Reason string

const (
	ReasonNone            Reason = ""
	ReasonNoAlarm         Reason = "no_alarm"
	ReasonInvalidSchedule Reason = "invalid_schedule"
	ReasonInPast          Reason = "in_past"
	ReasonPlatform        Reason = "platform_error"
)

// Result is the outcome of a scheduling request: either a handle from the
// platform, or the reason none was produced.
type Result struct {
	Handle string
	Reason Reason
	Err    error
}

// Scheduled returns a successful result carrying handle.
func Scheduled(handle string) Result {
	return Result{Handle: handle}
}

// NotScheduled returns a result explaining why no alarm exists.
func NotScheduled(reason Reason, err error) Result {
	return Result{Reason: reason, Err: err}
}

// IsScheduled reports whether the platform produced a handle.
func (r Result) IsScheduled() bool {
	return r.Handle != ""
}

func (r Result) String() string {
	if r.IsScheduled() {
		return "scheduled(" + r.Handle + ")"
	}
	if r.Err != nil {
		return fmt.Sprintf("not scheduled(%s: %v)", r.Reason, r.Err)
	}
	return "not scheduled(" + string(r.Reason) + ")"
}

// Scheduler turns reminders into platform alarms.
type Scheduler struct {
	platform Platform
	clock    clock.Clock
	loc      *time.Location
	log      logrus.FieldLogger
}

// NewScheduler creates a Scheduler. Reminder dates and times are
// interpreted in loc.
func NewScheduler(p Platform, clk clock.Clock, loc *time.Location, log logrus.FieldLogger) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		platform: p,
		clock:    clk,
		loc:      loc,
		log:      log,
	}
}

// Schedule requests an alarm for r. It never fails: every problem is
// reported through the returned Result.
func (s *Scheduler) Schedule(ctx context.Context, r model.Reminder) Result {
	if r.AlarmDuration <= 0 {
		return NotScheduled(ReasonNoAlarm, nil)
	}

	at, err := r.ScheduledAt(s.loc)
	if err != nil {
		return NotScheduled(ReasonInvalidSchedule, err)
	}

	log := s.log.WithField("reminder_id", r.ID)

	if at.Before(s.clock.Now()) && !r.Recurring {
		log.WithField("at", at).Warn("cannot schedule notification for past date")
		return NotScheduled(ReasonInPast, nil)
	}

	payload := NewPayload(r)

	var handle string
	if r.Recurring {
		handle, err = s.platform.RequestRecurring(ctx, at.Hour(), at.Minute(), payload)
	} else {
		handle, err = s.platform.RequestOneShot(ctx, at, payload)
	}
	if err != nil {
		log.WithError(err).Warn("failed to schedule notification")
		return NotScheduled(ReasonPlatform, err)
	}

	log.WithField("handle", handle).Debug("notification scheduled")
	return Scheduled(handle)
}

// Cancel removes the alarm behind handle. An empty handle is a no-op.
func (s *Scheduler) Cancel(ctx context.Context, handle string) error {
	if handle == "" {
		return nil
	}
	if err := s.platform.Cancel(ctx, handle); err != nil {
		return fmt.Errorf("cancelling alarm %s: %w", handle, err)
	}
	return nil
}

// DeliverNow shows r's notification immediately.
func (s *Scheduler) DeliverNow(ctx context.Context, r model.Reminder) error {
	if err := s.platform.Deliver(ctx, NewPayload(r)); err != nil {
		return fmt.Errorf("delivering reminder %s: %w", r.ID, err)
	}
	return nil
}
