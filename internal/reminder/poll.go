package reminder

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/nhle/carereminder/internal/model"
)

// Start runs the due-reminder poll loop until ctx is cancelled or Stop is
// called. Calling Start on a running store does nothing; a loop that
// already exited because its context ended is replaced.
func (s *Store) Start(ctx context.Context) {
	s.loopMu.Lock()
	defer s.loopMu.Unlock()

	if s.done != nil {
		select {
		case <-s.done:
			s.cancel()
		default:
			return
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	ticker := s.clock.Ticker(s.pollInterval)
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.run(ctx, ticker, s.done)
}

// Stop halts the poll loop and waits for it to exit.
func (s *Store) Stop() {
	s.loopMu.Lock()
	defer s.loopMu.Unlock()

	if s.done == nil {
		return
	}
	s.cancel()
	<-s.done
	s.cancel = nil
	s.done = nil
}

func (s *Store) run(ctx context.Context, ticker *clock.Ticker, done chan struct{}) {
	defer close(done)
	defer ticker.Stop()

	s.log.WithField("interval", s.pollInterval).Info("due-reminder poll loop started")

	for {
		select {
		case <-ctx.Done():
			s.log.Info("due-reminder poll loop stopped")
			return
		case <-ticker.C:
			if n := s.CheckDue(ctx); n > 0 {
				s.log.WithField("count", n).Info("due reminders delivered")
			}
		}
	}
}

// CheckDue delivers every open, not yet notified reminder whose scheduled
// instant lies within the due window of now, and marks it notified. It
// returns the number delivered. A failing reminder never stops the scan.
func (s *Store) CheckDue(ctx context.Context) int {
	now := s.clock.Now()
	snapshot := s.Reminders()

	delivered := 0
	for _, r := range snapshot {
		if r.Completed || r.Notified {
			continue
		}
		if s.checkOne(ctx, r, now) {
			delivered++
		}
	}
	return delivered
}

func (s *Store) checkOne(ctx context.Context, r model.Reminder, now time.Time) (delivered bool) {
	log := s.log.WithField("reminder_id", r.ID)

	defer func() {
		if p := recover(); p != nil {
			log.WithField("panic", p).Error("due check failed")
			delivered = false
		}
	}()

	at, err := r.ScheduledAt(s.loc)
	if err != nil {
		log.WithError(err).Warn("skipping reminder with unreadable schedule")
		return false
	}

	diff := at.Sub(now)
	if diff > s.dueWindow || diff <= -s.dueWindow {
		return false
	}

	if err := s.scheduler.DeliverNow(ctx, r); err != nil {
		log.WithError(err).Warn("delivering due reminder")
		return false
	}

	notified := true
	if err := s.UpdateReminder(ctx, r.ID, model.ReminderUpdate{Notified: &notified}); err != nil {
		log.WithError(err).Warn("marking due reminder notified")
	}
	return true
}
