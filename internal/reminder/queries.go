package reminder

import (
	"github.com/nhle/carereminder/internal/model"
)

// Named reminder views.
const (
	ViewAll      = "all"
	ViewToday    = "today"
	ViewUpcoming = "upcoming"
	ViewMissed   = "missed"
)

// View returns the reminders of the named view. An empty name means all.
func (s *Store) View(name string) ([]model.Reminder, error) {
	switch name {
	case "", ViewAll:
		return s.Reminders(), nil
	case ViewToday:
		return s.TodaysReminders(), nil
	case ViewUpcoming:
		return s.UpcomingReminders(), nil
	case ViewMissed:
		return s.MissedReminders(), nil
	}
	return nil, invalid("view", "view must be one of all, today, upcoming, missed")
}

// Reminders returns a snapshot of every reminder in the current view.
func (s *Store) Reminders() []model.Reminder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Reminder(nil), s.reminders...)
}

// Reminder returns the reminder with the given id from the current view.
func (s *Store) Reminder(id string) (model.Reminder, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexOf(s.reminders, id, reminderID); i >= 0 {
		return s.reminders[i], true
	}
	return model.Reminder{}, false
}

// RelatedReminders returns the reminders referencing a medication or
// appointment.
func (s *Store) RelatedReminders(itemID string) []model.Reminder {
	return s.filter(func(r model.Reminder, _, _ string) bool {
		return r.RelatedItemID == itemID
	})
}

// TodaysReminders returns open reminders due today. Every recurring
// reminder counts as due today.
func (s *Store) TodaysReminders() []model.Reminder {
	return s.filter(func(r model.Reminder, today, _ string) bool {
		return !r.Completed && (r.Recurring || r.Date == today)
	})
}

// UpcomingReminders returns open reminders after today. Every recurring
// reminder is also upcoming, so this overlaps TodaysReminders.
func (s *Store) UpcomingReminders() []model.Reminder {
	return s.filter(func(r model.Reminder, today, _ string) bool {
		return !r.Completed && (r.Recurring || r.Date > today)
	})
}

// MissedReminders returns open reminders dated before today, plus
// one-off reminders for today whose minute has passed. Recurring
// reminders are only excluded from the same-day branch.
func (s *Store) MissedReminders() []model.Reminder {
	return s.filter(func(r model.Reminder, today, clock string) bool {
		if r.Completed {
			return false
		}
		if r.Date < today {
			return true
		}
		return !r.Recurring && r.Date == today && r.Time < clock
	})
}

// filter snapshots the reminders matching keep. Dates and times are
// compared as zero-padded strings in the store's location.
func (s *Store) filter(keep func(r model.Reminder, today, clock string) bool) []model.Reminder {
	now := s.clock.Now().In(s.loc)
	today := now.Format(model.DateLayout)
	clock := now.Format(model.TimeLayout)

	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.Reminder
	for _, r := range s.reminders {
		if keep(r, today, clock) {
			out = append(out, r)
		}
	}
	return out
}

// Today returns the current date (YYYY-MM-DD) in the store's location.
func (s *Store) Today() string {
	return s.clock.Now().In(s.loc).Format(model.DateLayout)
}
