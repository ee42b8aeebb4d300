// Package reminder holds the caregiving reminder store: the user-scoped
// in-memory collections, their persistence, the derived views and the
// due-reminder poll loop.
package reminder

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/nhle/carereminder/internal/model"
	"github.com/nhle/carereminder/internal/notify"
	"github.com/nhle/carereminder/internal/storage"
)

const (
	DefaultPollInterval = 60 * time.Second
	DefaultDueWindow    = 60 * time.Second
)

// Scheduler requests and cancels platform alarms for reminders.
// *notify.Scheduler implements it.
type Scheduler interface {
	Schedule(ctx context.Context, r model.Reminder) notify.Result
	Cancel(ctx context.Context, handle string) error
	DeliverNow(ctx context.Context, r model.Reminder) error
}

// Options configures a Store. Zero values select the defaults.
type Options struct {
	Clock        clock.Clock
	Location     *time.Location
	Logger       logrus.FieldLogger
	PollInterval time.Duration
	DueWindow    time.Duration
}

// Store owns the in-memory reminders, medications and appointments of the
// current session user. The persisted collections in storage are the
// superset they are filtered from. Every mutation holds the store lock
// across the read-modify-write of the persisted blob.
type Store struct {
	storage   storage.Adapter
	scheduler Scheduler
	clock     clock.Clock
	loc       *time.Location
	log       logrus.FieldLogger

	pollInterval time.Duration
	dueWindow    time.Duration

	mu           sync.Mutex
	user         *model.User
	reminders    []model.Reminder
	medications  []model.Medication
	appointments []model.Appointment

	loopMu sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a Store. It starts empty; call OnUserChanged to load the
// collections for a user and Start to run the poll loop.
func New(a storage.Adapter, sched Scheduler, opts Options) *Store {
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.DueWindow <= 0 {
		opts.DueWindow = DefaultDueWindow
	}
	return &Store{
		storage:      a,
		scheduler:    sched,
		clock:        opts.Clock,
		loc:          opts.Location,
		log:          opts.Logger.WithField("component", "reminders"),
		pollInterval: opts.PollInterval,
		dueWindow:    opts.DueWindow,
	}
}

// User returns a copy of the current session user, or nil when signed out.
func (s *Store) User() *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	u.Elderly = append([]string(nil), s.user.Elderly...)
	return &u
}

// OnUserChanged replaces the session user and reloads every collection
// from storage, keeping only the records the user may see. A collection
// that cannot be read is treated as empty.
func (s *Store) OnUserChanged(ctx context.Context, user *model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user != nil {
		u := *user
		u.Elderly = append([]string(nil), user.Elderly...)
		user = &u
	}
	s.user = user

	if user == nil {
		s.reminders, s.medications, s.appointments = nil, nil, nil
		return
	}

	reminders, err := loadCollection[model.Reminder](ctx, s.storage, storage.KeyReminders)
	if err != nil {
		s.log.WithError(err).Warn("loading reminders, continuing with none")
	}
	medications, err := loadCollection[model.Medication](ctx, s.storage, storage.KeyMedications)
	if err != nil {
		s.log.WithError(err).Warn("loading medications, continuing with none")
	}
	appointments, err := loadCollection[model.Appointment](ctx, s.storage, storage.KeyAppointments)
	if err != nil {
		s.log.WithError(err).Warn("loading appointments, continuing with none")
	}

	s.reminders = visible(reminders, user, reminderOwner)
	s.medications = visible(medications, user, medicationOwner)
	s.appointments = visible(appointments, user, appointmentOwner)

	s.log.WithFields(logrus.Fields{
		"user_id":      user.ID,
		"reminders":    len(s.reminders),
		"medications":  len(s.medications),
		"appointments": len(s.appointments),
	}).Info("collections loaded")
}

// Reload re-reads the collections for the current user.
func (s *Store) Reload(ctx context.Context) {
	s.OnUserChanged(ctx, s.User())
}

// AddReminder validates in, schedules its alarm and stores the new
// reminder. A scheduling failure only leaves NotificationID empty. When
// the write fails the returned error is a *PersistenceError and the
// reminder stays in memory.
func (s *Store) AddReminder(ctx context.Context, in model.ReminderInput) (model.Reminder, error) {
	now := s.clock.Now()

	in, err := s.validateInput(in, now)
	if err != nil {
		return model.Reminder{}, err
	}

	r := model.Reminder{
		ID:            uuid.New().String(),
		Type:          in.Type,
		Title:         in.Title,
		Description:   in.Description,
		Date:          in.Date,
		Time:          in.Time,
		Recurring:     in.Recurring,
		Frequency:     in.Frequency,
		AlarmDuration: in.AlarmDuration,
		ElderlyID:     in.ElderlyID,
		RelatedItemID: in.RelatedItemID,
		CreatedAt:     now.UTC(),
	}

	log := s.log.WithField("reminder_id", r.ID)

	res := s.scheduler.Schedule(ctx, r)
	if res.IsScheduled() {
		r.NotificationID = res.Handle
	} else {
		log.WithField("result", res.String()).Info("reminder created without alarm")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user.CanSee(r.ElderlyID) {
		s.reminders = append(s.reminders, r)
	}

	err = mutateCollection(ctx, s.storage, storage.KeyReminders, func(items []model.Reminder) []model.Reminder {
		return append(items, r)
	})
	if err != nil {
		log.WithError(err).Error("persisting new reminder")
		return r, err
	}
	return r, nil
}

// validateInput checks in and fills the defaults: an empty type becomes
// custom and an empty elderly id becomes the user's default dependent.
// New reminders must belong to a dependent the user can see.
func (s *Store) validateInput(in model.ReminderInput, now time.Time) (model.ReminderInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Type == "" {
		in.Type = model.ReminderTypeCustom
	}
	if in.ElderlyID == "" {
		in.ElderlyID = s.User().DefaultElderlyID()
	}

	err := validateRecord(model.Reminder{
		Type:          in.Type,
		Title:         in.Title,
		Date:          in.Date,
		Time:          in.Time,
		Recurring:     in.Recurring,
		Frequency:     in.Frequency,
		AlarmDuration: in.AlarmDuration,
		ElderlyID:     in.ElderlyID,
	})
	if err != nil {
		return in, err
	}

	if !s.User().CanSee(in.ElderlyID) {
		return in, invalid("elderlyId", "elderly person %q is not linked to this account", in.ElderlyID)
	}

	at, err := model.CombineDateTime(in.Date, in.Time, s.loc)
	if err != nil {
		return in, invalid("date", "%s", err.Error())
	}
	if !in.Recurring && at.Before(now) {
		return in, invalid("date", "reminder time must be in the future")
	}
	return in, nil
}

// validateRecord checks the fields every stored reminder must satisfy.
// It does not look at whether the reminder lies in the past.
func validateRecord(r model.Reminder) error {
	if r.Title == "" {
		return invalid("title", "title is required")
	}
	if r.Date == "" {
		return invalid("date", "date is required")
	}
	if r.Time == "" {
		return invalid("time", "time is required")
	}
	if !r.Type.Valid() {
		return invalid("type", "unknown reminder type %q", r.Type)
	}
	if r.ElderlyID == "" {
		return invalid("elderlyId", "no elderly person is associated with this account")
	}

	switch {
	case r.Recurring && r.Frequency == "":
		return invalid("frequency", "frequency is required for recurring reminders")
	case r.Recurring && !r.Frequency.Valid():
		return invalid("frequency", "unknown frequency %q", r.Frequency)
	case !r.Recurring && r.Frequency != "":
		return invalid("frequency", "frequency is only allowed on recurring reminders")
	}

	if r.AlarmDuration < 0 {
		return invalid("alarmDuration", "alarm duration cannot be negative")
	}

	if _, err := time.Parse(model.DateLayout, r.Date); err != nil {
		return invalid("date", "date must be YYYY-MM-DD")
	}
	if _, err := time.Parse(model.TimeLayout, r.Time); err != nil {
		return invalid("time", "time must be HH:MM")
	}
	return nil
}

// UpdateReminder merges upd into the reminder with the given id. An id
// outside the current view is ignored. The merged reminder must pass the
// same field checks as a new one, otherwise a *ValidationError is
// returned and nothing changes. Changing the date, time, recurrence or
// alarm duration cancels the previous alarm and schedules a new one;
// completing a reminder cancels its alarm.
func (s *Store) UpdateReminder(ctx context.Context, id string, upd model.ReminderUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := indexOf(s.reminders, id, reminderID)
	if i < 0 {
		return nil
	}

	old := s.reminders[i]
	r := upd.Apply(old)
	r.Title = strings.TrimSpace(r.Title)
	if r.Type == "" {
		r.Type = model.ReminderTypeCustom
	}
	if r.Recurring && r.Frequency == "" {
		r.Frequency = model.FrequencyDaily
	}
	if err := validateRecord(r); err != nil {
		return err
	}
	if r.Completed && r.CompletedTime == nil {
		now := s.clock.Now().UTC()
		r.CompletedTime = &now
	}

	log := s.log.WithField("reminder_id", id)

	switch {
	case r.Completed && !old.Completed:
		s.cancelAlarm(ctx, old)
		r.NotificationID = ""
	case upd.ReschedulesAlarm(old):
		s.cancelAlarm(ctx, old)
		r.NotificationID = ""
		res := s.scheduler.Schedule(ctx, r)
		if res.IsScheduled() {
			r.NotificationID = res.Handle
		} else {
			log.WithField("result", res.String()).Info("reminder rescheduled without alarm")
		}
	}

	s.reminders[i] = r

	err := mutateCollection(ctx, s.storage, storage.KeyReminders, func(items []model.Reminder) []model.Reminder {
		return upsert(items, r, reminderID)
	})
	if err != nil {
		log.WithError(err).Error("persisting reminder update")
		return err
	}
	return nil
}

// DeleteReminder removes the reminder from memory and storage and
// cancels its alarm.
func (s *Store) DeleteReminder(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i := indexOf(s.reminders, id, reminderID); i >= 0 {
		s.cancelAlarm(ctx, s.reminders[i])
		s.reminders = remove(s.reminders, id, reminderID)
	}

	err := mutateCollection(ctx, s.storage, storage.KeyReminders, func(items []model.Reminder) []model.Reminder {
		return remove(items, id, reminderID)
	})
	if err != nil {
		s.log.WithError(err).WithField("reminder_id", id).Error("persisting reminder deletion")
		return err
	}
	return nil
}

// MarkReminderComplete sets Completed and CompletedTime.
func (s *Store) MarkReminderComplete(ctx context.Context, id string) error {
	completed := true
	now := s.clock.Now().UTC()
	return s.UpdateReminder(ctx, id, model.ReminderUpdate{
		Completed:     &completed,
		CompletedTime: &now,
	})
}

// HandleDelivered marks the reminder correlated with a delivered
// notification as notified.
func (s *Store) HandleDelivered(ctx context.Context, p notify.Payload) {
	if p.ReminderID == "" {
		return
	}
	notified := true
	if err := s.UpdateReminder(ctx, p.ReminderID, model.ReminderUpdate{Notified: &notified}); err != nil {
		s.log.WithError(err).WithField("reminder_id", p.ReminderID).Warn("marking delivered reminder notified")
	}
}

// Rearm asks the platform again for the alarm of every open reminder in
// view that has one. Platform alarms do not survive a restart, so this
// runs once the platform is up. Handles that change are persisted and
// the number of reminders that ended up with an alarm is returned.
func (s *Store) Rearm(ctx context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	var changed []model.Reminder
	armed := 0
	for i, r := range s.reminders {
		if r.Completed || r.AlarmDuration <= 0 {
			continue
		}

		s.cancelAlarm(ctx, r)
		handle := ""
		res := s.scheduler.Schedule(ctx, r)
		if res.IsScheduled() {
			handle = res.Handle
			armed++
		} else {
			s.log.WithFields(logrus.Fields{
				"reminder_id": r.ID,
				"result":      res.String(),
			}).Info("reminder left without alarm")
		}

		if handle != r.NotificationID {
			r.NotificationID = handle
			s.reminders[i] = r
			changed = append(changed, r)
		}
	}

	if len(changed) > 0 {
		err := mutateCollection(ctx, s.storage, storage.KeyReminders, func(items []model.Reminder) []model.Reminder {
			for _, r := range changed {
				items = upsert(items, r, reminderID)
			}
			return items
		})
		if err != nil {
			s.log.WithError(err).Error("persisting rearmed alarms")
		}
	}

	s.log.WithField("armed", armed).Info("alarms rearmed")
	return armed
}

func (s *Store) cancelAlarm(ctx context.Context, r model.Reminder) {
	if r.NotificationID == "" {
		return
	}
	err := s.scheduler.Cancel(ctx, r.NotificationID)
	switch {
	case errors.Is(err, notify.ErrUnknownHandle):
		// One-shot alarms are gone once they fire.
	case err != nil:
		s.log.WithError(err).WithField("reminder_id", r.ID).Warn("cancelling stale alarm")
	}
}
