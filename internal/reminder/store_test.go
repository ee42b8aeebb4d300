package reminder

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/carereminder/internal/logging"
	"github.com/nhle/carereminder/internal/model"
	"github.com/nhle/carereminder/internal/notify"
	"github.com/nhle/carereminder/internal/storage"
	"github.com/nhle/carereminder/internal/testutil"
)

func TestAddReminderRejectsPastOneOff(t *testing.T) {
	tests := []struct {
		name string
		date string
		time string
	}{
		{"yesterday", yesterday, "10:00"},
		{"earlier today", today, "09:00"},
		{"previous minute", today, "09:29"},
		{"long ago", "2020-01-01", "23:59"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			_, err := f.store.AddReminder(context.Background(), oneOff("Pills", tt.date, tt.time))
			require.Error(t, err)
			assert.True(t, IsValidation(err))
			assert.Empty(t, f.store.Reminders())
			assert.Zero(t, f.storage.SetCalls())
		})
	}
}

func TestAddReminderValidation(t *testing.T) {
	tests := []struct {
		name  string
		field string
		edit  func(in *model.ReminderInput)
	}{
		{"blank title", "title", func(in *model.ReminderInput) { in.Title = "   " }},
		{"missing date", "date", func(in *model.ReminderInput) { in.Date = "" }},
		{"missing time", "time", func(in *model.ReminderInput) { in.Time = "" }},
		{"malformed date", "date", func(in *model.ReminderInput) { in.Date = "15/03/2025" }},
		{"malformed time", "time", func(in *model.ReminderInput) { in.Time = "7pm" }},
		{"unknown type", "type", func(in *model.ReminderInput) { in.Type = "exercise" }},
		{"recurring without frequency", "frequency", func(in *model.ReminderInput) { in.Recurring = true }},
		{"unknown frequency", "frequency", func(in *model.ReminderInput) {
			in.Recurring = true
			in.Frequency = "hourly"
		}},
		{"frequency on one-off", "frequency", func(in *model.ReminderInput) { in.Frequency = model.FrequencyWeekly }},
		{"negative alarm", "alarmDuration", func(in *model.ReminderInput) { in.AlarmDuration = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			in := oneOff("Pills", tomorrow, "08:00")
			tt.edit(&in)

			_, err := f.store.AddReminder(context.Background(), in)
			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "got %v", err)
			assert.Equal(t, tt.field, ve.Field)
			assert.Empty(t, f.store.Reminders())
			assert.Empty(t, f.platform.oneShots)
		})
	}
}

func TestAddReminderNeedsElderlyAssociation(t *testing.T) {
	f := newFixture(t)
	f.store.OnUserChanged(context.Background(), &model.User{ID: "c2", Role: model.RoleCaregiver})

	in := oneOff("Pills", tomorrow, "08:00")
	in.ElderlyID = ""

	_, err := f.store.AddReminder(context.Background(), in)
	assert.True(t, IsValidation(err))
}

func TestAddReminderDefaults(t *testing.T) {
	f := newFixture(t)

	r, err := f.store.AddReminder(context.Background(), model.ReminderInput{
		Title: "  Call the pharmacy ",
		Date:  tomorrow,
		Time:  "14:00",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, r.ID)
	assert.Equal(t, "Call the pharmacy", r.Title)
	assert.Equal(t, model.ReminderTypeCustom, r.Type)
	assert.Equal(t, "e1", r.ElderlyID, "first associated dependent")
	assert.False(t, r.Completed)
	assert.False(t, r.Notified)
	assert.Nil(t, r.CompletedTime)
	assert.True(t, r.CreatedAt.Equal(testNow))
}

func TestAddReminderWithoutAlarmIsNotScheduled(t *testing.T) {
	f := newFixture(t)

	r, err := f.store.AddReminder(context.Background(), oneOff("Pills", today, "09:32"))
	require.NoError(t, err)

	assert.Empty(t, r.NotificationID)
	assert.Empty(t, f.platform.oneShots)
	assert.Equal(t, []string{r.ID}, ids(f.store.TodaysReminders()))
}

func TestAddReminderSchedulesAlarm(t *testing.T) {
	f := newFixture(t)

	in := oneOff("Pills", today, "10:00")
	in.AlarmDuration = 30
	once, err := f.store.AddReminder(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "h1", once.NotificationID)
	require.Len(t, f.platform.oneShots, 1)
	assert.True(t, f.platform.oneShots[0].Equal(testNow.Add(30*time.Minute)))

	rec := daily("Water", today, "08:00")
	rec.AlarmDuration = 5
	repeat, err := f.store.AddReminder(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, "h2", repeat.NotificationID)
	assert.Equal(t, [][2]int{{8, 0}}, f.platform.daily)

	persisted := f.persisted(t)
	require.Len(t, persisted, 2)
	assert.Equal(t, "h1", persisted[0].NotificationID)
	assert.Equal(t, "h2", persisted[1].NotificationID)
}

func TestAddReminderWriteFailureKeepsMemory(t *testing.T) {
	f := newFixture(t)
	f.storage.FailWrites(true)

	r, err := f.store.AddReminder(context.Background(), oneOff("Pills", tomorrow, "08:00"))
	require.Error(t, err)
	assert.True(t, IsPersistence(err))
	assert.ErrorIs(t, err, testutil.ErrInjected)

	got, ok := f.store.Reminder(r.ID)
	require.True(t, ok)
	assert.Equal(t, r, got)
}

func TestMutationReadFailureDoesNotWrite(t *testing.T) {
	f := newFixture(t)
	f.storage.FailReads(true)

	_, err := f.store.AddReminder(context.Background(), oneOff("Pills", tomorrow, "08:00"))
	var pe *PersistenceError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, "read", pe.Op)
	assert.Zero(t, f.storage.SetCalls())
}

func TestAddReminderForHiddenDependent(t *testing.T) {
	f := newFixture(t)

	in := oneOff("Pills", tomorrow, "08:00")
	in.ElderlyID = "e9"
	_, err := f.store.AddReminder(context.Background(), in)

	var ve *ValidationError
	require.True(t, errors.As(err, &ve), "got %v", err)
	assert.Equal(t, "elderlyId", ve.Field)
	assert.Empty(t, f.store.Reminders())
	assert.Empty(t, f.platform.oneShots)
	assert.Zero(t, f.storage.SetCalls())
}

func TestRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.store.AddReminder(ctx, oneOff("Pills", tomorrow, "08:00"))
	require.NoError(t, err)
	b, err := f.store.AddReminder(ctx, daily("Water", today, "11:00"))
	require.NoError(t, err)
	withAlarm := oneOff("Dentist", tomorrow, "15:30")
	withAlarm.AlarmDuration = 90
	withAlarm.Description = "Bring the referral"
	withAlarm.RelatedItemID = "appt-1"
	_, err = f.store.AddReminder(ctx, withAlarm)
	require.NoError(t, err)

	title := "Blood pressure pills"
	require.NoError(t, f.store.UpdateReminder(ctx, a.ID, model.ReminderUpdate{Title: &title}))
	require.NoError(t, f.store.MarkReminderComplete(ctx, b.ID))

	want := f.store.Reminders()

	reloaded := New(f.storage, notify.NewScheduler(&fakePlatform{}, f.clock, time.UTC, logging.Discard()), Options{
		Clock:    f.clock,
		Location: f.store.loc,
		Logger:   f.store.log,
	})
	reloaded.OnUserChanged(ctx, caregiver)

	assert.Equal(t, want, reloaded.Reminders())
}

func TestRearmAfterRestart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	withAlarm := daily("Water", tomorrow, "08:00")
	withAlarm.AlarmDuration = 5
	r, err := f.store.AddReminder(ctx, withAlarm)
	require.NoError(t, err)
	quiet, err := f.store.AddReminder(ctx, oneOff("Walk", tomorrow, "10:00"))
	require.NoError(t, err)
	done := oneOff("Pills", tomorrow, "09:00")
	done.AlarmDuration = 5
	d, err := f.store.AddReminder(ctx, done)
	require.NoError(t, err)
	require.NoError(t, f.store.MarkReminderComplete(ctx, d.ID))

	stale := due("stale", "08:00")
	stale.AlarmDuration = 5
	stale.NotificationID = "h-old"
	require.NoError(t, mutateCollection(ctx, f.storage, storage.KeyReminders, func(items []model.Reminder) []model.Reminder {
		return append(items, stale)
	}))

	plat := &fakePlatform{seq: 10}
	restarted := New(f.storage, notify.NewScheduler(plat, f.clock, time.UTC, logging.Discard()), Options{
		Clock:    f.clock,
		Location: time.UTC,
		Logger:   logging.Discard(),
	})
	restarted.OnUserChanged(ctx, caregiver)

	assert.Equal(t, 1, restarted.Rearm(ctx))
	assert.Equal(t, [][2]int{{8, 0}}, plat.daily)
	assert.Empty(t, plat.oneShots)
	assert.ElementsMatch(t, []string{"h1", "h-old"}, plat.cancelled)

	got, _ := restarted.Reminder(r.ID)
	assert.Equal(t, "h11", got.NotificationID)
	got, _ = restarted.Reminder("stale")
	assert.Empty(t, got.NotificationID, "past one-off")
	got, _ = restarted.Reminder(quiet.ID)
	assert.Empty(t, got.NotificationID)

	persisted := map[string]string{}
	for _, p := range f.persisted(t) {
		persisted[p.ID] = p.NotificationID
	}
	assert.Equal(t, "h11", persisted[r.ID])
	assert.Empty(t, persisted["stale"])
}

func TestUpdateReminderUnknownIDIsNoop(t *testing.T) {
	f := newFixture(t)

	title := "x"
	require.NoError(t, f.store.UpdateReminder(context.Background(), "missing", model.ReminderUpdate{Title: &title}))
	assert.Zero(t, f.storage.SetCalls())
}

func TestUpdateReminderReschedules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := oneOff("Pills", tomorrow, "08:00")
	in.AlarmDuration = 60
	r, err := f.store.AddReminder(ctx, in)
	require.NoError(t, err)
	require.Equal(t, "h1", r.NotificationID)

	title := "Morning pills"
	require.NoError(t, f.store.UpdateReminder(ctx, r.ID, model.ReminderUpdate{Title: &title}))
	assert.Len(t, f.platform.oneShots, 1, "title change keeps the alarm")
	assert.Empty(t, f.platform.cancelled)

	at := "08:30"
	require.NoError(t, f.store.UpdateReminder(ctx, r.ID, model.ReminderUpdate{Time: &at}))
	assert.Equal(t, []string{"h1"}, f.platform.cancelled)
	require.Len(t, f.platform.oneShots, 2)

	got, _ := f.store.Reminder(r.ID)
	assert.Equal(t, "h2", got.NotificationID)
	assert.Equal(t, "08:30", got.Time)
	assert.Equal(t, "Morning pills", got.Title)

	off := 0
	require.NoError(t, f.store.UpdateReminder(ctx, r.ID, model.ReminderUpdate{AlarmDuration: &off}))
	got, _ = f.store.Reminder(r.ID)
	assert.Empty(t, got.NotificationID)
	assert.Equal(t, []string{"h1", "h2"}, f.platform.cancelled)
}

func TestUpdateReminderKeepsRecurrenceInvariant(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r, err := f.store.AddReminder(ctx, daily("Water", today, "11:00"))
	require.NoError(t, err)

	off := false
	require.NoError(t, f.store.UpdateReminder(ctx, r.ID, model.ReminderUpdate{Recurring: &off}))
	got, _ := f.store.Reminder(r.ID)
	assert.Empty(t, got.Frequency)

	on := true
	require.NoError(t, f.store.UpdateReminder(ctx, r.ID, model.ReminderUpdate{Recurring: &on}))
	got, _ = f.store.Reminder(r.ID)
	assert.Equal(t, model.FrequencyDaily, got.Frequency)
}

func TestUpdateReminderRejectsInvalidFields(t *testing.T) {
	blank := "  "
	badTime := "25:99"
	badDate := "2025-02-30"
	badType := model.ReminderType("exercise")
	negative := -5

	tests := []struct {
		name  string
		field string
		upd   model.ReminderUpdate
	}{
		{"blank title", "title", model.ReminderUpdate{Title: &blank}},
		{"malformed time", "time", model.ReminderUpdate{Time: &badTime}},
		{"impossible date", "date", model.ReminderUpdate{Date: &badDate}},
		{"unknown type", "type", model.ReminderUpdate{Type: &badType}},
		{"negative alarm", "alarmDuration", model.ReminderUpdate{AlarmDuration: &negative}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()

			in := oneOff("Pills", tomorrow, "08:00")
			in.AlarmDuration = 60
			r, err := f.store.AddReminder(ctx, in)
			require.NoError(t, err)
			writes := f.storage.SetCalls()

			err = f.store.UpdateReminder(ctx, r.ID, tt.upd)
			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "got %v", err)
			assert.Equal(t, tt.field, ve.Field)

			got, _ := f.store.Reminder(r.ID)
			assert.Equal(t, r, got)
			assert.Equal(t, []model.Reminder{r}, f.persisted(t))
			assert.Equal(t, writes, f.storage.SetCalls())
			assert.Empty(t, f.platform.cancelled)
			assert.Len(t, f.platform.oneShots, 1)
		})
	}
}

func TestUpdateReminderReschedulesOnRecurrenceToggle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := daily("Water", tomorrow, "08:00")
	in.AlarmDuration = 5
	r, err := f.store.AddReminder(ctx, in)
	require.NoError(t, err)
	require.Equal(t, "h1", r.NotificationID)
	require.Len(t, f.platform.daily, 1)

	off := false
	require.NoError(t, f.store.UpdateReminder(ctx, r.ID, model.ReminderUpdate{Recurring: &off}))
	assert.Equal(t, []string{"h1"}, f.platform.cancelled)
	require.Len(t, f.platform.oneShots, 1)
	got, _ := f.store.Reminder(r.ID)
	assert.Equal(t, "h2", got.NotificationID)
	assert.False(t, got.Recurring)

	on := true
	require.NoError(t, f.store.UpdateReminder(ctx, r.ID, model.ReminderUpdate{Recurring: &on}))
	assert.Equal(t, []string{"h1", "h2"}, f.platform.cancelled)
	assert.Len(t, f.platform.daily, 2)
	got, _ = f.store.Reminder(r.ID)
	assert.Equal(t, "h3", got.NotificationID)
	assert.Equal(t, model.FrequencyDaily, got.Frequency)
}

func TestDeleteReminder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	in := oneOff("Pills", tomorrow, "08:00")
	in.AlarmDuration = 10
	r, err := f.store.AddReminder(ctx, in)
	require.NoError(t, err)
	keep, err := f.store.AddReminder(ctx, oneOff("Water", tomorrow, "09:00"))
	require.NoError(t, err)

	require.NoError(t, f.store.DeleteReminder(ctx, r.ID))

	assert.Equal(t, []string{keep.ID}, ids(f.store.Reminders()))
	assert.Equal(t, []string{keep.ID}, ids(f.persisted(t)))
	assert.Equal(t, []string{r.NotificationID}, f.platform.cancelled)
}

func TestMarkReminderComplete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rec := daily("Water", today, "08:00")
	rec.AlarmDuration = 5
	r, err := f.store.AddReminder(ctx, rec)
	require.NoError(t, err)

	require.NoError(t, f.store.MarkReminderComplete(ctx, r.ID))

	got, ok := f.store.Reminder(r.ID)
	require.True(t, ok)
	assert.True(t, got.Completed)
	require.NotNil(t, got.CompletedTime)
	assert.True(t, got.CompletedTime.Equal(testNow))
	assert.Empty(t, got.NotificationID)
	assert.Equal(t, []string{r.NotificationID}, f.platform.cancelled)

	assert.Empty(t, f.store.TodaysReminders())
	assert.Empty(t, f.store.UpcomingReminders())
	assert.Empty(t, f.store.MissedReminders())

	persisted := f.persisted(t)
	require.Len(t, persisted, 1)
	assert.True(t, persisted[0].Completed)
	assert.NotNil(t, persisted[0].CompletedTime)
}

func TestUncompleteClearsCompletedTime(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r, err := f.store.AddReminder(ctx, oneOff("Pills", tomorrow, "08:00"))
	require.NoError(t, err)
	require.NoError(t, f.store.MarkReminderComplete(ctx, r.ID))

	no := false
	require.NoError(t, f.store.UpdateReminder(ctx, r.ID, model.ReminderUpdate{Completed: &no}))
	got, _ := f.store.Reminder(r.ID)
	assert.False(t, got.Completed)
	assert.Nil(t, got.CompletedTime)
}

func TestOnUserChangedScopesCollections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.seed(t,
		model.Reminder{ID: "r1", Title: "a", Date: tomorrow, Time: "08:00", ElderlyID: "e1"},
		model.Reminder{ID: "r2", Title: "b", Date: tomorrow, Time: "08:00", ElderlyID: "e2"},
		model.Reminder{ID: "r3", Title: "c", Date: tomorrow, Time: "08:00", ElderlyID: "e3"},
	)
	assert.ElementsMatch(t, []string{"r1", "r2"}, ids(f.store.Reminders()))

	f.store.OnUserChanged(ctx, &model.User{ID: "e3", Role: model.RoleElderly})
	assert.Equal(t, []string{"r3"}, ids(f.store.Reminders()))

	f.store.OnUserChanged(ctx, nil)
	assert.Empty(t, f.store.Reminders())
	assert.Nil(t, f.store.User())
}

func TestOnUserChangedReadFailureDegrades(t *testing.T) {
	f := newFixture(t)
	f.seed(t, model.Reminder{ID: "r1", Title: "a", Date: tomorrow, Time: "08:00", ElderlyID: "e1"})

	f.storage.FailReads(true)
	f.store.OnUserChanged(context.Background(), caregiver)

	assert.Empty(t, f.store.Reminders())
	assert.Empty(t, f.store.Medications())
	assert.Empty(t, f.store.Appointments())
}

func TestHandleDelivered(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	r, err := f.store.AddReminder(ctx, oneOff("Pills", tomorrow, "08:00"))
	require.NoError(t, err)

	f.store.HandleDelivered(ctx, notify.Payload{ReminderID: r.ID})

	got, _ := f.store.Reminder(r.ID)
	assert.True(t, got.Notified)
	assert.True(t, f.persisted(t)[0].Notified)
}

func TestConcurrentAddsKeepEveryWrite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const n = 20
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.store.AddReminder(ctx, oneOff(fmt.Sprintf("r%d", i), tomorrow, "08:00"))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	assert.Len(t, f.store.Reminders(), n)
	assert.Len(t, f.persisted(t), n)
}
