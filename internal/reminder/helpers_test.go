package reminder

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"

	"github.com/nhle/carereminder/internal/logging"
	"github.com/nhle/carereminder/internal/model"
	"github.com/nhle/carereminder/internal/notify"
	"github.com/nhle/carereminder/internal/storage"
	"github.com/nhle/carereminder/internal/testutil"
)

// testNow is a Friday morning.
var testNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

const (
	today     = "2025-03-14"
	yesterday = "2025-03-13"
	tomorrow  = "2025-03-15"
)

var caregiver = &model.User{ID: "c1", Role: model.RoleCaregiver, Elderly: []string{"e1", "e2"}}

var errDeliver = errors.New("delivery failed")

// fakePlatform hands out sequential handles and records every call.
type fakePlatform struct {
	mu        sync.Mutex
	seq       int
	oneShots  []time.Time
	daily     [][2]int
	cancelled []string
	delivered []string
	panicOn   string
	failOn    string
}

func (f *fakePlatform) nextHandle() string {
	f.seq++
	return fmt.Sprintf("h%d", f.seq)
}

func (f *fakePlatform) RequestOneShot(_ context.Context, at time.Time, _ notify.Payload) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.oneShots = append(f.oneShots, at)
	return f.nextHandle(), nil
}

func (f *fakePlatform) RequestRecurring(_ context.Context, hour, minute int, _ notify.Payload) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.daily = append(f.daily, [2]int{hour, minute})
	return f.nextHandle(), nil
}

func (f *fakePlatform) Cancel(_ context.Context, handle string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = append(f.cancelled, handle)
	return nil
}

func (f *fakePlatform) Deliver(_ context.Context, p notify.Payload) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p.ReminderID == f.panicOn {
		panic("platform exploded")
	}
	if p.ReminderID == f.failOn {
		return errDeliver
	}
	f.delivered = append(f.delivered, p.ReminderID)
	return nil
}

func (f *fakePlatform) deliveredIDs() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.delivered...)
}

type fixture struct {
	store    *Store
	clock    *clock.Mock
	platform *fakePlatform
	storage  *testutil.FailingStorage
}

// newFixture builds a store over in-memory SQLite, signed in as a
// caregiver of e1 and e2, with the clock frozen at testNow.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureOn(t, testutil.NewFailingStorage(testutil.NewTestStorage(t)))
}

func newFixtureOn(t *testing.T, fs *testutil.FailingStorage) *fixture {
	t.Helper()

	clk := clock.NewMock()
	clk.Set(testNow)

	plat := &fakePlatform{}
	sched := notify.NewScheduler(plat, clk, time.UTC, logging.Discard())
	s := New(fs, sched, Options{
		Clock:    clk,
		Location: time.UTC,
		Logger:   logging.Discard(),
	})
	t.Cleanup(s.Stop)

	s.OnUserChanged(context.Background(), caregiver)

	return &fixture{store: s, clock: clk, platform: plat, storage: fs}
}

// seed writes reminders straight into storage and reloads the view, for
// records AddReminder would refuse to create.
func (f *fixture) seed(t *testing.T, reminders ...model.Reminder) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, saveCollection(ctx, f.storage, storage.KeyReminders, reminders))
	f.store.Reload(ctx)
}

func (f *fixture) persisted(t *testing.T) []model.Reminder {
	t.Helper()
	items, err := loadCollection[model.Reminder](context.Background(), f.storage, storage.KeyReminders)
	require.NoError(t, err)
	return items
}

func ids(reminders []model.Reminder) []string {
	out := make([]string, 0, len(reminders))
	for _, r := range reminders {
		out = append(out, r.ID)
	}
	return out
}

func oneOff(title, date, hhmm string) model.ReminderInput {
	return model.ReminderInput{
		Type:      model.ReminderTypeMedication,
		Title:     title,
		Date:      date,
		Time:      hhmm,
		ElderlyID: "e1",
	}
}

func daily(title, date, hhmm string) model.ReminderInput {
	in := oneOff(title, date, hhmm)
	in.Recurring = true
	in.Frequency = model.FrequencyDaily
	return in
}
