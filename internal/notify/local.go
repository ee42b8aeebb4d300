package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// alarm is one pending platform trigger. Exactly one of timer and entry
// is set.
type alarm struct {
	payload Payload
	timer   *clock.Timer
	entry   cron.EntryID
}

func (a *alarm) recurring() bool {
	return a.timer == nil
}

// LocalPlatform is an in-process alarm service. One-shot alarms run on
// the injected clock; daily alarms run on a cron scheduler in the
// configured location. Fired alarms and immediate deliveries fan out to
// every registered Deliverer.
type LocalPlatform struct {
	clock clock.Clock
	cron  *cron.Cron
	log   logrus.FieldLogger

	mu          sync.Mutex
	alarms      map[string]*alarm
	deliverers  []Deliverer
	onDelivered func(ctx context.Context, p Payload)
}

var _ Platform = (*LocalPlatform)(nil)

// NewLocalPlatform creates a platform. Call Start before recurring
// alarms can fire.
func NewLocalPlatform(clk clock.Clock, loc *time.Location, log logrus.FieldLogger, deliverers ...Deliverer) *LocalPlatform {
	if loc == nil {
		loc = time.Local
	}
	return &LocalPlatform{
		clock:      clk,
		cron:       cron.New(cron.WithLocation(loc)),
		log:        log.WithField("component", "platform"),
		alarms:     make(map[string]*alarm),
		deliverers: deliverers,
	}
}

// Start runs the recurring alarm scheduler in its own goroutine.
func (p *LocalPlatform) Start() {
	p.cron.Start()
}

// Stop halts the recurring scheduler, waits for running jobs and stops
// every pending one-shot timer.
func (p *LocalPlatform) Stop() {
	<-p.cron.Stop().Done()

	p.mu.Lock()
	defer p.mu.Unlock()
	for handle, a := range p.alarms {
		if a.timer != nil {
			a.timer.Stop()
			delete(p.alarms, handle)
		}
	}
}

// AddDeliverer registers another delivery channel.
func (p *LocalPlatform) AddDeliverer(d Deliverer) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deliverers = append(p.deliverers, d)
}

// OnDelivered registers the listener called after a scheduled alarm has
// been delivered. Immediate deliveries do not trigger it.
func (p *LocalPlatform) OnDelivered(fn func(ctx context.Context, p Payload)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onDelivered = fn
}

// Pending returns the number of alarms currently held.
func (p *LocalPlatform) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.alarms)
}

// RequestOneShot schedules a single delivery at the given instant.
func (p *LocalPlatform) RequestOneShot(_ context.Context, at time.Time, payload Payload) (string, error) {
	d := at.Sub(p.clock.Now())
	if d < 0 {
		return "", fmt.Errorf("one-shot at %s: %w", at.Format(time.RFC3339), ErrPastTrigger)
	}

	handle := uuid.New().String()

	p.mu.Lock()
	defer p.mu.Unlock()
	p.alarms[handle] = &alarm{
		payload: payload,
		timer:   p.clock.AfterFunc(d, func() { p.fire(handle) }),
	}
	return handle, nil
}

// RequestRecurring schedules a delivery every day at hour:minute.
func (p *LocalPlatform) RequestRecurring(_ context.Context, hour, minute int, payload Payload) (string, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return "", fmt.Errorf("invalid daily trigger %02d:%02d", hour, minute)
	}

	handle := uuid.New().String()
	spec := fmt.Sprintf("%d %d * * *", minute, hour)

	p.mu.Lock()
	defer p.mu.Unlock()
	entry, err := p.cron.AddFunc(spec, func() { p.fire(handle) })
	if err != nil {
		return "", fmt.Errorf("adding daily trigger %q: %w", spec, err)
	}
	p.alarms[handle] = &alarm{payload: payload, entry: entry}
	return handle, nil
}

// Cancel removes a pending alarm.
func (p *LocalPlatform) Cancel(_ context.Context, handle string) error {
	p.mu.Lock()
	a, ok := p.alarms[handle]
	delete(p.alarms, handle)
	p.mu.Unlock()

	if !ok {
		return fmt.Errorf("alarm %s: %w", handle, ErrUnknownHandle)
	}
	if a.recurring() {
		p.cron.Remove(a.entry)
	} else {
		a.timer.Stop()
	}
	return nil
}

// Deliver presents payload on every deliverer right away.
func (p *LocalPlatform) Deliver(ctx context.Context, payload Payload) error {
	return p.dispatch(ctx, payload)
}

// fire runs when an alarm's trigger is reached.
func (p *LocalPlatform) fire(handle string) {
	p.mu.Lock()
	a, ok := p.alarms[handle]
	if ok && !a.recurring() {
		delete(p.alarms, handle)
	}
	listener := p.onDelivered
	p.mu.Unlock()

	if !ok {
		// Cancelled after the timer had already fired.
		return
	}

	ctx := context.Background()
	if err := p.dispatch(ctx, a.payload); err != nil {
		p.log.WithError(err).WithField("reminder_id", a.payload.ReminderID).
			Warn("alarm delivery failed")
	}
	if listener != nil {
		listener(ctx, a.payload)
	}
}

func (p *LocalPlatform) dispatch(ctx context.Context, payload Payload) error {
	p.mu.Lock()
	deliverers := append([]Deliverer(nil), p.deliverers...)
	p.mu.Unlock()

	var errs []error
	for _, d := range deliverers {
		if err := d.Deliver(ctx, payload); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
