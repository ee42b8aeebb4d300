package model

import (
	"fmt"
	"time"
)

// ReminderType classifies what a reminder is about.
type ReminderType string

const (
	ReminderTypeMedication  ReminderType = "medication"
	ReminderTypeAppointment ReminderType = "appointment"
	ReminderTypeHydration   ReminderType = "hydration"
	ReminderTypeCustom      ReminderType = "custom"
)

// Valid reports whether t is one of the known reminder types.
func (t ReminderType) Valid() bool {
	switch t {
	case ReminderTypeMedication, ReminderTypeAppointment,
		ReminderTypeHydration, ReminderTypeCustom:
		return true
	}
	return false
}

// Frequency is the repeat interval label of a recurring reminder.
type Frequency string

const (
	FrequencyDaily   Frequency = "daily"
	FrequencyWeekly  Frequency = "weekly"
	FrequencyMonthly Frequency = "monthly"
)

// Valid reports whether f is one of the known frequencies.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
		return true
	}
	return false
}

// Layouts used for the persisted date and time strings.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Reminder is a single caregiving reminder for an elderly dependent.
// The JSON names match the persisted blob format.
type Reminder struct {
	ID          string       `json:"id"`
	Type        ReminderType `json:"type"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`

	// Date is the calendar day (YYYY-MM-DD) and Time the wall-clock
	// hour:minute (HH:MM) of the occurrence.
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	Recurring bool      `json:"recurring"`
	Frequency Frequency `json:"frequency,omitempty"`

	// AlarmDuration is in seconds. Zero means no platform alarm is requested.
	AlarmDuration int `json:"alarmDuration,omitempty"`

	ElderlyID     string `json:"elderlyId"`
	RelatedItemID string `json:"relatedItemId,omitempty"`

	Completed     bool       `json:"completed"`
	CompletedTime *time.Time `json:"completedTime,omitempty"`
	Notified      bool       `json:"notified"`

	CreatedAt      time.Time `json:"createdAt"`
	NotificationID string    `json:"notificationId,omitempty"`
}

// ScheduledAt combines Date and Time into an instant in loc, at second
// precision.
func (r Reminder) ScheduledAt(loc *time.Location) (time.Time, error) {
	return CombineDateTime(r.Date, r.Time, loc)
}

// ClockTime returns the hour and minute of Time.
func (r Reminder) ClockTime() (hour, minute int, err error) {
	t, err := time.Parse(TimeLayout, r.Time)
	if err != nil {
		return 0, 0, fmt.Errorf("parsing time %q: %w", r.Time, err)
	}
	return t.Hour(), t.Minute(), nil
}

// CombineDateTime parses a YYYY-MM-DD date and an HH:MM time in loc.
func CombineDateTime(date, clock string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DateLayout+" "+TimeLayout, date+" "+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing date %q and time %q: %w", date, clock, err)
	}
	return t, nil
}

// ReminderInput holds the caller-supplied fields of a new reminder.
// Identity, lifecycle flags and bookkeeping are assigned by the store.
type ReminderInput struct {
	Type          ReminderType `json:"type"`
	Title         string       `json:"title"`
	Description   string       `json:"description,omitempty"`
	Date          string       `json:"date"`
	Time          string       `json:"time"`
	Recurring     bool         `json:"recurring"`
	Frequency     Frequency    `json:"frequency,omitempty"`
	AlarmDuration int          `json:"alarmDuration,omitempty"`
	ElderlyID     string       `json:"elderlyId"`
	RelatedItemID string       `json:"relatedItemId,omitempty"`
}

// ReminderUpdate holds optional fields for a partial update.
// Nil fields are left untouched.
type ReminderUpdate struct {
	Type          *ReminderType `json:"type,omitempty"`
	Title         *string       `json:"title,omitempty"`
	Description   *string       `json:"description,omitempty"`
	Date          *string       `json:"date,omitempty"`
	Time          *string       `json:"time,omitempty"`
	Recurring     *bool         `json:"recurring,omitempty"`
	Frequency     *Frequency    `json:"frequency,omitempty"`
	AlarmDuration *int          `json:"alarmDuration,omitempty"`
	RelatedItemID *string       `json:"relatedItemId,omitempty"`
	Completed     *bool         `json:"completed,omitempty"`
	CompletedTime *time.Time    `json:"completedTime,omitempty"`
	Notified      *bool         `json:"notified,omitempty"`
}

// Apply merges the non-nil fields of u into r and returns the result.
// Completion and recurrence invariants are kept: un-completing clears
// CompletedTime and turning recurrence off clears Frequency.
func (u ReminderUpdate) Apply(r Reminder) Reminder {
	if u.Type != nil {
		r.Type = *u.Type
	}
	if u.Title != nil {
		r.Title = *u.Title
	}
	if u.Description != nil {
		r.Description = *u.Description
	}
	if u.Date != nil {
		r.Date = *u.Date
	}
	if u.Time != nil {
		r.Time = *u.Time
	}
	if u.Recurring != nil {
		r.Recurring = *u.Recurring
	}
	if u.Frequency != nil {
		r.Frequency = *u.Frequency
	}
	if u.AlarmDuration != nil {
		r.AlarmDuration = *u.AlarmDuration
	}
	if u.RelatedItemID != nil {
		r.RelatedItemID = *u.RelatedItemID
	}
	if u.Completed != nil {
		r.Completed = *u.Completed
	}
	if u.CompletedTime != nil {
		t := *u.CompletedTime
		r.CompletedTime = &t
	}
	if u.Notified != nil {
		r.Notified = *u.Notified
	}

	if !r.Completed {
		r.CompletedTime = nil
	}
	if !r.Recurring {
		r.Frequency = ""
	}
	return r
}

// ReschedulesAlarm reports whether applying u to r changes any field the
// platform alarm depends on.
func (u ReminderUpdate) ReschedulesAlarm(r Reminder) bool {
	return (u.Date != nil && *u.Date != r.Date) ||
		(u.Time != nil && *u.Time != r.Time) ||
		(u.Recurring != nil && *u.Recurring != r.Recurring) ||
		(u.AlarmDuration != nil && *u.AlarmDuration != r.AlarmDuration)
}
