package reminderform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/carereminder/internal/model"
)

func TestHandleSubmit_CreateBuildsInput(t *testing.T) {
	m := New(80, 24)
	m.SetElderly([]string{"e1", "e2"})
	m.StartCreate("2025-03-14")

	m.fb.title = "  Evening pills "
	m.fb.time = "20:00"
	m.fb.recurring = true
	m.fb.frequency = string(model.FrequencyDaily)
	m.fb.alarm = "2m"

	msg := m.handleSubmit()()
	created, ok := msg.(ReminderCreatedMsg)
	require.True(t, ok, "expected ReminderCreatedMsg, got %T", msg)

	in := created.Input
	assert.Equal(t, "Evening pills", in.Title)
	assert.Equal(t, model.ReminderTypeMedication, in.Type)
	assert.Equal(t, "2025-03-14", in.Date)
	assert.Equal(t, "20:00", in.Time)
	assert.Equal(t, model.FrequencyDaily, in.Frequency)
	assert.Equal(t, 120, in.AlarmDuration)
	assert.Equal(t, "e1", in.ElderlyID)
}

func TestHandleSubmit_OneOffDropsFrequency(t *testing.T) {
	m := New(80, 24)
	m.StartCreate("2025-03-14")
	m.fb.title = "Call doctor"
	m.fb.time = "10:00"
	m.fb.frequency = string(model.FrequencyWeekly)

	created := m.handleSubmit()().(ReminderCreatedMsg)
	assert.False(t, created.Input.Recurring)
	assert.Empty(t, created.Input.Frequency)
	assert.Zero(t, created.Input.AlarmDuration)
}

func TestHandleSubmit_EditBuildsUpdate(t *testing.T) {
	m := New(80, 24)
	m.StartEdit(model.Reminder{
		ID:            "r1",
		Type:          model.ReminderTypeHydration,
		Title:         "Water",
		Date:          "2025-03-14",
		Time:          "11:00",
		AlarmDuration: 90,
	})
	assert.Equal(t, "1m30s", m.fb.alarm)

	m.fb.time = "12:30"

	msg := m.handleSubmit()()
	edited, ok := msg.(ReminderEditedMsg)
	require.True(t, ok, "expected ReminderEditedMsg, got %T", msg)
	assert.Equal(t, "r1", edited.ID)

	require.NotNil(t, edited.Update.Time)
	assert.Equal(t, "12:30", *edited.Update.Time)
	require.NotNil(t, edited.Update.AlarmDuration)
	assert.Equal(t, 90, *edited.Update.AlarmDuration)

	orig := model.Reminder{Date: "2025-03-14", Time: "11:00", AlarmDuration: 90}
	assert.True(t, edited.Update.ReschedulesAlarm(orig))
}

func TestValidators(t *testing.T) {
	assert.NoError(t, validateDate("2025-03-14"))
	assert.Error(t, validateDate("14/03/2025"))

	assert.NoError(t, validateTime("08:05"))
	assert.Error(t, validateTime("8am"))

	assert.NoError(t, validateAlarm(""))
	assert.NoError(t, validateAlarm("45s"))
	assert.Error(t, validateAlarm("-5s"))
	assert.Error(t, validateAlarm("soon"))

	assert.Error(t, validateRequired("Title")("   "))
	assert.NoError(t, validateRequired("Title")("x"))
}

func TestAlarmSeconds(t *testing.T) {
	assert.Equal(t, 0, alarmSeconds(""))
	assert.Equal(t, 30, alarmSeconds("30s"))
	assert.Equal(t, 3600, alarmSeconds("1h"))
}
