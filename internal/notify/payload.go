package notify

import (
	"time"

	"github.com/nhle/carereminder/internal/model"
)

// DefaultBody is the notification body used when a reminder has no
// description.
const DefaultBody = "Time for your reminder!"

// Payload is the content handed to the platform for delivery. ReminderID
// lets a delivered notification be correlated back to its reminder.
type Payload struct {
	ReminderID    string
	ElderlyID     string
	Type          model.ReminderType
	Title         string
	Body          string
	AlarmDuration time.Duration
}

// NewPayload builds the notification payload for r.
func NewPayload(r model.Reminder) Payload {
	body := r.Description
	if body == "" {
		body = DefaultBody
	}
	return Payload{
		ReminderID:    r.ID,
		ElderlyID:     r.ElderlyID,
		Type:          r.Type,
		Title:         r.Title,
		Body:          body,
		AlarmDuration: time.Duration(r.AlarmDuration) * time.Second,
	}
}
