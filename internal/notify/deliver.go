package notify

import (
	"context"

	"github.com/sirupsen/logrus"
)

// LogDeliverer writes each notification to the process log.
type LogDeliverer struct {
	log logrus.FieldLogger
}

// NewLogDeliverer returns a deliverer logging at info level.
func NewLogDeliverer(log logrus.FieldLogger) *LogDeliverer {
	return &LogDeliverer{log: log}
}

// Deliver logs p.
func (d *LogDeliverer) Deliver(_ context.Context, p Payload) error {
	d.log.WithFields(logrus.Fields{
		"reminder_id": p.ReminderID,
		"elderly_id":  p.ElderlyID,
		"type":        p.Type,
	}).Infof("%s: %s", p.Title, p.Body)
	return nil
}
