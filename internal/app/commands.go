package app

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/carereminder/internal/model"
	"github.com/nhle/carereminder/internal/reminder"
)

// savedMsg reports the outcome of a store mutation.
type savedMsg struct {
	text string
	err  error
}

func (m Model) addReminder(in model.ReminderInput) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		r, err := s.AddReminder(context.Background(), in)
		if err != nil && !reminder.IsPersistence(err) {
			return savedMsg{err: err}
		}
		text := fmt.Sprintf("added %q", r.Title)
		if r.AlarmDuration > 0 && r.NotificationID == "" {
			text += " (no alarm scheduled)"
		}
		return savedMsg{text: text, err: err}
	}
}

func (m Model) updateReminder(id string, upd model.ReminderUpdate) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		err := s.UpdateReminder(context.Background(), id, upd)
		return savedMsg{text: "reminder updated", err: err}
	}
}

func (m Model) completeReminder(r model.Reminder) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		err := s.MarkReminderComplete(context.Background(), r.ID)
		return savedMsg{text: fmt.Sprintf("completed %q", r.Title), err: err}
	}
}

func (m Model) deleteReminder(r model.Reminder) tea.Cmd {
	s := m.store
	return func() tea.Msg {
		err := s.DeleteReminder(context.Background(), r.ID)
		return savedMsg{text: fmt.Sprintf("deleted %q", r.Title), err: err}
	}
}

func (m Model) reload() tea.Cmd {
	s := m.store
	return func() tea.Msg {
		s.Reload(context.Background())
		return savedMsg{text: "reloaded"}
	}
}

// relatedLabel describes the medication or appointment r links to.
func (m Model) relatedLabel(r model.Reminder) string {
	if r.RelatedItemID == "" {
		return ""
	}
	for _, med := range m.store.Medications() {
		if med.ID == r.RelatedItemID {
			return fmt.Sprintf("medication %s %s", med.Name, med.Dosage)
		}
	}
	for _, a := range m.store.Appointments() {
		if a.ID == r.RelatedItemID {
			return fmt.Sprintf("appointment %s on %s %s", a.Title, a.Date, a.Time)
		}
	}
	return r.RelatedItemID
}
