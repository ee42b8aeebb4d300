// Package reminderlist is the sectioned reminder list view.
package reminderlist

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/carereminder/internal/keys"
	"github.com/nhle/carereminder/internal/model"
	"github.com/nhle/carereminder/internal/reminder"
	"github.com/nhle/carereminder/internal/theme"
)

// Sections are the views the list cycles through, in tab order.
var Sections = []string{
	reminder.ViewToday,
	reminder.ViewUpcoming,
	reminder.ViewMissed,
	reminder.ViewAll,
}

// Source supplies the reminders of a named view. *reminder.Store
// implements it.
type Source interface {
	View(name string) ([]model.Reminder, error)
}

// RemindersLoadedMsg carries the reminders of one section.
type RemindersLoadedMsg struct {
	Section   string
	Reminders []model.Reminder
	Err       error
}

// SelectedReminderMsg is sent when the user opens a reminder.
type SelectedReminderMsg struct {
	ReminderID string
}

// Model is the reminder list view component.
type Model struct {
	list    list.Model
	source  Source
	keys    *keys.KeyMap
	section int
	err     error
	width   int
	height  int
}

// New creates a new reminder list model showing today's reminders.
func New(src Source, k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, ItemDelegate{}, width, max(height-2, 0))
	l.SetShowTitle(false)
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.SetStatusBarItemName("reminder", "reminders")

	return Model{
		list:   l,
		source: src,
		keys:   k,
		width:  width,
		height: height,
	}
}

// Init loads the first section.
func (m Model) Init() tea.Cmd {
	return m.LoadReminders()
}

// Section returns the name of the active section.
func (m Model) Section() string {
	return Sections[m.section]
}

// SetSection switches to the named section and reloads it. Unknown names
// are ignored.
func (m *Model) SetSection(name string) tea.Cmd {
	for i, s := range Sections {
		if s == name {
			m.section = i
			return m.LoadReminders()
		}
	}
	return nil
}

// LoadReminders returns a command that reads the active section.
func (m Model) LoadReminders() tea.Cmd {
	src := m.source
	section := m.Section()
	return func() tea.Msg {
		reminders, err := src.View(section)
		return RemindersLoadedMsg{Section: section, Reminders: reminders, Err: err}
	}
}

// SelectedReminder returns the reminder under the cursor.
func (m Model) SelectedReminder() (model.Reminder, bool) {
	it, ok := m.list.SelectedItem().(Item)
	if !ok {
		return model.Reminder{}, false
	}
	return it.Reminder, true
}

// Len returns the number of reminders shown.
func (m Model) Len() int {
	return len(m.list.Items())
}

// Update handles messages for the list view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case RemindersLoadedMsg:
		// Drop results of a section the user has already left.
		if msg.Section != m.Section() {
			return m, nil
		}
		m.err = msg.Err
		items := make([]list.Item, len(msg.Reminders))
		for i, r := range msg.Reminders {
			items[i] = Item{Reminder: r}
		}
		m.list.SetDelegate(ItemDelegate{missed: msg.Section == reminder.ViewMissed})
		return m, m.list.SetItems(items)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Select):
			r, ok := m.SelectedReminder()
			if !ok {
				return m, nil
			}
			return m, func() tea.Msg { return SelectedReminderMsg{ReminderID: r.ID} }

		case key.Matches(msg, m.keys.NextSection):
			m.section = (m.section + 1) % len(Sections)
			return m, m.LoadReminders()

		case key.Matches(msg, m.keys.PrevSection):
			m.section = (m.section + len(Sections) - 1) % len(Sections)
			return m, m.LoadReminders()
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the section tabs above the list.
func (m Model) View() string {
	body := m.list.View()
	if m.err != nil {
		body = theme.MissedStyle.Render(fmt.Sprintf("could not load reminders: %v", m.err))
	} else if len(m.list.Items()) == 0 {
		body = theme.ListItemStyle.Foreground(theme.ColorGray).Render("nothing here")
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.renderTabs(), "", body)
}

func (m Model) renderTabs() string {
	tabs := make([]string, len(Sections))
	for i, s := range Sections {
		label := s
		if i == m.section {
			tabs[i] = theme.ActiveTabStyle.Render(label)
		} else {
			tabs[i] = theme.TabStyle.Render(label)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, max(height-2, 0))
}
