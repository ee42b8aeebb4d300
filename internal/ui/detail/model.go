// Package detail shows a single reminder with its linked item.
package detail

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/carereminder/internal/keys"
	"github.com/nhle/carereminder/internal/model"
	"github.com/nhle/carereminder/internal/theme"
)

// BackMsg is sent when the user leaves the detail view.
type BackMsg struct{}

// Model is the reminder detail view.
type Model struct {
	viewport viewport.Model
	keys     *keys.KeyMap
	reminder *model.Reminder
	related  string
	width    int
	height   int
}

// New creates a new detail view model.
func New(k *keys.KeyMap, width, height int) Model {
	return Model{
		viewport: viewport.New(max(width-6, 0), max(height-4, 0)),
		keys:     k,
		width:    width,
		height:   height,
	}
}

// SetReminder shows r. related describes the medication or appointment
// the reminder is linked to, if any.
func (m *Model) SetReminder(r model.Reminder, related string) {
	m.reminder = &r
	m.related = related
	m.viewport.SetContent(m.renderBody())
	m.viewport.GotoTop()
}

// Reminder returns the reminder on display.
func (m Model) Reminder() (model.Reminder, bool) {
	if m.reminder == nil {
		return model.Reminder{}, false
	}
	return *m.reminder, true
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && key.Matches(msg, m.keys.Back) {
		return m, func() tea.Msg { return BackMsg{} }
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.reminder == nil {
		return theme.PanelStyle.Render("No reminder selected")
	}
	return theme.PanelStyle.
		Width(max(m.width-4, 0)).
		Render(m.viewport.View())
}

// SetSize updates the detail view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = max(width-6, 0)
	m.viewport.Height = max(height-4, 0)
	if m.reminder != nil {
		m.viewport.SetContent(m.renderBody())
	}
}

func (m Model) renderBody() string {
	r := m.reminder

	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		Render(r.Title)

	status := "pending"
	switch {
	case r.Completed && r.CompletedTime != nil:
		status = "completed " + r.CompletedTime.Local().Format("2006-01-02 15:04")
	case r.Completed:
		status = "completed"
	case r.Notified:
		status = "notified"
	}

	repeat := "no"
	if r.Recurring {
		repeat = string(r.Frequency)
	}

	alarm := "none"
	if r.AlarmDuration > 0 {
		alarm = fmt.Sprintf("%ds", r.AlarmDuration)
		if r.NotificationID != "" {
			alarm += " (scheduled)"
		}
	}

	rows := [][2]string{
		{"Type", theme.TypeStyle(string(r.Type)).Render(string(r.Type))},
		{"When", theme.TimeStyle.Render(r.Date + " " + r.Time)},
		{"Repeats", repeat},
		{"Alarm", alarm},
		{"For", r.ElderlyID},
		{"Status", status},
	}
	if m.related != "" {
		rows = append(rows, [2]string{"Linked", m.related})
	}

	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n\n")
	for _, row := range rows {
		b.WriteString(theme.LabelStyle.Render(row[0]))
		b.WriteString(row[1])
		b.WriteString("\n")
	}
	if r.Description != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Width(max(m.width-8, 20)).Render(r.Description))
		b.WriteString("\n")
	}
	return b.String()
}
