package reminderlist

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/carereminder/internal/model"
	"github.com/nhle/carereminder/internal/theme"
)

// Item wraps a model.Reminder so it can be used in a bubbles/list.
type Item struct {
	Reminder model.Reminder
}

func (i Item) FilterValue() string { return i.Reminder.Title }

func (i Item) Title() string { return i.Reminder.Title }

// Description returns a short summary line for the list.
func (i Item) Description() string {
	parts := []string{string(i.Reminder.Type), i.Reminder.Date, i.Reminder.Time}
	if i.Reminder.Recurring {
		parts = append(parts, string(i.Reminder.Frequency))
	}
	return strings.Join(parts, " | ")
}

// ItemDelegate renders one reminder per line.
type ItemDelegate struct {
	// missed marks every row as past due; set for the missed section.
	missed bool
}

func (d ItemDelegate) Height() int { return 1 }

func (d ItemDelegate) Spacing() int { return 0 }

func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single reminder line.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(Item)
	if !ok {
		return
	}
	fmt.Fprint(w, renderLine(it.Reminder, index == m.Index(), d.missed))
}

func renderLine(r model.Reminder, selected, missed bool) string {
	prefix := "○"
	if r.Completed {
		prefix = "✓"
	}

	badge := theme.TypeStyle(string(r.Type)).Render(strings.ToUpper(string(r.Type)))
	when := theme.TimeStyle.Render(r.Date + " " + r.Time)

	repeat := ""
	if r.Recurring {
		repeat = " ↻ " + string(r.Frequency)
	}

	alarm := ""
	if r.NotificationID != "" {
		alarm = " ⏰"
	}

	late := ""
	if missed {
		late = theme.MissedStyle.Render(" MISSED")
	}

	line := fmt.Sprintf("%s %s %s %s%s%s%s", prefix, when, badge, r.Title, repeat, alarm, late)

	if r.Completed {
		line = theme.DimmedStyle.Render(line)
	}
	if selected {
		return theme.SelectedItemStyle.Render(line)
	}
	return theme.ListItemStyle.Render(line)
}
