// Package app is the root Bubble Tea model of the reminder TUI.
package app

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/carereminder/internal/keys"
	"github.com/nhle/carereminder/internal/model"
	"github.com/nhle/carereminder/internal/reminder"
	"github.com/nhle/carereminder/internal/theme"
	"github.com/nhle/carereminder/internal/ui"
	"github.com/nhle/carereminder/internal/ui/command"
	"github.com/nhle/carereminder/internal/ui/detail"
	helpview "github.com/nhle/carereminder/internal/ui/help"
	"github.com/nhle/carereminder/internal/ui/reminderform"
	"github.com/nhle/carereminder/internal/ui/reminderlist"
)

// flashDuration is how long a status bar message stays up.
const flashDuration = 5 * time.Second

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewList ViewState = iota
	ViewDetail
	ViewForm
	ViewHelp
	ViewCommand
)

// flashExpiredMsg clears the flash it was scheduled for.
type flashExpiredMsg struct {
	seq int
}

// Model is the root Bubble Tea model that manages view routing, layout
// and access to the reminder store.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	store        *reminder.Store
	keys         *keys.KeyMap
	list         reminderlist.Model
	detail       detail.Model
	form         reminderform.Model
	helpView     helpview.Model
	commandView  command.Model
	ready        bool

	flash      string
	flashStyle lipgloss.Style
	flashSeq   int
}

// New creates the root model over s.
func New(s *reminder.Store) Model {
	k := keys.DefaultKeyMap()
	return Model{
		currentView: ViewList,
		store:       s,
		keys:        k,
		list:        reminderlist.New(s, k, 80, 24),
		detail:      detail.New(k, 80, 24),
		form:        reminderform.New(80, 24),
		helpView:    helpview.New(k, 80, 24),
		commandView: command.New(80, 24),
	}
}

// Init loads the first section of the list.
func (m Model) Init() tea.Cmd {
	return m.list.Init()
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
		m.list.SetSize(w, h)
		m.detail.SetSize(w, h)
		m.form.SetSize(w, h)
		m.helpView.SetSize(w, h)
		m.commandView.SetSize(w, h)
		// Forward to the active view so huh forms can lay out.
		return m.updateActiveView(msg)

	case reminderlist.RemindersLoadedMsg:
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd

	case reminderlist.SelectedReminderMsg:
		r, ok := m.store.Reminder(msg.ReminderID)
		if !ok {
			return m, m.setFlash("reminder no longer exists", theme.ErrorStyle)
		}
		m.detail.SetReminder(r, m.relatedLabel(r))
		m.previousView = m.currentView
		m.currentView = ViewDetail
		return m, nil

	case detail.BackMsg:
		m.currentView = ViewList
		return m, nil

	case reminderform.ReminderCreatedMsg:
		m.currentView = ViewList
		return m, m.addReminder(msg.Input)

	case reminderform.ReminderEditedMsg:
		m.currentView = ViewList
		return m, m.updateReminder(msg.ID, msg.Update)

	case reminderform.FormCancelMsg:
		m.currentView = ViewList
		return m, nil

	case savedMsg:
		if msg.err != nil {
			return m, tea.Batch(m.setFlash(msg.err.Error(), theme.ErrorStyle), m.list.LoadReminders())
		}
		return m, tea.Batch(m.setFlash(msg.text, theme.StatusBarStyle), m.list.LoadReminders())

	case NotificationMsg:
		text := fmt.Sprintf("🔔 %s: %s", msg.Payload.Title, msg.Payload.Body)
		return m, tea.Batch(m.setFlash(text, theme.FlashStyle), m.list.LoadReminders())

	case flashExpiredMsg:
		if msg.seq == m.flashSeq {
			m.flash = ""
		}
		return m, nil

	case command.CommandMsg:
		m.currentView = m.previousView
		return m, m.executeCommand(string(msg))

	case command.CancelMsg:
		m.currentView = m.previousView
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		// The form and the palette own the keyboard while open.
		if m.currentView == ViewForm || m.currentView == ViewCommand {
			break
		}

		switch {
		case key.Matches(msg, m.keys.Help):
			if m.currentView == ViewHelp {
				m.currentView = m.previousView
				return m, nil
			}
			m.previousView = m.currentView
			m.currentView = ViewHelp
			return m, nil

		case key.Matches(msg, m.keys.Back) && m.currentView == ViewHelp:
			m.currentView = m.previousView
			return m, nil

		case key.Matches(msg, m.keys.Command):
			m.previousView = m.currentView
			m.currentView = ViewCommand
			return m, m.commandView.Focus()

		case key.Matches(msg, m.keys.Quit) && m.currentView == ViewList:
			return m, tea.Quit
		}

		if cmd, ok := m.handleReminderKeys(msg); ok {
			return m, cmd
		}
	}

	return m.updateActiveView(msg)
}

// handleReminderKeys runs the reminder actions available from the list
// and detail views.
func (m *Model) handleReminderKeys(msg tea.KeyMsg) (tea.Cmd, bool) {
	if m.currentView != ViewList && m.currentView != ViewDetail {
		return nil, false
	}

	current := func() (model.Reminder, bool) {
		if m.currentView == ViewDetail {
			return m.detail.Reminder()
		}
		return m.list.SelectedReminder()
	}

	switch {
	case key.Matches(msg, m.keys.New):
		return m.startCreate(), true

	case key.Matches(msg, m.keys.Refresh):
		return m.reload(), true

	case key.Matches(msg, m.keys.Edit):
		r, ok := current()
		if !ok {
			return nil, true
		}
		m.previousView = m.currentView
		m.currentView = ViewForm
		return m.form.StartEdit(r), true

	case key.Matches(msg, m.keys.Complete):
		r, ok := current()
		if !ok || r.Completed {
			return nil, true
		}
		m.currentView = ViewList
		return m.completeReminder(r), true

	case key.Matches(msg, m.keys.Delete):
		r, ok := current()
		if !ok {
			return nil, true
		}
		m.currentView = ViewList
		return m.deleteReminder(r), true
	}
	return nil, false
}

func (m *Model) startCreate() tea.Cmd {
	if u := m.store.User(); u != nil {
		if u.Role == model.RoleElderly {
			m.form.SetElderly([]string{u.ID})
		} else {
			m.form.SetElderly(u.Elderly)
		}
	}
	m.previousView = m.currentView
	m.currentView = ViewForm
	return m.form.StartCreate(m.store.Today())
}

// setFlash shows text in the status bar until it expires or is replaced.
func (m *Model) setFlash(text string, style lipgloss.Style) tea.Cmd {
	m.flashSeq++
	m.flash = text
	m.flashStyle = style
	seq := m.flashSeq
	return tea.Tick(flashDuration, func(time.Time) tea.Msg {
		return flashExpiredMsg{seq: seq}
	})
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewList:
		m.list, cmd = m.list.Update(msg)
	case ViewDetail:
		m.detail, cmd = m.detail.Update(msg)
	case ViewForm:
		m.form, cmd = m.form.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader("Care Reminders", m.sessionLabel())
	statusBar := m.layout.RenderStatusBar(m.keyHints(), m.flash, m.flashStyle)

	return m.layout.RenderWithFrame(header, m.renderContent(), statusBar)
}

func (m Model) renderContent() string {
	switch m.currentView {
	case ViewList:
		return m.list.View()
	case ViewDetail:
		return m.detail.View()
	case ViewForm:
		return m.form.View()
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	default:
		return ""
	}
}

// sessionLabel summarizes the signed-in user for the header.
func (m Model) sessionLabel() string {
	u := m.store.User()
	if u == nil {
		return "signed out"
	}
	if u.Role == model.RoleCaregiver {
		return fmt.Sprintf("%s (caregiver, %d)", u.ID, len(u.Elderly))
	}
	return u.ID
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return "enter execute | tab complete | esc back"
	case ViewDetail:
		return "esc back | e edit | c complete | d delete | j/k scroll"
	case ViewForm:
		return "enter next | shift+tab previous | esc cancel"
	default:
		return "q quit | ? help | n new | tab section | c complete | d delete | : command"
	}
}

// executeCommand handles a command string from the command palette.
func (m *Model) executeCommand(cmd string) tea.Cmd {
	switch cmd {
	case reminder.ViewToday, reminder.ViewUpcoming, reminder.ViewMissed, reminder.ViewAll:
		m.currentView = ViewList
		return m.list.SetSection(cmd)
	case "new", "add":
		return m.startCreate()
	case "reload", "refresh":
		return m.reload()
	case "quit", "q":
		return tea.Quit
	default:
		return m.setFlash(fmt.Sprintf("unknown command %q", cmd), theme.ErrorStyle)
	}
}
