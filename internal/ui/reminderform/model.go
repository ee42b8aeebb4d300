package reminderform

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/carereminder/internal/model"
	"github.com/nhle/carereminder/internal/theme"
)

// ReminderCreatedMsg is dispatched when the create form is submitted.
type ReminderCreatedMsg struct {
	Input model.ReminderInput
}

// ReminderEditedMsg is dispatched when the edit form is submitted. Only
// the fields the form shows are set in Update.
type ReminderEditedMsg struct {
	ID     string
	Update model.ReminderUpdate
}

// FormCancelMsg is dispatched when the user aborts the form.
type FormCancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	title        string
	description  string
	reminderType string
	date         string
	time         string
	recurring    bool
	frequency    string
	alarm        string
	elderlyID    string
}

// Model is the Bubble Tea model for the reminder create/edit form.
type Model struct {
	form     *huh.Form
	fb       *formBindings
	editMode bool
	editID   string
	elderly  []string
	width    int
	height   int
}

// New creates a new reminder form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{},
		width:  width,
		height: height,
	}
}

// SetElderly sets the dependents offered by the "For" selector. With
// fewer than two the selector is left out.
func (m *Model) SetElderly(ids []string) {
	m.elderly = append([]string(nil), ids...)
}

// StartCreate resets the form for a new reminder on the given day.
func (m *Model) StartCreate(today string) tea.Cmd {
	m.editMode = false
	m.editID = ""
	*m.fb = formBindings{
		reminderType: string(model.ReminderTypeMedication),
		date:         today,
	}
	if len(m.elderly) > 0 {
		m.fb.elderlyID = m.elderly[0]
	}
	m.form = m.buildForm()
	return m.form.Init()
}

// StartEdit fills the form from an existing reminder.
func (m *Model) StartEdit(r model.Reminder) tea.Cmd {
	m.editMode = true
	m.editID = r.ID
	*m.fb = formBindings{
		title:        r.Title,
		description:  r.Description,
		reminderType: string(r.Type),
		date:         r.Date,
		time:         r.Time,
		recurring:    r.Recurring,
		frequency:    string(r.Frequency),
		elderlyID:    r.ElderlyID,
	}
	if r.AlarmDuration > 0 {
		m.fb.alarm = (time.Duration(r.AlarmDuration) * time.Second).String()
	}
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the reminder form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		return m, m.handleSubmit()
	case huh.StateAborted:
		return m, func() tea.Msg { return FormCancelMsg{} }
	}
	return m, cmd
}

// View renders the reminder form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleText := "New Reminder"
	if m.editMode {
		titleText = "Edit Reminder"
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	content := titleStyle.Render(titleText) + "\n" + m.form.View()

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	fields := []huh.Field{
		huh.NewInput().
			Title("Title").
			Placeholder("Take blood pressure pill").
			Value(&m.fb.title).
			Validate(validateRequired("Title")),
		huh.NewText().
			Title("Description").
			Placeholder("Optional details...").
			Value(&m.fb.description),
		huh.NewSelect[string]().
			Title("Type").
			Options(
				huh.NewOption("Medication", string(model.ReminderTypeMedication)),
				huh.NewOption("Appointment", string(model.ReminderTypeAppointment)),
				huh.NewOption("Hydration", string(model.ReminderTypeHydration)),
				huh.NewOption("Custom", string(model.ReminderTypeCustom)),
			).
			Value(&m.fb.reminderType),
		huh.NewInput().
			Title("Date").
			Placeholder("YYYY-MM-DD").
			Value(&m.fb.date).
			Validate(validateDate),
		huh.NewInput().
			Title("Time").
			Placeholder("HH:MM").
			Value(&m.fb.time).
			Validate(validateTime),
		huh.NewConfirm().
			Title("Repeats?").
			Value(&m.fb.recurring),
		huh.NewSelect[string]().
			Title("Frequency").
			Description("Used when the reminder repeats").
			Options(
				huh.NewOption("None", ""),
				huh.NewOption("Daily", string(model.FrequencyDaily)),
				huh.NewOption("Weekly", string(model.FrequencyWeekly)),
				huh.NewOption("Monthly", string(model.FrequencyMonthly)),
			).
			Value(&m.fb.frequency),
		huh.NewInput().
			Title("Alarm").
			Placeholder("e.g. 30s or 2m, empty for no alarm").
			Value(&m.fb.alarm).
			Validate(validateAlarm),
	}

	if !m.editMode && len(m.elderly) > 1 {
		opts := make([]huh.Option[string], len(m.elderly))
		for i, id := range m.elderly {
			opts[i] = huh.NewOption(id, id)
		}
		fields = append(fields,
			huh.NewSelect[string]().
				Title("For").
				Options(opts...).
				Value(&m.fb.elderlyID),
		)
	}

	return huh.NewForm(
		huh.NewGroup(fields...),
	).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

func (m Model) handleSubmit() tea.Cmd {
	fb := *m.fb
	alarm := alarmSeconds(fb.alarm)

	if !m.editMode {
		in := model.ReminderInput{
			Type:          model.ReminderType(fb.reminderType),
			Title:         strings.TrimSpace(fb.title),
			Description:   strings.TrimSpace(fb.description),
			Date:          strings.TrimSpace(fb.date),
			Time:          strings.TrimSpace(fb.time),
			Recurring:     fb.recurring,
			AlarmDuration: alarm,
			ElderlyID:     fb.elderlyID,
		}
		if fb.recurring {
			in.Frequency = model.Frequency(fb.frequency)
		}
		return func() tea.Msg { return ReminderCreatedMsg{Input: in} }
	}

	title := strings.TrimSpace(fb.title)
	description := strings.TrimSpace(fb.description)
	reminderType := model.ReminderType(fb.reminderType)
	date := strings.TrimSpace(fb.date)
	clock := strings.TrimSpace(fb.time)
	frequency := model.Frequency(fb.frequency)
	upd := model.ReminderUpdate{
		Type:          &reminderType,
		Title:         &title,
		Description:   &description,
		Date:          &date,
		Time:          &clock,
		Recurring:     &fb.recurring,
		Frequency:     &frequency,
		AlarmDuration: &alarm,
	}
	id := m.editID
	return func() tea.Msg { return ReminderEditedMsg{ID: id, Update: upd} }
}

func (m Model) formWidth() int {
	return min(max(m.width-4, 40), 100)
}

func (m Model) formHeight() int {
	return max(m.height-4, 10)
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

func validateDate(s string) error {
	if _, err := time.Parse(model.DateLayout, strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("invalid date format, use YYYY-MM-DD")
	}
	return nil
}

func validateTime(s string) error {
	if _, err := time.Parse(model.TimeLayout, strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("invalid time format, use HH:MM")
	}
	return nil
}

func validateAlarm(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return fmt.Errorf("invalid alarm duration, use e.g. 30s or 2m")
	}
	return nil
}

// alarmSeconds converts a validated duration string to whole seconds.
func alarmSeconds(s string) int {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return int(d / time.Second)
}
