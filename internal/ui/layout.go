package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/carereminder/internal/theme"
)

// Layout manages the terminal frame dimensions: a one line header, the
// content area and a one line status bar.
type Layout struct {
	Width           int
	Height          int
	HeaderHeight    int
	StatusBarHeight int
}

// NewLayout creates a Layout with the given terminal dimensions.
func NewLayout(width, height int) Layout {
	return Layout{
		Width:           width,
		Height:          height,
		HeaderHeight:    1,
		StatusBarHeight: 1,
	}
}

func (l Layout) ContentWidth() int {
	return l.Width
}

// ContentHeight returns the height left for the active view.
func (l Layout) ContentHeight() int {
	h := l.Height - l.HeaderHeight - l.StatusBarHeight
	if h < 0 {
		return 0
	}
	return h
}

// RenderHeader renders the title bar with the session summary on the right.
func (l Layout) RenderHeader(title, session string) string {
	titleRendered := theme.HeaderStyle.Render(title)
	sessionRendered := theme.HeaderStyle.
		Align(lipgloss.Right).
		Render(session)

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		titleRendered,
		fill(theme.HeaderStyle, l.Width-lipgloss.Width(titleRendered)-lipgloss.Width(sessionRendered)),
		sessionRendered,
	)
}

// RenderStatusBar renders the bottom bar. A non-empty flash replaces the
// key hints and is drawn with style.
func (l Layout) RenderStatusBar(hints, flash string, style lipgloss.Style) string {
	rendered := theme.StatusBarStyle.Render(hints)
	if flash != "" {
		rendered = style.Render(flash)
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		rendered,
		fill(theme.StatusBarStyle, l.Width-lipgloss.Width(rendered)),
	)
}

// RenderWithFrame stacks header, content and status bar.
func (l Layout) RenderWithFrame(header, content, statusBar string) string {
	content = lipgloss.NewStyle().
		Height(l.ContentHeight()).
		MaxHeight(l.ContentHeight()).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
}

func fill(style lipgloss.Style, width int) string {
	if width <= 0 {
		return ""
	}
	return lipgloss.NewStyle().
		Width(width).
		Background(style.GetBackground()).
		Render("")
}
