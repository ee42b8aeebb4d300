package app

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/carereminder/internal/notify"
)

// NotificationMsg carries a delivered reminder into the TUI.
type NotificationMsg struct {
	Payload notify.Payload
}

// Notifier is a notify.Deliverer that forwards notifications to a running
// Bubble Tea program. Deliveries before SetProgram are dropped.
type Notifier struct {
	mu      sync.Mutex
	program *tea.Program
}

var _ notify.Deliverer = (*Notifier)(nil)

// SetProgram attaches the program that receives NotificationMsg. Pass nil
// once the program has exited.
func (n *Notifier) SetProgram(p *tea.Program) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.program = p
}

// Deliver sends p to the attached program.
func (n *Notifier) Deliver(_ context.Context, p notify.Payload) error {
	n.mu.Lock()
	prog := n.program
	n.mu.Unlock()

	if prog != nil {
		prog.Send(NotificationMsg{Payload: p})
	}
	return nil
}
