package notify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/benbjohnson/clock"
	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	"github.com/emersion/go-message/mail"

	"github.com/nhle/carereminder/internal/model"
)

// AuthError indicates the IMAP server rejected the mailbox credentials.
type AuthError struct {
	Username string
	Message  string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("mailbox auth error for %s: %s", e.Username, e.Message)
}

// IsAuthError reports whether err is or wraps an *AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// Mailbox delivers notifications by appending a message to an IMAP
// mailbox, so reminders show up in the caregiver's mail client.
type Mailbox struct {
	host     string
	port     string
	username string
	password string
	tls      bool
	mailbox  string
	from     string
	clock    clock.Clock
}

var _ Deliverer = (*Mailbox)(nil)

// NewMailbox creates a mailbox deliverer from cfg. The password is
// supplied separately since it is kept in the keyring.
func NewMailbox(cfg model.MailboxConfig, password string, clk clock.Clock) *Mailbox {
	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	mailbox := cfg.Mailbox
	if mailbox == "" {
		mailbox = "INBOX"
	}
	return &Mailbox{
		host:     cfg.Host,
		port:     cfg.Port,
		username: cfg.Username,
		password: password,
		tls:      cfg.TLS,
		mailbox:  mailbox,
		from:     from,
		clock:    clk,
	}
}

// Deliver appends p to the configured mailbox.
func (m *Mailbox) Deliver(ctx context.Context, p Payload) error {
	msg, err := m.compose(p)
	if err != nil {
		return err
	}

	client, err := m.connect(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = client.Logout().Wait() }()

	appendCmd := client.Append(m.mailbox, int64(len(msg)), &imap.AppendOptions{
		Time: m.clock.Now(),
	})
	if _, err := appendCmd.Write(msg); err != nil {
		return fmt.Errorf("writing message to %s: %w", m.mailbox, err)
	}
	if err := appendCmd.Close(); err != nil {
		return fmt.Errorf("closing append to %s: %w", m.mailbox, err)
	}
	if _, err := appendCmd.Wait(); err != nil {
		return fmt.Errorf("appending to %s: %w", m.mailbox, err)
	}
	return nil
}

func (m *Mailbox) connect(_ context.Context) (*imapclient.Client, error) {
	addr := m.host + ":" + m.port

	var client *imapclient.Client
	var err error

	if m.tls {
		client, err = imapclient.DialTLS(addr, nil)
	} else {
		client, err = imapclient.DialStartTLS(addr, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("connecting to IMAP %s: %w", addr, err)
	}

	if err := client.Login(m.username, m.password).Wait(); err != nil {
		_ = client.Logout().Wait()
		return nil, &AuthError{
			Username: m.username,
			Message:  err.Error(),
		}
	}

	return client, nil
}

// compose renders p as a single-part plain text RFC 5322 message.
func (m *Mailbox) compose(p Payload) ([]byte, error) {
	var h mail.Header
	h.SetDate(m.clock.Now())
	h.SetSubject("Reminder: " + p.Title)
	h.SetAddressList("From", []*mail.Address{{Name: "Care Reminders", Address: m.from}})
	h.SetAddressList("To", []*mail.Address{{Address: m.username}})
	h.Set("X-Reminder-Id", p.ReminderID)
	h.SetContentType("text/plain", map[string]string{"charset": "utf-8"})
	if err := h.GenerateMessageID(); err != nil {
		return nil, fmt.Errorf("generating message id: %w", err)
	}

	var buf bytes.Buffer
	w, err := mail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return nil, fmt.Errorf("creating message writer: %w", err)
	}
	body := p.Body + "\r\n"
	if p.ElderlyID != "" {
		body += "\r\nFor: " + p.ElderlyID + "\r\n"
	}
	if _, err := io.WriteString(w, body); err != nil {
		return nil, fmt.Errorf("writing message body: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("closing message writer: %w", err)
	}
	return buf.Bytes(), nil
}
