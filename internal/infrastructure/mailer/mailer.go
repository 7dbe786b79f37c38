package mailer

import (
	"context"
	"fmt"
	"sync"

	"gopkg.in/gomail.v2"

	"github.com/labstock/backend/internal/infrastructure/config"
)

// Message is a single outbound email
type Message struct {
	Subject string
	Body    string // plain text
}

// Mailer delivers notification emails to the configured recipients
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPMailer sends mail through an SMTP relay using gomail
type SMTPMailer struct {
	dialer     *gomail.Dialer
	from       string
	recipients []string
}

// NewSMTPMailer creates a mailer from the mail configuration
func NewSMTPMailer(cfg config.MailConfig) *SMTPMailer {
	return &SMTPMailer{
		dialer:     gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:       cfg.From,
		recipients: cfg.Recipients,
	}
}

// Send delivers the message to all configured recipients
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	mail := gomail.NewMessage()
	mail.SetHeader("From", m.from)
	mail.SetHeader("To", m.recipients...)
	mail.SetHeader("Subject", msg.Subject)
	mail.SetBody("text/plain", msg.Body)

	if err := m.dialer.DialAndSend(mail); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	return nil
}

var _ Mailer = (*SMTPMailer)(nil)

// NoopMailer discards all messages. Used when mail delivery is disabled.
type NoopMailer struct{}

func (NoopMailer) Send(context.Context, Message) error { return nil }

var _ Mailer = NoopMailer{}

// RecordingMailer captures sent messages for tests
type RecordingMailer struct {
	mu       sync.Mutex
	messages []Message
	failWith error
}

// NewRecordingMailer creates an empty recording mailer
func NewRecordingMailer() *RecordingMailer {
	return &RecordingMailer{}
}

// FailWith makes subsequent Send calls return err
func (m *RecordingMailer) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWith = err
}

// Send records the message, or fails if a failure was injected
func (m *RecordingMailer) Send(_ context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	m.messages = append(m.messages, msg)
	return nil
}

// Messages returns a copy of the recorded messages
func (m *RecordingMailer) Messages() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Message, len(m.messages))
	copy(out, m.messages)
	return out
}

var _ Mailer = (*RecordingMailer)(nil)
