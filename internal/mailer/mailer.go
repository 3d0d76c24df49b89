// Package mailer sends account emails over SMTP. When no SMTP host is
// configured the service degrades to a no-op so registration never blocks
// on mail delivery.
package mailer

import (
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Mailer delivers account emails. Failures are the caller's to log; none of
// the flows treat delivery as mandatory.
type Mailer interface {
	SendWelcome(to, username string) error
	SendStatusNotice(to, username, status string) error
}

// SMTPMailer sends mail through a configured SMTP relay.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPMailer builds a mailer for the given relay.
func NewSMTPMailer(host string, port int, username, password, from string) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

func (m *SMTPMailer) send(to, subject, body string) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", fmt.Sprintf("[ASR Benchmark Hub] %s", subject))
	msg.SetBody("text/html", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	return nil
}

// SendWelcome greets a newly registered user.
func (m *SMTPMailer) SendWelcome(to, username string) error {
	body := fmt.Sprintf(`<p>Hi %s,</p>
<p>Your account on ASR Benchmark Hub is ready. You can now browse benchmark
dashboards, and once an editor grants you access, upload your own results.</p>
<p>Happy benchmarking!</p>`, username)
	return m.send(to, "Welcome aboard", body)
}

// SendStatusNotice informs a user their account status changed.
func (m *SMTPMailer) SendStatusNotice(to, username, status string) error {
	body := fmt.Sprintf(`<p>Hi %s,</p>
<p>An administrator changed your account status to <b>%s</b>.</p>
<p>If you believe this is a mistake, reply to this email.</p>`, username, status)
	return m.send(to, "Account status changed", body)
}

// NopMailer drops every message. Used when SMTP is not configured.
type NopMailer struct {
	log *zap.Logger
}

// NewNopMailer builds the no-op mailer.
func NewNopMailer(log *zap.Logger) *NopMailer {
	return &NopMailer{log: log}
}

// SendWelcome logs and discards the message.
func (m *NopMailer) SendWelcome(to, _ string) error {
	m.log.Debug("smtp not configured, dropping welcome email", zap.String("to", to))
	return nil
}

// SendStatusNotice logs and discards the message.
func (m *NopMailer) SendStatusNotice(to, _, status string) error {
	m.log.Debug("smtp not configured, dropping status notice", zap.String("to", to), zap.String("status", status))
	return nil
}
