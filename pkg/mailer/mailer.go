package mailer

import (
	"fmt"
	"strings"

	gomail "gopkg.in/gomail.v2"

	"github.com/armeriaops/armimport-backend/pkg/config"
)

// Message is one outbound email. Attachments reference files on disk.
type Message struct {
	To          string
	Subject     string
	HTMLBody    string
	Attachments []string
}

// Sender delivers email over SMTP. Services treat delivery as best effort and
// must not fail their transaction when Send errors.
type Sender interface {
	Send(msg Message) error
}

// SMTPSender is the gomail-backed Sender used outside tests.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPSender returns a Sender, or nil when SMTP is not configured so
// callers can skip delivery.
func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	if !cfg.Enabled() {
		return nil
	}
	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.DefaultFrom,
	}
}

// Send delivers the message, dialing a fresh connection per call.
func (s *SMTPSender) Send(msg Message) error {
	if s == nil {
		return fmt.Errorf("smtp sender not configured")
	}
	if strings.TrimSpace(msg.To) == "" {
		return fmt.Errorf("recipient is required")
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTMLBody)
	for _, path := range msg.Attachments {
		m.Attach(path)
	}

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("sending email to %s: %w", msg.To, err)
	}
	return nil
}
