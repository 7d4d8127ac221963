package mail

import (
	"fmt"
	"log"
	"net/smtp"

	"github.com/notelyhq/notely/internal/config"
)

// Mailer delivers transactional mail (activation and password-reset links).
type Mailer interface {
	Send(to, subject, htmlBody string) error
}

// SMTPMailer sends through a plain SMTP relay.
type SMTPMailer struct {
	addr string
	from string
}

func NewSMTPMailer(cfg *config.Config) *SMTPMailer {
	return &SMTPMailer{
		addr: cfg.SMTPHost + ":" + cfg.SMTPPort,
		from: cfg.SMTPFrom,
	}
}

func (m *SMTPMailer) Send(to, subject, htmlBody string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=\"UTF-8\"\r\n\r\n%s\r\n",
		m.from, to, subject, htmlBody)

	return smtp.SendMail(m.addr, nil, m.from, []string{to}, []byte(msg))
}

// LogMailer is the dev fallback when no SMTP host is configured.
type LogMailer struct{}

func (LogMailer) Send(to, subject, htmlBody string) error {
	log.Printf("mail (not sent, no SMTP configured): to=%s subject=%q", to, subject)
	return nil
}
