package dispatch

import (
	"context"
	"fmt"
	"log"
	"net/smtp"
)

// MailSender delivers a plain email. Failures are the caller's to swallow.
type MailSender interface {
	SendMail(ctx context.Context, to, subject, body string) error
}

// SMTPConfig holds the outbound mail account.
type SMTPConfig struct {
	Host     string
	Port     string
	From     string
	Password string
}

// SMTPMailSender sends through a plain SMTP account. With no credentials
// configured it logs the mail instead of sending, which keeps local setups
// working without an account.
type SMTPMailSender struct {
	cfg SMTPConfig
}

func NewSMTPMailSender(cfg SMTPConfig) *SMTPMailSender {
	return &SMTPMailSender{cfg: cfg}
}

func (s *SMTPMailSender) SendMail(ctx context.Context, to, subject, body string) error {
	if s.cfg.From == "" || s.cfg.Password == "" {
		log.Printf("SMTPMailSender: credentials not set, mocking mail to %s (%s)", to, subject)
		return nil
	}

	address := s.cfg.Host + ":" + s.cfg.Port
	message := []byte(fmt.Sprintf("Subject: %s\r\n\r\n%s\r\n", subject, body))
	auth := smtp.PlainAuth("", s.cfg.From, s.cfg.Password, s.cfg.Host)

	if err := smtp.SendMail(address, auth, s.cfg.From, []string{to}, message); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
