package email

import (
	"fmt"
	"log"
	"net/smtp"
)

// Sender delivers transactional mail.
type Sender interface {
	Send(to, subject, body string) error
}

// SMTPConfig holds the mail relay settings.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// SMTPSender sends mail through a plain-auth SMTP relay.
type SMTPSender struct {
	cfg SMTPConfig
}

// NewSMTPSender creates a sender for the given relay config.
func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

// Send delivers a single plain-text message.
func (s *SMTPSender) Send(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		s.cfg.From, to, subject, body)

	addr := s.cfg.Host + ":" + s.cfg.Port
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	return smtp.SendMail(addr, auth, s.cfg.From, []string{to}, []byte(msg))
}

// LogSender writes mail to the log instead of delivering it. Used when no
// SMTP relay is configured, so local development still surfaces the
// verification links.
type LogSender struct{}

// Send logs the message.
func (LogSender) Send(to, subject, body string) error {
	log.Printf("Email to %s: %s\n%s", to, subject, body)
	return nil
}

// VerificationBody builds the verification mail body for a token link.
func VerificationBody(username, verifyURL string) string {
	return fmt.Sprintf("Hi %s,\n\nPlease confirm your email address by opening the link below:\n\n%s\n\nThe link expires in 30 minutes. If you did not register, ignore this message.\n", username, verifyURL)
}
