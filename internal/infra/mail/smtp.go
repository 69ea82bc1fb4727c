package mail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
)

// SMTPMailer sends HTML mail through a plain SMTP relay with optional
// AUTH PLAIN credentials.
type SMTPMailer struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	Logger   *slog.Logger
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	if m.Host == "" || m.From == "" {
		return errors.New("mail: smtp host and sender are required")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", m.From)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(htmlBody)

	var auth smtp.Auth
	if m.Username != "" {
		auth = smtp.PlainAuth("", m.Username, m.Password, m.Host)
	}
	addr := m.Host + ":" + m.port()
	if err := smtp.SendMail(addr, auth, m.From, []string{to}, []byte(msg.String())); err != nil {
		if m.Logger != nil {
			m.Logger.Error("mail delivery failed", "to", to, "error", err)
		}
		return fmt.Errorf("mail: send: %w", err)
	}
	return nil
}

func (m *SMTPMailer) port() string {
	if m.Port == "" {
		return "587"
	}
	return m.Port
}

// NoopMailer drops mail and logs it. Used when SMTP is not configured,
// so local runs can still exercise the OTP flow.
type NoopMailer struct {
	Logger *slog.Logger
}

func (m NoopMailer) Send(_ context.Context, to, subject, _ string) error {
	if m.Logger != nil {
		m.Logger.Warn("mail not configured, dropping message", "to", to, "subject", subject)
	}
	return nil
}
