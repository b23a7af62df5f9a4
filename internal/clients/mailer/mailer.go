// Package mailer delivers digest email over SMTP.
package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/echo-journal/echo/internal/common"
	"github.com/echo-journal/echo/internal/interfaces"
)

// Compile-time interface checks
var (
	_ interfaces.Mailer = (*SMTPMailer)(nil)
	_ interfaces.Mailer = (*LogMailer)(nil)
)

// SMTPMailer sends mail through a plain SMTP endpoint.
type SMTPMailer struct {
	addr   string
	from   string
	auth   smtp.Auth
	logger *common.Logger
}

// NewSMTPMailer creates a mailer for the given SMTP address ("host:port").
// user and pass may be empty for unauthenticated relays.
func NewSMTPMailer(addr, from, user, pass string, logger *common.Logger) *SMTPMailer {
	var auth smtp.Auth
	if user != "" {
		host := addr
		if idx := strings.IndexByte(addr, ':'); idx >= 0 {
			host = addr[:idx]
		}
		auth = smtp.PlainAuth("", user, pass, host)
	}
	return &SMTPMailer{
		addr:   addr,
		from:   from,
		auth:   auth,
		logger: logger,
	}
}

func (m *SMTPMailer) Send(_ context.Context, to, subject, body string) error {
	msg := strings.Join([]string{
		"From: " + m.from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=utf-8",
		"",
		body,
	}, "\r\n")

	if err := smtp.SendMail(m.addr, m.auth, m.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("failed to send mail: %w", err)
	}
	m.logger.Info().Str("to", to).Str("subject", subject).Msg("Mail sent")
	return nil
}

// LogMailer logs mail instead of sending it. Used when no SMTP endpoint is
// configured, so digests work in development.
type LogMailer struct {
	logger *common.Logger
}

func NewLogMailer(logger *common.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(_ context.Context, to, subject, body string) error {
	m.logger.Info().
		Str("to", to).
		Str("subject", subject).
		Int("body_bytes", len(body)).
		Msg("Mail delivery skipped (no SMTP configured)")
	return nil
}
