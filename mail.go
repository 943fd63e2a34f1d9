package auth

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// SMTPMailer delivers mail through a plain SMTP relay. It exists so the
// gateway can run against a stock relay without extra services; anything
// richer belongs behind the Mailer interface.
type SMTPMailer struct {
	addr string
	from string
	auth smtp.Auth
}

// NewSMTPMailer creates a mailer for the relay at addr (host:port) sending
// from the given address.
func NewSMTPMailer(addr, from string) *SMTPMailer {
	return &SMTPMailer{addr: addr, from: from}
}

// WithAuth sets SMTP authentication for relays that require it.
func (m *SMTPMailer) WithAuth(auth smtp.Auth) *SMTPMailer {
	m.auth = auth
	return m
}

// SendMail delivers one HTML mail synchronously. The context is honored
// only up to the point the SMTP dialogue starts; net/smtp offers no
// cancellation mid-session.
func (m *SMTPMailer) SendMail(ctx context.Context, msg MailMessage) error {
	if err := ctx.Err(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "mail send aborted")
	}

	payload := m.encode(msg)
	if err := smtp.SendMail(m.addr, m.auth, m.from, []string{msg.To}, payload); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "smtp delivery failed")
	}

	return nil
}

func (m *SMTPMailer) encode(msg MailMessage) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", msg.SenderName, m.from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.HTMLBody)
	return []byte(b.String())
}
