// Package mailer sends transactional email (password-reset links and
// organization notifications) over SMTP.
package mailer

import (
    "context"
    "fmt"
    "net/smtp"
    "strings"
)

// Mailer sends a plain-text message to a single recipient.  Implementations
// must be safe for concurrent use.
type Mailer interface {
    Send(ctx context.Context, to, subject, body string) error
}

// SMTPMailer delivers mail through a configured SMTP relay.  When no host
// is configured, Send fails; callers decide whether that failure blocks
// (reset request) or is merely logged (confirmation, notifications).
type SMTPMailer struct {
    host string
    addr string // host:port
    auth smtp.Auth
    from string
}

// NewSMTP builds an SMTPMailer.  Auth is used only when a username is set.
func NewSMTP(host, port, username, password, from string) *SMTPMailer {
    m := &SMTPMailer{host: host, addr: host + ":" + port, from: from}
    if username != "" {
        m.auth = smtp.PlainAuth("", username, password, host)
    }
    return m
}

func (m *SMTPMailer) Send(_ context.Context, to, subject, body string) error {
    if m.host == "" {
        return fmt.Errorf("smtp: no host configured")
    }
    var msg strings.Builder
    fmt.Fprintf(&msg, "From: %s\r\n", m.from)
    fmt.Fprintf(&msg, "To: %s\r\n", to)
    fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
    msg.WriteString("MIME-Version: 1.0\r\n")
    msg.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
    msg.WriteString("\r\n")
    msg.WriteString(body)

    if err := smtp.SendMail(m.addr, m.auth, m.from, []string{to}, []byte(msg.String())); err != nil {
        return fmt.Errorf("smtp: send to %s: %w", to, err)
    }
    return nil
}
