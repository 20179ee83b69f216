package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/CosmoTheDev/qgnotify/internal/config"
	"github.com/CosmoTheDev/qgnotify/models"
)

// EmailChannel mails the plain-text rendering of a payload over SMTP.
type EmailChannel struct {
	cfg config.EmailConfig
	now func() time.Time
}

// NewEmail creates an EmailChannel from cfg.
func NewEmail(cfg config.EmailConfig) *EmailChannel { return &EmailChannel{cfg: cfg, now: time.Now} }

func (e *EmailChannel) Name() string { return "email" }
func (e *EmailChannel) IsConfigured() bool {
	return e.cfg.SMTPHost != "" && e.cfg.From != "" && len(e.recipients()) > 0
}

func (e *EmailChannel) Send(ctx context.Context, p *models.Payload) error {
	msg := e.compose(p)
	if err := e.deliver(ctx, msg); err != nil {
		return fmt.Errorf("email: %w", err)
	}
	return nil
}

// recipients splits the comma-separated To list.
func (e *EmailChannel) recipients() []string {
	var out []string
	for _, r := range strings.Split(e.cfg.To, ",") {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}

// compose renders the RFC 5322 message with CRLF line endings.
func (e *EmailChannel) compose(p *models.Payload) []byte {
	headers := []string{
		"Subject: " + subject(p.Text),
		"From: " + e.cfg.From,
		"To: " + strings.Join(e.recipients(), ", "),
		"Date: " + e.now().Format(time.RFC1123Z),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=utf-8",
	}
	body := strings.ReplaceAll(PlainText(p), "\n", "\r\n")
	return []byte(strings.Join(headers, "\r\n") + "\r\n\r\n" + body + "\r\n")
}

func (e *EmailChannel) deliver(ctx context.Context, msg []byte) error {
	port := e.cfg.SMTPPort
	if port == 0 {
		port = 587
	}
	addr := net.JoinHostPort(e.cfg.SMTPHost, strconv.Itoa(port))

	var auth smtp.Auth
	if e.cfg.Username != "" {
		auth = smtp.PlainAuth("", e.cfg.Username, e.cfg.Password, e.cfg.SMTPHost)
	}
	if !e.cfg.UseTLS {
		// SendMail upgrades with STARTTLS when the server offers it.
		return smtp.SendMail(addr, auth, e.cfg.From, e.recipients(), msg)
	}

	dialer := &tls.Dialer{
		NetDialer: &net.Dialer{Timeout: sendTimeout},
		Config:    &tls.Config{ServerName: e.cfg.SMTPHost, MinVersion: tls.VersionTLS12},
	}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("TLS dial: %w", err)
	}
	client, err := smtp.NewClient(conn, e.cfg.SMTPHost)
	if err != nil {
		conn.Close()
		return err
	}
	defer client.Close()
	if auth != nil {
		if err := client.Auth(auth); err != nil {
			return err
		}
	}
	if err := client.Mail(e.cfg.From); err != nil {
		return err
	}
	for _, rcpt := range e.recipients() {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}
	wc, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := wc.Write(msg); err != nil {
		return err
	}
	if err := wc.Close(); err != nil {
		return err
	}
	return client.Quit()
}

// subject strips chat emoji codes (":alert:") from the summary line.
func subject(text string) string {
	fields := strings.Fields(text)
	out := fields[:0]
	for _, f := range fields {
		if len(f) > 2 && strings.HasPrefix(f, ":") && strings.HasSuffix(f, ":") {
			continue
		}
		out = append(out, f)
	}
	return strings.Join(out, " ")
}
