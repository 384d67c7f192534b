package mail

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/georgemunganga/printpress-backend/internal/metrics"
	"golang.org/x/time/rate"
)

// Message is a fully formed outbound email.
type Message struct {
	To      []string
	Subject string
	HTML    string
}

// Mailer delivers outbound email.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPConfig configures the SMTP mailer.
type SMTPConfig struct {
	Host      string
	Port      string
	Username  string
	Password  string
	From      string
	PerMinute int
}

type smtpMailer struct {
	cfg     SMTPConfig
	limiter *rate.Limiter
	logger  *slog.Logger
	send    func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPMailer returns a mailer that sends through an SMTP relay, throttled
// to cfg.PerMinute messages per minute.
func NewSMTPMailer(cfg SMTPConfig, logger *slog.Logger) Mailer {
	perMinute := cfg.PerMinute
	if perMinute <= 0 {
		perMinute = 30
	}
	return &smtpMailer{
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1),
		logger:  logger,
		send:    smtp.SendMail,
	}
}

func (m *smtpMailer) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return fmt.Errorf("mail: no recipients")
	}
	if err := m.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("mail: rate limit: %w", err)
	}

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	addr := net.JoinHostPort(m.cfg.Host, m.cfg.Port)
	if err := m.send(addr, auth, envelopeAddress(m.cfg.From), msg.To, encode(m.cfg.From, msg)); err != nil {
		metrics.EmailsSent.WithLabelValues("failed").Inc()
		return fmt.Errorf("mail: send %q: %w", msg.Subject, err)
	}
	metrics.EmailsSent.WithLabelValues("sent").Inc()
	m.logger.Info("email sent", "subject", msg.Subject, "recipients", len(msg.To))
	return nil
}

type logMailer struct{ logger *slog.Logger }

// NewLogMailer returns a mailer that only logs. Used when no SMTP host is configured.
func NewLogMailer(logger *slog.Logger) Mailer { return &logMailer{logger: logger} }

func (m *logMailer) Send(_ context.Context, msg Message) error {
	m.logger.Info("email skipped (smtp not configured)", "subject", msg.Subject, "to", strings.Join(msg.To, ","))
	metrics.EmailsSent.WithLabelValues("skipped").Inc()
	return nil
}

func encode(from string, msg Message) []byte {
	var b strings.Builder
	b.WriteString("From: " + from + "\r\n")
	b.WriteString("To: " + strings.Join(msg.To, ", ") + "\r\n")
	b.WriteString("Subject: " + msg.Subject + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("Date: " + time.Now().UTC().Format(time.RFC1123Z) + "\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.HTML)
	return []byte(b.String())
}

// envelopeAddress extracts "a@b" from "Name <a@b>".
func envelopeAddress(from string) string {
	if i := strings.LastIndex(from, "<"); i >= 0 {
		if j := strings.LastIndex(from, ">"); j > i {
			return from[i+1 : j]
		}
	}
	return strings.TrimSpace(from)
}
