package mail

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/smtp"
	"strings"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEnvelopeAddress(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"PrintPress <no-reply@printpress.local>": "no-reply@printpress.local",
		"ops@printpress.local":                   "ops@printpress.local",
		"  ops@printpress.local ":                "ops@printpress.local",
	}
	for in, want := range tests {
		if got := envelopeAddress(in); got != want {
			t.Errorf("envelopeAddress(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSMTPMailerSend(t *testing.T) {
	t.Parallel()

	m := NewSMTPMailer(SMTPConfig{
		Host: "smtp.example.com", Port: "587", From: "PrintPress <no-reply@printpress.local>", PerMinute: 600,
	}, testLogger()).(*smtpMailer)

	var gotAddr, gotFrom string
	var gotBody []byte
	m.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotBody = addr, from, msg
		return nil
	}

	err := m.Send(context.Background(), Message{
		To: []string{"admin@printpress.com"}, Subject: "Low Stock Alert", HTML: "<p>A4 paper</p>",
	})
	if err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if gotAddr != "smtp.example.com:587" {
		t.Errorf("addr = %q, want %q", gotAddr, "smtp.example.com:587")
	}
	if gotFrom != "no-reply@printpress.local" {
		t.Errorf("from = %q, want %q", gotFrom, "no-reply@printpress.local")
	}
	body := string(gotBody)
	if !strings.Contains(body, "Subject: Low Stock Alert\r\n") || !strings.HasSuffix(body, "<p>A4 paper</p>") {
		t.Errorf("unexpected message body:\n%s", body)
	}
}

func TestSMTPMailerErrors(t *testing.T) {
	t.Parallel()

	m := NewSMTPMailer(SMTPConfig{Host: "smtp.example.com", Port: "25", PerMinute: 600}, testLogger()).(*smtpMailer)
	m.send = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("connection refused") }

	if err := m.Send(context.Background(), Message{Subject: "x"}); err == nil {
		t.Error("Send() with no recipients error = nil, want error")
	}
	if err := m.Send(context.Background(), Message{To: []string{"a@b.c"}, Subject: "x"}); err == nil {
		t.Error("Send() with failing relay error = nil, want error")
	}
}
