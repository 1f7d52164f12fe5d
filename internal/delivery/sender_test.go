package delivery

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wneessen/go-mail"

	"mashup/internal/config"
	"mashup/internal/logging"
	"mashup/internal/services"
)

type recordingTransport struct {
	sent []*mail.Msg
	err  error
}

func (r *recordingTransport) DialAndSendWithContext(_ context.Context, messages ...*mail.Msg) error {
	r.sent = append(r.sent, messages...)
	return r.err
}

func testSMTP() config.SMTP {
	return config.SMTP{
		Enabled:        true,
		Host:           "smtp.example.com",
		Port:           587,
		Sender:         "bot@example.com",
		Username:       "bot@example.com",
		Password:       "secret",
		TimeoutSeconds: 5,
	}
}

func TestCompose(t *testing.T) {
	msg := Compose("fan@example.com", "artist  x", 300000, "/tmp/a.zip")
	if msg.Subject != "Your Artist X YouTube Mashup" {
		t.Fatalf("unexpected subject %q", msg.Subject)
	}
	want := "Please find attached your custom YouTube mashup of Artist X songs. Duration: 300 seconds."
	if msg.Body != want {
		t.Fatalf("unexpected body %q", msg.Body)
	}
}

func TestSendBuildsMessageWithAttachment(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "artist_mashup.zip")
	if err := os.WriteFile(archive, []byte("PK"), 0o644); err != nil {
		t.Fatal(err)
	}
	rec := &recordingTransport{}
	s := NewSender(testSMTP(), logging.NewNop())
	s.dial = func() (transport, error) { return rec, nil }

	if err := s.Send(context.Background(), Compose("fan@example.com", "artist", 60000, archive)); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if len(rec.sent) != 1 {
		t.Fatalf("expected one message, got %d", len(rec.sent))
	}
	m := rec.sent[0]
	to := m.GetToString()
	if len(to) != 1 || !strings.Contains(to[0], "fan@example.com") {
		t.Fatalf("unexpected recipients %v", to)
	}
	if subject := m.GetGenHeader(mail.HeaderSubject); len(subject) != 1 || subject[0] != "Your Artist YouTube Mashup" {
		t.Fatalf("unexpected subject %v", subject)
	}
	if attachments := m.GetAttachments(); len(attachments) != 1 || attachments[0].Name != "artist_mashup.zip" {
		t.Fatalf("unexpected attachments %v", attachments)
	}
}

func TestSendDisabled(t *testing.T) {
	cfg := testSMTP()
	cfg.Enabled = false
	s := NewSender(cfg, nil)
	if err := s.Send(context.Background(), Message{To: "fan@example.com"}); !errors.Is(err, ErrDisabled) {
		t.Fatalf("expected ErrDisabled, got %v", err)
	}
}

func TestSendInvalidRecipient(t *testing.T) {
	s := NewSender(testSMTP(), nil)
	s.dial = func() (transport, error) { return &recordingTransport{}, nil }
	err := s.Send(context.Background(), Message{To: "not an address"})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSendTransportFailure(t *testing.T) {
	rec := &recordingTransport{err: errors.New("535 authentication failed")}
	s := NewSender(testSMTP(), nil)
	s.dial = func() (transport, error) { return rec, nil }
	err := s.Send(context.Background(), Message{To: "fan@example.com", Subject: "s", Body: "b"})
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient error, got %v", err)
	}
}
