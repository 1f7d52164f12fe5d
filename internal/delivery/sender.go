package delivery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/wneessen/go-mail"

	"mashup/internal/config"
	"mashup/internal/logging"
	"mashup/internal/services"
	"mashup/internal/textutil"
)

// ErrDisabled is returned by Send when SMTP delivery is turned off.
var ErrDisabled = errors.New("email delivery disabled")

// Message is one outgoing email.
type Message struct {
	To             string
	Subject        string
	Body           string
	AttachmentPath string
}

// Compose builds the standard mashup email for query.
func Compose(to, query string, durationMs int64, attachmentPath string) Message {
	singer := textutil.Title(query)
	return Message{
		To:      to,
		Subject: fmt.Sprintf("Your %s YouTube Mashup", singer),
		Body: fmt.Sprintf("Please find attached your custom YouTube mashup of %s songs. Duration: %d seconds.",
			singer, durationMs/1000),
		AttachmentPath: attachmentPath,
	}
}

type transport interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// Sender delivers messages through an SMTP server using STARTTLS.
type Sender struct {
	cfg    config.SMTP
	logger *slog.Logger
	dial   func() (transport, error)
}

// NewSender constructs a Sender from SMTP settings.
func NewSender(cfg config.SMTP, logger *slog.Logger) *Sender {
	s := &Sender{cfg: cfg, logger: logging.NewComponentLogger(logger, "delivery")}
	s.dial = s.newClient
	return s
}

func (s *Sender) newClient() (transport, error) {
	client, err := mail.NewClient(s.cfg.Host,
		mail.WithPort(s.cfg.Port),
		mail.WithTLSPolicy(mail.TLSMandatory),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(s.cfg.Username),
		mail.WithPassword(s.cfg.Password),
		mail.WithTimeout(time.Duration(s.cfg.TimeoutSeconds)*time.Second),
	)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// Send delivers msg.
func (s *Sender) Send(ctx context.Context, msg Message) error {
	if !s.cfg.Enabled {
		return ErrDisabled
	}
	ctx = services.WithStage(ctx, "deliver")
	logger := logging.WithContext(ctx, s.logger)

	built, err := s.build(msg)
	if err != nil {
		return services.Wrap(services.ErrValidation, "deliver", "compose", "", err)
	}
	client, err := s.dial()
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "deliver", "smtp client", "", err)
	}
	if err := client.DialAndSendWithContext(ctx, built); err != nil {
		return services.Wrap(services.ErrTransient, "deliver", "send", fmt.Sprintf("via %s:%d", s.cfg.Host, s.cfg.Port), err)
	}
	logger.Info("email delivered",
		logging.String("recipient", msg.To),
		logging.String("attachment", filepath.Base(msg.AttachmentPath)),
	)
	return nil
}

func (s *Sender) build(msg Message) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(s.cfg.Sender); err != nil {
		return nil, fmt.Errorf("sender: %w", err)
	}
	if err := m.To(strings.TrimSpace(msg.To)); err != nil {
		return nil, fmt.Errorf("recipient: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Body)
	if msg.AttachmentPath != "" {
		m.AttachFile(msg.AttachmentPath, mail.WithFileContentType(mail.ContentType("application/zip")))
	}
	return m, nil
}
