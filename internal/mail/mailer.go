package mail

import (
	"context"
	"fmt"
	"log/slog"

	gomail "github.com/wneessen/go-mail"

	"civicgrid.app/core/core/config"
)

// Sender delivers a single email. Invoked only by the job queue worker,
// never directly by request handlers or sweeps.
type Sender interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

type smtpSender struct {
	client *gomail.Client
	from   string
}

// NewSMTPSender builds a Sender over the configured SMTP relay.
func NewSMTPSender(cfg config.MailConfig) (Sender, error) {
	opts := []gomail.Option{
		gomail.WithPort(cfg.SMTPPort),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(cfg.Username),
		gomail.WithPassword(cfg.Password),
	}

	client, err := gomail.NewClient(cfg.SMTPHost, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating smtp client: %w", err)
	}

	return &smtpSender{client: client, from: cfg.From}, nil
}

func (s *smtpSender) Send(ctx context.Context, to, subject, htmlBody string) error {
	msg := gomail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return fmt.Errorf("setting from address: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("setting recipient: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlBody)

	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("sending mail to %s: %w", to, err)
	}
	return nil
}

// LogSender logs instead of delivering. Default in development where no
// SMTP relay is configured.
type LogSender struct{}

func (LogSender) Send(ctx context.Context, to, subject, _ string) error {
	slog.InfoContext(ctx, "mail delivery skipped (no SMTP configured)",
		"to", to,
		"subject", subject)
	return nil
}
