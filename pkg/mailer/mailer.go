// Package mailer sends transactional email over SMTP.
package mailer

import (
	"context"
	"errors"
	"fmt"

	"github.com/wneessen/go-mail"

	"github.com/dvfens/ags/config"
	"github.com/dvfens/ags/pkg/logger"
)

var ErrDisabled = errors.New("mailer: SMTP host not configured")

type Message struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

type Mailer struct {
	cfg config.MailConfig
}

func New(cfg config.MailConfig) *Mailer {
	return &Mailer{cfg: cfg}
}

func (m *Mailer) Enabled() bool {
	return m != nil && m.cfg.Host != ""
}

func (m *Mailer) build(msg Message) (*mail.Msg, error) {
	out := mail.NewMsg()
	if err := out.From(m.cfg.From); err != nil {
		return nil, fmt.Errorf("invalid from address: %w", err)
	}
	if err := out.To(msg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}
	out.Subject(msg.Subject)
	if msg.Text != "" {
		out.SetBodyString(mail.TypeTextPlain, msg.Text)
		if msg.HTML != "" {
			out.AddAlternativeString(mail.TypeTextHTML, msg.HTML)
		}
	} else {
		out.SetBodyString(mail.TypeTextHTML, msg.HTML)
	}
	return out, nil
}

// Send delivers one message. It returns ErrDisabled when no SMTP host is configured.
func (m *Mailer) Send(ctx context.Context, msg Message) error {
	if !m.Enabled() {
		return ErrDisabled
	}

	out, err := m.build(msg)
	if err != nil {
		return err
	}

	opts := []mail.Option{
		mail.WithPort(m.cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if m.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthLogin),
			mail.WithUsername(m.cfg.Username),
			mail.WithPassword(m.cfg.Password),
		)
	}

	client, err := mail.NewClient(m.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, out); err != nil {
		logger.Error("Failed to send email", err, map[string]interface{}{
			"subject": msg.Subject,
		})
		return fmt.Errorf("send email: %w", err)
	}

	logger.Info("Email sent", map[string]interface{}{
		"subject": msg.Subject,
	})
	return nil
}
