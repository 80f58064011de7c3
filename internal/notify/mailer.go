package notify

import (
	"context"

	"github.com/exidealers/marketplace/config"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Mail is one outgoing message
type Mail struct {
	To      string
	Subject string
	HTML    string
	Text    string
}

// Mailer delivers Mail
type Mailer interface {
	Send(ctx context.Context, m Mail) error
}

// NewMailer returns an SMTP mailer when mail is enabled, otherwise one that only logs
func NewMailer(cfg config.MailConfig) Mailer {
	if !cfg.Enabled || cfg.Host == "" {
		return LogMailer{}
	}
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

func (s *SMTPMailer) Send(ctx context.Context, m Mail) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", s.from)
	msg.SetHeader("To", m.To)
	msg.SetHeader("Subject", m.Subject)
	if m.Text != "" {
		msg.SetBody("text/plain", m.Text)
		if m.HTML != "" {
			msg.AddAlternative("text/html", m.HTML)
		}
	} else {
		msg.SetBody("text/html", m.HTML)
	}
	return errors.Wrapf(s.dialer.DialAndSend(msg), "send mail to %s", m.To)
}

// LogMailer writes mails to the log instead of sending them
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, m Mail) error {
	zap.L().Info("mail delivery disabled",
		zap.String("namespace", "notify"),
		zap.String("to", m.To),
		zap.String("subject", m.Subject))
	return nil
}
