// Package email delivers notification mail over SMTP.
package email

import (
	"context"
	"net"
	"net/smtp"

	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"

	"microlend/internal/config"
)

const signature = "\n\nBest regards,\nMicrolend"

type sendFunc func(e *email.Email, addr string, auth smtp.Auth) error

// Mailer implements the notification usecase's Mailer.
type Mailer struct {
	addr string
	from string
	auth smtp.Auth
	log  logrus.FieldLogger
	send sendFunc
}

func NewMailer(cfg *config.Config, log logrus.FieldLogger) *Mailer {
	var auth smtp.Auth
	if cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", cfg.SMTPUser, cfg.SMTPPass, cfg.SMTPHost)
	}
	return &Mailer{
		addr: net.JoinHostPort(cfg.SMTPHost, cfg.SMTPPort),
		from: cfg.MailFrom,
		auth: auth,
		log:  log,
		send: func(e *email.Email, addr string, auth smtp.Auth) error { return e.Send(addr, auth) },
	}
}

func (m *Mailer) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e := email.NewEmail()
	e.From = m.from
	e.To = []string{to}
	e.Subject = subject
	e.Text = []byte(body + signature)

	if err := m.send(e, m.addr, m.auth); err != nil {
		return err
	}
	m.log.WithField("subject", subject).Debug("email sent")
	return nil
}
