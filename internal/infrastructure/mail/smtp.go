package mail

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	gomail "gopkg.in/gomail.v2"
)

const recoverySubject = "Your password recovery code"

// Config holds the SMTP relay settings.
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

// SMTPMailer sends account e-mails through an SMTP relay.
type SMTPMailer struct {
	from   string
	dialer *gomail.Dialer
}

func NewSMTPMailer(cfg Config) *SMTPMailer {
	d := gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	d.SSL = cfg.Port == 465
	return &SMTPMailer{from: cfg.From, dialer: d}
}

// SendRecoveryCode dials the relay for every message; recovery mail is rare
// enough that a pooled connection is not worth keeping open.
func (m *SMTPMailer) SendRecoveryCode(ctx context.Context, to, name, code string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.dialer.DialAndSend(buildRecoveryMessage(m.from, to, name, code)); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func buildRecoveryMessage(from, to, name, code string) *gomail.Message {
	greeting := "Hello"
	if name != "" {
		greeting = "Hello " + name
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", recoverySubject)
	msg.SetBody("text/plain", fmt.Sprintf(
		"%s,\n\nYour password recovery code is %s. It expires in 15 minutes.\n\nIf you did not ask for it, ignore this message.\n",
		greeting, code))
	msg.AddAlternative("text/html", fmt.Sprintf(
		"<p>%s,</p><p>Your password recovery code is <strong>%s</strong>. It expires in 15 minutes.</p><p>If you did not ask for it, ignore this message.</p>",
		greeting, code))
	return msg
}

// LogMailer logs instead of sending when SMTP is not configured. The code is
// only logged at debug level.
type LogMailer struct {
	log zerolog.Logger
}

func NewLogMailer(log zerolog.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) SendRecoveryCode(_ context.Context, to, _ string, code string) error {
	m.log.Info().Str("to", to).Msg("recovery code mail skipped, SMTP not configured")
	m.log.Debug().Str("to", to).Str("code", code).Msg("recovery code")
	return nil
}
