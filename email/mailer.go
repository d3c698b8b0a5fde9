// Package email sends the transactional account emails (activation and
// password reset) over SMTP.
package email

import (
	"bytes"
	"fmt"
	"text/template"
	"time"

	mail "github.com/xhit/go-simple-mail/v2"
)

// Sender delivers a rendered message
type Sender interface {
	Send(to, subject, body string) error
}

// Mailer renders and sends account emails through an SMTP server
type Mailer struct {
	Host       string
	Port       int
	Username   string
	Password   string
	Encryption string
	From       string
	FromName   string
}

const activationTemplate = `Hello,

Thank you for registering at Cinema. Use the token below to activate your
account. The token expires in {{.TTL}}.

    {{.Token}}

If you did not register, ignore this message.
`

const passwordResetTemplate = `Hello,

A password reset was requested for your Cinema account. Use the token below
to set a new password. The token expires in {{.TTL}}.

    {{.Token}}

If you did not request a reset, ignore this message.
`

type tokenEmail struct {
	Token string
	TTL   string
}

// SendActivation mails an activation token to a new account
func (m *Mailer) SendActivation(to, token string, ttl time.Duration) error {
	body, err := renderTokenEmail(activationTemplate, token, ttl)
	if err != nil {
		return err
	}
	return m.Send(to, "Activate your Cinema account", body)
}

// SendPasswordReset mails a password reset token
func (m *Mailer) SendPasswordReset(to, token string, ttl time.Duration) error {
	body, err := renderTokenEmail(passwordResetTemplate, token, ttl)
	if err != nil {
		return err
	}
	return m.Send(to, "Reset your Cinema password", body)
}

func renderTokenEmail(tmpl, token string, ttl time.Duration) (string, error) {
	t, err := template.New("email").Parse(tmpl)
	if err != nil {
		return "", err
	}

	var out bytes.Buffer
	if err := t.Execute(&out, tokenEmail{Token: token, TTL: ttl.String()}); err != nil {
		return "", err
	}
	return out.String(), nil
}

// Send delivers a plain text message over SMTP
func (m *Mailer) Send(to, subject, body string) error {
	server := mail.NewSMTPClient()
	server.Host = m.Host
	server.Port = m.Port
	server.Username = m.Username
	server.Password = m.Password
	server.KeepAlive = false
	server.ConnectTimeout = 10 * time.Second
	server.SendTimeout = 10 * time.Second

	switch m.Encryption {
	case "tls":
		server.Encryption = mail.EncryptionSTARTTLS
	case "ssl":
		server.Encryption = mail.EncryptionSSLTLS
	default:
		server.Encryption = mail.EncryptionNone
	}

	client, err := server.Connect()
	if err != nil {
		return fmt.Errorf("connecting to smtp server: %w", err)
	}

	msg := mail.NewMSG()
	msg.SetFrom(fmt.Sprintf("%s <%s>", m.FromName, m.From)).
		AddTo(to).
		SetSubject(subject)
	msg.SetBody(mail.TextPlain, body)

	if msg.Error != nil {
		return msg.Error
	}

	return msg.Send(client)
}
