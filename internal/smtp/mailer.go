package smtp

import (
	"bytes"
	"fmt"
	"time"

	"github.com/cradoe/nationalid/assets"
	"github.com/cradoe/nationalid/internal/funcs"

	"github.com/wneessen/go-mail"

	htmlTemplate "html/template"
	textTemplate "text/template"
)

const (
	defaultTimeout = 10 * time.Second
	sendAttempts   = 3
)

type MailClient interface {
	DialAndSend(...*mail.Msg) error
}

type MailerInterface interface {
	Send(recipient string, data any, patterns ...string) error
}

type Mailer struct {
	client     MailClient
	from       string
	retryDelay time.Duration
}

func NewMailer(host string, port int, username, password, from string) (*Mailer, error) {
	client, err := mail.NewClient(
		host,
		mail.WithTimeout(defaultTimeout),
		mail.WithPort(port),
		mail.WithUsername(username),
		mail.WithPassword(password),
		mail.WithTLSPolicy(mail.NoTLS),
	)
	if err != nil {
		return nil, err
	}

	return NewMailerWithClient(client, from), nil
}

func NewMailerWithClient(client MailClient, from string) *Mailer {
	return &Mailer{
		client:     client,
		from:       from,
		retryDelay: 2 * time.Second,
	}
}

// Send renders the named templates under assets/emails and delivers the
// message. Each template defines subject and plainBody, and may add htmlBody.
func (m *Mailer) Send(recipient string, data any, patterns ...string) error {
	msg, err := m.compose(recipient, data, patterns...)
	if err != nil {
		return err
	}

	for i := 1; i <= sendAttempts; i++ {
		err = m.client.DialAndSend(msg)
		if err == nil {
			return nil
		}

		if i != sendAttempts {
			time.Sleep(m.retryDelay)
		}
	}

	return fmt.Errorf("send mail to %s: %w", recipient, err)
}

func (m *Mailer) compose(recipient string, data any, patterns ...string) (*mail.Msg, error) {
	paths := make([]string, len(patterns))
	for i := range patterns {
		paths[i] = "emails/" + patterns[i]
	}

	msg := mail.NewMsg()

	if err := msg.To(recipient); err != nil {
		return nil, err
	}

	if err := msg.From(m.from); err != nil {
		return nil, err
	}

	ts, err := textTemplate.New("").Funcs(funcs.TemplateFuncs).ParseFS(assets.EmbeddedFiles, paths...)
	if err != nil {
		return nil, err
	}

	subject := new(bytes.Buffer)
	if err := ts.ExecuteTemplate(subject, "subject", data); err != nil {
		return nil, err
	}

	msg.Subject(subject.String())

	plainBody := new(bytes.Buffer)
	if err := ts.ExecuteTemplate(plainBody, "plainBody", data); err != nil {
		return nil, err
	}

	msg.SetBodyString(mail.TypeTextPlain, plainBody.String())

	if ts.Lookup("htmlBody") != nil {
		hts, err := htmlTemplate.New("").Funcs(funcs.TemplateFuncs).ParseFS(assets.EmbeddedFiles, paths...)
		if err != nil {
			return nil, err
		}

		htmlBody := new(bytes.Buffer)
		if err := hts.ExecuteTemplate(htmlBody, "htmlBody", data); err != nil {
			return nil, err
		}

		msg.AddAlternativeString(mail.TypeTextHTML, htmlBody.String())
	}

	return msg, nil
}
