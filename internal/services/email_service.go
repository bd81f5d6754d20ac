package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"gopkg.in/gomail.v2"
)

// Attachment is a rendered report file sent along with a notification.
type Attachment struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Mailer delivers scheduled reports by email.
type Mailer interface {
	SendReport(ctx context.Context, to []string, subject, html string, att Attachment) error
}

var errNoRecipients = errors.New("no recipients")

type smtpMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPMailer(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail string) Mailer {
	return &smtpMailer{
		dialer: gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword),
		from:   fromEmail,
	}
}

func (s *smtpMailer) SendReport(ctx context.Context, to []string, subject, html string, att Attachment) error {
	if len(to) == 0 {
		return errNoRecipients
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.dialer.DialAndSend(buildMessage(s.from, to, subject, html, att)); err != nil {
		return fmt.Errorf("failed to send report email: %w", err)
	}
	return nil
}

func buildMessage(from string, to []string, subject, html string, att Attachment) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", html)
	if len(att.Body) > 0 {
		m.Attach(att.Filename,
			gomail.SetHeader(map[string][]string{"Content-Type": {att.ContentType}}),
			gomail.SetCopyFunc(func(w io.Writer) error {
				_, err := w.Write(att.Body)
				return err
			}),
		)
	}
	return m
}

type sendGridMailer struct {
	client *sendgrid.Client
	from   *mail.Email
}

func NewSendGridMailer(apiKey, fromName, fromEmail string) Mailer {
	return &sendGridMailer{
		client: sendgrid.NewSendClient(apiKey),
		from:   mail.NewEmail(fromName, fromEmail),
	}
}

func (s *sendGridMailer) SendReport(ctx context.Context, to []string, subject, html string, att Attachment) error {
	if len(to) == 0 {
		return errNoRecipients
	}
	response, err := s.client.SendWithContext(ctx, buildSendGridMail(s.from, to, subject, html, att))
	if err != nil {
		return fmt.Errorf("failed to send report email: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid error: status %d", response.StatusCode)
	}
	return nil
}

func buildSendGridMail(from *mail.Email, to []string, subject, html string, att Attachment) *mail.SGMailV3 {
	m := mail.NewV3Mail()
	m.SetFrom(from)
	m.Subject = subject

	p := mail.NewPersonalization()
	for _, addr := range to {
		p.AddTos(mail.NewEmail("", addr))
	}
	m.AddPersonalizations(p)
	m.AddContent(mail.NewContent("text/html", html))

	if len(att.Body) > 0 {
		a := mail.NewAttachment()
		a.SetContent(base64.StdEncoding.EncodeToString(att.Body))
		a.SetType(att.ContentType)
		a.SetFilename(att.Filename)
		a.SetDisposition("attachment")
		m.AddAttachment(a)
	}
	return m
}
