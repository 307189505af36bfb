// Package notify delivers candidate login credentials by email.
package notify

import (
	"context"
	"errors"
	"fmt"
	"text/template"

	"github.com/wneessen/go-mail"
)

const credentialsSubject = "Your Login Credentials - AI Interview System"

var credentialsBody = template.Must(template.New("credentials").Parse(`
Hello {{.Name}},

Your interview profile has been created successfully.

Here are your login details:
Interview link: {{.InterviewURL}}
Email: {{.Email}}
Password: {{.Password}}

You will use these credentials to log in and take your AI interview.

Regards,
AI Interview System
`))

// ErrNotConfigured is returned when no sender address is configured.
var ErrNotConfigured = errors.New("mail sender is not configured")

// Credentials are the login details mailed to a new candidate.
type Credentials struct {
	Name     string
	Email    string
	Password string
}

// Sender delivers credential emails.
type Sender interface {
	SendCredentials(ctx context.Context, c Credentials) error
}

type SMTPConfig struct {
	Host         string
	Port         int
	Username     string
	Password     string
	From         string
	InterviewURL string
}

// SMTPSender sends mail through an SMTP relay with mandatory STARTTLS.
type SMTPSender struct {
	client       *mail.Client
	from         string
	interviewURL string
}

func NewSMTPSender(cfg SMTPConfig) (*SMTPSender, error) {
	if cfg.From == "" {
		return nil, ErrNotConfigured
	}
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPortPolicy(mail.TLSMandatory),
	}
	username := cfg.Username
	if username == "" {
		username = cfg.From
	}
	if cfg.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(username),
			mail.WithPassword(cfg.Password))
	}
	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}
	return &SMTPSender{client: client, from: cfg.From, interviewURL: cfg.InterviewURL}, nil
}

func (s *SMTPSender) SendCredentials(ctx context.Context, c Credentials) error {
	msg, err := credentialsMessage(s.from, s.interviewURL, c)
	if err != nil {
		return err
	}
	if err := s.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send credentials to %s: %w", c.Email, err)
	}
	return nil
}

type credentialsData struct {
	Credentials
	InterviewURL string
}

func credentialsMessage(from, interviewURL string, c Credentials) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return nil, fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(c.Email); err != nil {
		return nil, fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(credentialsSubject)
	if err := msg.SetBodyTextTemplate(credentialsBody, credentialsData{Credentials: c, InterviewURL: interviewURL}); err != nil {
		return nil, fmt.Errorf("render credentials email: %w", err)
	}
	return msg, nil
}
