package actions

import (
	"context"
	"fmt"
	"strings"

	"github.com/wneessen/go-mail"
)

// Relay delivers composed messages. *mail.Client satisfies it.
type Relay interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// EmailConfig holds the sender mailbox and relay endpoint.
type EmailConfig struct {
	Sender   string
	Password string
	Host     string
	Port     int
}

// EmailSender sends EmailActions through an implicit-TLS SMTP relay.
type EmailSender struct {
	cfg      EmailConfig
	newRelay func(EmailConfig) (Relay, error)
}

// NewEmailSender creates an EmailSender. Missing credentials are not an error
// here; they turn each send into a failure result.
func NewEmailSender(cfg EmailConfig) *EmailSender {
	if cfg.Host == "" {
		cfg.Host = "smtp.gmail.com"
	}
	if cfg.Port == 0 {
		cfg.Port = 465
	}
	return &EmailSender{cfg: cfg, newRelay: dialSMTP}
}

func dialSMTP(cfg EmailConfig) (Relay, error) {
	client, err := mail.NewClient(cfg.Host,
		mail.WithPort(cfg.Port),
		mail.WithSSL(),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Sender),
		mail.WithPassword(cfg.Password),
	)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// Send relays a. It never returns an error; the outcome is in the result.
func (s *EmailSender) Send(ctx context.Context, a EmailAction) (bool, string) {
	var missing []string
	if s.cfg.Sender == "" {
		missing = append(missing, "SENDER_EMAIL")
	}
	if s.cfg.Password == "" {
		missing = append(missing, "SENDER_EMAIL_PASSWORD")
	}
	if strings.TrimSpace(a.Recipient) == "" {
		missing = append(missing, "recipient")
	}
	if len(missing) > 0 {
		return false, fmt.Sprintf("Email sender credentials or recipient missing/invalid (missing: %s).", strings.Join(missing, ", "))
	}

	msg := mail.NewMsg()
	if err := msg.From(s.cfg.Sender); err != nil {
		return false, fmt.Sprintf("Email sender credentials or recipient missing/invalid: %v", err)
	}
	if err := msg.To(a.Recipient); err != nil {
		return false, fmt.Sprintf("Email sender credentials or recipient missing/invalid: %v", err)
	}
	msg.Subject(a.Subject)
	msg.SetBodyString(mail.TypeTextPlain, a.Body)

	relay, err := s.newRelay(s.cfg)
	if err != nil {
		return false, fmt.Sprintf("Failed to send email: %v", err)
	}
	if err := relay.DialAndSendWithContext(ctx, msg); err != nil {
		return false, fmt.Sprintf("Failed to send email: %v", err)
	}
	return true, fmt.Sprintf("Email sent successfully to %s.", a.Recipient)
}
