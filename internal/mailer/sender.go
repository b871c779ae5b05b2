package mailer

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"

	"github.com/dmitrijs2005/votekeeper/internal/config"
	"github.com/dmitrijs2005/votekeeper/internal/models"
)

// Sender is the transport boundary: deliver one rendered message to one
// address.
type Sender interface {
	Send(ctx context.Context, to string, msg models.Message) error
}

// newMailClient is a test seam for the go-mail client constructor.
var newMailClient = func(cfg *config.Config) (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.SMTPPort),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(cfg.SMTPUser),
		mail.WithPassword(cfg.SMTPPassword),
	}
	if cfg.SMTPStartTLS {
		opts = append(opts, mail.WithTLSPortPolicy(mail.TLSMandatory))
	} else {
		// Implicit TLS on the submission port, 465 by default.
		opts = append(opts, mail.WithSSL())
	}
	return mail.NewClient(cfg.SMTPHost, opts...)
}

// SMTPSender delivers messages over authenticated, encrypted SMTP. A fresh
// session is opened per message; issuance volume is small and a session held
// across the long inter-message delays would be dropped by the server anyway.
type SMTPSender struct {
	cfg *config.Config
}

func NewSMTPSender(cfg *config.Config) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

func (s *SMTPSender) Send(ctx context.Context, to string, msg models.Message) error {
	m := mail.NewMsg()
	if err := m.FromFormat(s.cfg.SenderName, s.cfg.SenderEmail); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := m.To(to); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Text)
	m.AddAlternativeString(mail.TypeTextHTML, msg.HTML)

	client, err := newMailClient(s.cfg)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	return client.DialAndSendWithContext(ctx, m)
}
