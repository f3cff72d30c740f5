// Package email delivers operational alerts to the laundry staff mailbox.
// Customer-facing messaging goes over WhatsApp; email is only used for
// internal notifications such as urgent escalations.
package email

import (
	"context"
	"fmt"
	"net"
	"time"

	"lavanderia_backend/platform/config"

	gomail "github.com/wneessen/go-mail"
)

// Sender delivers operational emails. A nil *SMTPSender is a no-op so
// environments without SMTP configured still boot.
type Sender interface {
	SendUrgentEscalationAlert(ctx context.Context, a UrgentEscalationAlert) error
}

// UrgentEscalationAlert carries the details staff need to triage an urgent
// customer escalation from their inbox.
type UrgentEscalationAlert struct {
	EscalationID   string
	ConversationID string
	CustomerPhone  string
	Reason         string
	Priority       string
}

// SMTPSender implements Sender using a direct SMTP connection via go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromEmail string
	alertTo   string
}

// NewSender builds the configured sender, or nil when email is disabled.
func NewSender(cfg config.EmailConfig) *SMTPSender {
	if !cfg.IsEmailEnabled() {
		return nil
	}
	return &SMTPSender{
		host:      cfg.GetSMTPHost(),
		port:      cfg.GetSMTPPort(),
		username:  cfg.GetSMTPUsername(),
		password:  cfg.GetSMTPPassword(),
		fromEmail: cfg.GetEmailFromAddress(),
		alertTo:   cfg.GetOpsAlertAddress(),
	}
}

func (s *SMTPSender) SendUrgentEscalationAlert(ctx context.Context, a UrgentEscalationAlert) error {
	if s == nil {
		return nil
	}

	content, err := renderEmailTemplate(urgentEscalationTemplate, a)
	if err != nil {
		return err
	}
	subject := fmt.Sprintf("[URGENTE] Escalación %s requiere atención", a.EscalationID)
	return s.send(ctx, s.alertTo, subject, content)
}

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, htmlContent string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat("Lavandería", s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}
