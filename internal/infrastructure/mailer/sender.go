// Package mailer renders and delivers transactional email.
package mailer

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"

	"propdesk.backend/pkg/logger"
)

// Message is a rendered email ready to send.
type Message struct {
	To      []string
	Subject string
	HTML    string
}

// ResendSender delivers through the Resend API.
type ResendSender struct {
	client *resend.Client
	from   string
}

// NewResendSender creates a Resend-backed sender.
func NewResendSender(apiKey, from string) *ResendSender {
	return &ResendSender{client: resend.NewClient(apiKey), from: from}
}

// Send delivers msg. It makes exactly one API call.
func (s *ResendSender) Send(ctx context.Context, msg Message) error {
	sent, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.from,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
	})
	if err != nil {
		return fmt.Errorf("resend: %w", err)
	}
	logger.Debug(ctx, "Email sent", zap.String("id", sent.Id), zap.Strings("to", msg.To))
	return nil
}

// LogSender writes emails to the log instead of delivering them.
type LogSender struct{}

// Send logs msg.
func (LogSender) Send(ctx context.Context, msg Message) error {
	logger.Info(ctx, "Email delivery disabled, logging message",
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Int("htmlBytes", len(msg.HTML)),
	)
	return nil
}
