// Package mail delivers transactional email for the registration flow.
// Delivery is fire-and-forget from the core's perspective.
package mail

import (
	"context"

	"github.com/quantium/marketplace-checkout/internal/pkg/logging"
	"go.uber.org/zap"
)

// Message is one outbound email.
type Message struct {
	To      string
	From    string
	Subject string
	Body    string
}

// Mailer is the port to the outbound email provider.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// LogMailer records outbound mail in the service log instead of delivering
// it. Used in dev and tests; a provider-backed adapter replaces it in
// production deployments.
type LogMailer struct{}

func NewLogMailer() *LogMailer { return &LogMailer{} }

func (m *LogMailer) Send(ctx context.Context, msg Message) error {
	logging.FromContext(ctx).Info("mail_sent",
		zap.String("component", "log_mailer"),
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
	)
	return nil
}
