package mail

import (
	"context"
	"fmt"

	"github.com/quantium/marketplace-checkout/internal/domain/business"
	"github.com/quantium/marketplace-checkout/internal/domain/outbox"
	"github.com/quantium/marketplace-checkout/internal/pkg/logging"
	"go.uber.org/zap"
)

// Worker listens for business registrations and notifies both the platform
// team and the registering business.
type Worker struct {
	subscriber outbox.Subscriber
	mailer     Mailer
	sender     string
	teamEmail  string
}

func NewWorker(subscriber outbox.Subscriber, mailer Mailer, sender, teamEmail string) *Worker {
	return &Worker{
		subscriber: subscriber,
		mailer:     mailer,
		sender:     sender,
		teamEmail:  teamEmail,
	}
}

func (w *Worker) Start() {
	w.subscriber.Subscribe(business.RegisteredEvent{}.EventName(), w.handleRegistered)
}

func (w *Worker) handleRegistered(ctx context.Context, e outbox.Event) error {
	logger := logging.FromContext(ctx).With(zap.String("component", "mail_worker"))
	evt, ok := e.(business.RegisteredEvent)
	if !ok {
		return nil
	}

	toTeam := Message{
		To:      w.teamEmail,
		From:    w.sender,
		Subject: fmt.Sprintf("New business registration: %s", evt.Name),
		Body: fmt.Sprintf(
			"Business %q (%s) registered with payout account %s and is pending review.",
			evt.Name, evt.Email, evt.PayoutAccountID,
		),
	}
	if err := w.mailer.Send(ctx, toTeam); err != nil {
		logger.Warn("team_mail_failed", zap.String("business_email", evt.Email), zap.Error(err))
	}

	toBusiness := Message{
		To:      evt.Email,
		From:    w.sender,
		Subject: "Your business registration is under review",
		Body: fmt.Sprintf(
			"We received your application for %q. Our team will review it and contact you soon.",
			evt.Name,
		),
	}
	if err := w.mailer.Send(ctx, toBusiness); err != nil {
		logger.Warn("business_mail_failed", zap.String("business_email", evt.Email), zap.Error(err))
	}

	return nil
}
