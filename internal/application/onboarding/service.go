// Package onboarding registers selling businesses: it creates a connected
// payout account at the gateway, records the business in the directory and
// announces the registration on the event bus.
package onboarding

import (
	"context"
	"errors"

	"github.com/quantium/marketplace-checkout/internal/domain/business"
	"github.com/quantium/marketplace-checkout/internal/domain/outbox"
	"github.com/quantium/marketplace-checkout/internal/domain/payment"
	"github.com/quantium/marketplace-checkout/internal/pkg/apperr"
	"github.com/quantium/marketplace-checkout/internal/pkg/logging"
	"go.uber.org/zap"
)

type Service struct {
	directory business.Directory
	accounts  payment.Accounts
	publisher outbox.Publisher
}

func NewService(directory business.Directory, accounts payment.Accounts, publisher outbox.Publisher) *Service {
	return &Service{
		directory: directory,
		accounts:  accounts,
		publisher: publisher,
	}
}

type RegisterResult struct {
	AccountID     string
	OnboardingURL string
}

// Register creates the connected account and stores the business. The mail
// fanout is event-driven and never blocks or fails the registration.
func (s *Service) Register(ctx context.Context, email, businessName string) (*RegisterResult, error) {
	logger := logging.FromContext(ctx).With(zap.String("component", "onboarding_service"))

	if email == "" {
		return nil, apperr.InvalidArgument("missing email")
	}

	account, err := s.accounts.CreateAccount(ctx, email, businessName)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, err, "create connected account")
	}

	entity, err := business.New(email, businessName)
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInvalidArgument, err, "invalid business")
	}
	entity.PayoutAccountID = account.ID

	if err := s.directory.Save(ctx, entity); err != nil {
		if errors.Is(err, business.ErrConflict) {
			return nil, apperr.InvalidArgument("business %s already registered", email)
		}
		return nil, apperr.Wrap(apperr.CodeInternal, err, "save business")
	}

	if s.publisher != nil {
		if perr := s.publisher.Publish(ctx, business.NewRegisteredEvent(entity)); perr != nil {
			logger.Warn("registration_event_publish_failed",
				zap.String("business_email", email),
				zap.Error(perr),
			)
		}
	}

	logger.Info("business_registered",
		zap.String("business_email", email),
		zap.String("payout_account_id", account.ID),
	)

	return &RegisterResult{
		AccountID:     account.ID,
		OnboardingURL: account.OnboardingURL,
	}, nil
}
