package payment

import (
	"context"

	"github.com/quantium/marketplace-checkout/internal/domain/checkout"
)

// Session is a redirectable checkout handle returned by the gateway.
type Session struct {
	ID  string
	URL string
}

// Gateway is the port to the external split-payment provider.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, req checkout.SplitRequest) (*Session, error)
}

// Account is a connected payout account created during business onboarding.
type Account struct {
	ID            string
	OnboardingURL string
}

// Accounts is the port to the gateway's connected-account onboarding API.
type Accounts interface {
	CreateAccount(ctx context.Context, email, businessName string) (*Account, error)
}
