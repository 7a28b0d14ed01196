// Package paymentsim simulates the external split-payment provider. It mints
// checkout sessions and connected accounts, and can emit signed completion
// notifications for sessions it created, which makes end-to-end flows testable
// without network access.
package paymentsim

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/quantium/marketplace-checkout/internal/domain/checkout"
	"github.com/quantium/marketplace-checkout/internal/domain/payment"
	"github.com/quantium/marketplace-checkout/internal/pkg/signature"
)

// Options configures the simulated provider.
type Options struct {
	WebhookSecret string
	// Return and refresh URLs are attached to onboarding links, mirroring how
	// real providers send the business back to the platform.
	OnboardingReturnURL  string
	OnboardingRefreshURL string
}

type Gateway struct {
	mu           sync.RWMutex
	sessions     map[string]checkout.SplitRequest
	opts         Options
	checkoutBase string
	onboardBase  string
}

func NewGateway(opts Options) *Gateway {
	return &Gateway{
		sessions:     make(map[string]checkout.SplitRequest),
		opts:         opts,
		checkoutBase: "https://pay.sim.local/c",
		onboardBase:  "https://pay.sim.local/onboarding",
	}
}

func (g *Gateway) CreateCheckoutSession(ctx context.Context, req checkout.SplitRequest) (*payment.Session, error) {
	_ = ctx
	id := "cs_" + uuid.NewString()

	g.mu.Lock()
	g.sessions[id] = req
	g.mu.Unlock()

	return &payment.Session{
		ID:  id,
		URL: fmt.Sprintf("%s/%s", g.checkoutBase, id),
	}, nil
}

func (g *Gateway) CreateAccount(ctx context.Context, email, businessName string) (*payment.Account, error) {
	_ = ctx
	_ = businessName
	if email == "" {
		return nil, fmt.Errorf("paymentsim: email is required")
	}

	id := "acct_" + uuid.NewString()
	onboarding := fmt.Sprintf("%s/%s", g.onboardBase, id)
	if g.opts.OnboardingReturnURL != "" {
		onboarding += "?return_url=" + url.QueryEscape(g.opts.OnboardingReturnURL)
		if g.opts.OnboardingRefreshURL != "" {
			onboarding += "&refresh_url=" + url.QueryEscape(g.opts.OnboardingRefreshURL)
		}
	}

	return &payment.Account{
		ID:            id,
		OnboardingURL: onboarding,
	}, nil
}

// CompleteSession produces the signed notification the provider would deliver
// once the buyer pays. It returns the raw payload and the signature header.
func (g *Gateway) CompleteSession(sessionID string) ([]byte, string, error) {
	g.mu.RLock()
	req, ok := g.sessions[sessionID]
	g.mu.RUnlock()
	if !ok {
		return nil, "", fmt.Errorf("paymentsim: unknown session %s", sessionID)
	}

	event := payment.Notification{
		ID:   "evt_" + uuid.NewString(),
		Type: payment.EventCheckoutCompleted,
		Data: payment.NotificationData{
			Object: payment.SessionObject{
				ID:       sessionID,
				Metadata: req.Metadata,
			},
		},
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, "", fmt.Errorf("paymentsim: marshal notification: %w", err)
	}

	return payload, signature.Sign(g.opts.WebhookSecret, payload, time.Now()), nil
}
