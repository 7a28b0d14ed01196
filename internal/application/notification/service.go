// Package notification verifies inbound payment completion notifications and
// routes verified completions to the inventory reconciler.
package notification

import (
	"context"
	"errors"
	"time"

	"github.com/quantium/marketplace-checkout/internal/application/inventory"
	"github.com/quantium/marketplace-checkout/internal/domain/checkout"
	"github.com/quantium/marketplace-checkout/internal/domain/payment"
	"github.com/quantium/marketplace-checkout/internal/pkg/apperr"
	"github.com/quantium/marketplace-checkout/internal/pkg/logging"
	"github.com/quantium/marketplace-checkout/internal/pkg/signature"
	"go.uber.org/zap"
)

// Outcome distinguishes an authentic-but-uninteresting notification from one
// that drove reconciliation. Both answer HTTP 200; only errors map to 4xx/5xx.
type Outcome string

const (
	OutcomeIgnored    Outcome = "ignored"
	OutcomeReconciled Outcome = "reconciled"
)

type Service struct {
	secret     string
	tolerance  time.Duration
	reconciler *inventory.Reconciler
}

func NewService(secret string, tolerance time.Duration, reconciler *inventory.Reconciler) *Service {
	return &Service{
		secret:     secret,
		tolerance:  tolerance,
		reconciler: reconciler,
	}
}

// Handle verifies the signature over the raw payload, parses the notification
// and, for checkout completions, decrements supply for the purchased items.
// A forged or malformed notification must never touch inventory.
func (s *Service) Handle(ctx context.Context, payload []byte, sigHeader string) (Outcome, error) {
	logger := logging.FromContext(ctx).With(zap.String("component", "notification_service"))

	if err := signature.Verify(s.secret, payload, sigHeader, s.tolerance); err != nil {
		logger.Warn("notification_signature_rejected", zap.Error(err))
		return "", apperr.Wrap(apperr.CodeUnauthenticated, err, "webhook signature verification failed")
	}

	event, err := payment.ParseNotification(payload)
	if err != nil {
		return "", apperr.Wrap(apperr.CodeInvalidArgument, err, "malformed notification body")
	}

	if event.Type != payment.EventCheckoutCompleted {
		logger.Info("notification_ignored",
			zap.String("event_id", event.ID),
			zap.String("event_type", event.Type),
		)
		return OutcomeIgnored, nil
	}

	order, err := checkout.DecodePendingOrder(event.Data.Object.Metadata)
	if errors.Is(err, checkout.ErrMetadataMissing) {
		return "", apperr.InvalidArgument("notification missing items metadata")
	}
	if err != nil {
		return "", apperr.Wrap(apperr.CodeInvalidArgument, err, "invalid items metadata")
	}

	results := s.reconciler.Reconcile(ctx, order.Items)
	if !inventory.AllOK(results) {
		failed := 0
		for _, r := range results {
			if !r.OK() {
				failed++
			}
		}
		logger.Error("notification_reconcile_failed",
			zap.String("event_id", event.ID),
			zap.String("session_id", event.Data.Object.ID),
			zap.Int("failed_items", failed),
			zap.Int("total_items", len(results)),
		)
		return "", apperr.Internal("inventory update failed for %d of %d items", failed, len(results))
	}

	logger.Info("notification_reconciled",
		zap.String("event_id", event.ID),
		zap.String("session_id", event.Data.Object.ID),
		zap.Int("items", len(results)),
	)
	return OutcomeReconciled, nil
}
