// Package checkout implements the order assembler: it validates a cart against
// the catalog, enforces the single-vendor invariant, prices commission, and
// hands a split payment request to the gateway.
package checkout

import (
	"context"
	"errors"

	"github.com/quantium/marketplace-checkout/internal/domain/business"
	"github.com/quantium/marketplace-checkout/internal/domain/catalog"
	domain "github.com/quantium/marketplace-checkout/internal/domain/checkout"
	"github.com/quantium/marketplace-checkout/internal/domain/commission"
	"github.com/quantium/marketplace-checkout/internal/domain/payment"
	"github.com/quantium/marketplace-checkout/internal/pkg/apperr"
	"github.com/quantium/marketplace-checkout/internal/pkg/logging"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("application/checkout")

var hundred = decimal.NewFromInt(100)

// Options carries the request-independent parameters of split requests.
type Options struct {
	Currency   string
	SuccessURL string
	CancelURL  string
}

type Service struct {
	catalog   catalog.Repository
	directory business.Directory
	gateway   payment.Gateway
	opts      Options
}

func NewService(catalogRepo catalog.Repository, directory business.Directory, gateway payment.Gateway, opts Options) *Service {
	return &Service{
		catalog:   catalogRepo,
		directory: directory,
		gateway:   gateway,
		opts:      opts,
	}
}

type Result struct {
	CheckoutURL string
}

// AssembleCheckout validates the cart, builds the split payment request and
// returns the gateway redirect URL. No order record is persisted; the order
// contents travel inside the split request metadata and come back verbatim on
// the completion notification.
func (s *Service) AssembleCheckout(ctx context.Context, items []domain.CartItem) (_ *Result, err error) {
	logger := logging.FromContext(ctx).With(zap.String("component", "checkout_service"))

	ctx, span := tracer.Start(ctx, "UC.AssembleCheckout")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, string(apperr.CodeOf(err)))
		} else {
			span.SetStatus(codes.Ok, "OK")
		}
		span.End()
	}()
	span.SetAttributes(attribute.Int("cart.items", len(items)))

	if verr := domain.Validate(items); verr != nil {
		return nil, apperr.Wrap(apperr.CodeInvalidArgument, verr, "cart empty or malformed")
	}

	ids := make([]string, len(items))
	for i, it := range items {
		ids[i] = it.ID
	}
	products, err := s.catalog.GetBatch(ctx, ids)
	if err != nil {
		var missing *catalog.NotFoundError
		if errors.As(err, &missing) {
			return nil, apperr.NotFound("product %s not found", missing.ID)
		}
		return nil, apperr.Wrap(apperr.CodeInternal, err, "catalog read failed")
	}

	// Advisory point-in-time check. The authoritative stock enforcement is the
	// compare-and-swap decrement at reconciliation time.
	for i, p := range products {
		if !p.HasStock(items[i].Qty) {
			return nil, apperr.OutOfRange("not enough stock for %s", p.Title)
		}
	}

	ownerEmail, err := singleOwner(products)
	if err != nil {
		return nil, err
	}

	owner, err := s.directory.FindByEmail(ctx, ownerEmail)
	if errors.Is(err, business.ErrNotFound) {
		return nil, apperr.NotFound("business %s not found", ownerEmail)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, err, "business lookup failed")
	}
	if !owner.Onboarded() {
		return nil, apperr.FailedPrecondition("business %s payout account not set up", ownerEmail)
	}

	lines := make([]domain.Line, len(products))
	var totalFeeMinor int64
	for i, p := range products {
		qty := items[i].Qty
		lines[i] = domain.Line{
			ProductID:       p.ID,
			ProductName:     p.Title,
			UnitPrice:       p.UnitPrice,
			Quantity:        qty,
			SubtotalMinor:   toMinor(p.UnitPrice.Mul(decimal.NewFromInt(int64(qty)))),
			CommissionMinor: commission.AmountMinor(p.UnitPrice, qty),
		}
		totalFeeMinor += lines[i].CommissionMinor
	}

	pending := domain.PendingOrder{
		Items:           items,
		BusinessEmail:   owner.Email,
		PayoutAccountID: owner.PayoutAccountID,
	}
	metadata, err := pending.EncodeMetadata()
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, err, "encode pending order")
	}

	req := domain.SplitRequest{
		LineItems:            make([]domain.LineItem, len(lines)),
		ApplicationFeeMinor:  totalFeeMinor,
		DestinationAccountID: owner.PayoutAccountID,
		Metadata:             metadata,
		SuccessURL:           s.opts.SuccessURL,
		CancelURL:            s.opts.CancelURL,
	}
	for i, l := range lines {
		req.LineItems[i] = domain.LineItem{
			Currency:        s.opts.Currency,
			ProductName:     l.ProductName,
			UnitAmountMinor: toMinor(l.UnitPrice),
			Quantity:        l.Quantity,
		}
	}

	session, err := s.gateway.CreateCheckoutSession(ctx, req)
	if err != nil {
		logger.Error("checkout_session_failed",
			zap.String("business_email", owner.Email),
			zap.Error(err),
		)
		return nil, apperr.Wrap(apperr.CodeInternal, err, "create checkout session")
	}

	span.SetAttributes(
		attribute.String("checkout.session_id", session.ID),
		attribute.Int64("checkout.application_fee_minor", totalFeeMinor),
	)
	logger.Info("checkout_session_created",
		zap.String("session_id", session.ID),
		zap.String("business_email", owner.Email),
		zap.Int64("application_fee_minor", totalFeeMinor),
		zap.Int("line_count", len(lines)),
	)

	return &Result{CheckoutURL: session.URL}, nil
}

// singleOwner enforces the one-business-per-order invariant.
func singleOwner(products []*catalog.Product) (string, error) {
	owner := products[0].OwnerEmail
	for _, p := range products[1:] {
		if p.OwnerEmail != owner {
			return "", apperr.Wrap(apperr.CodeInvalidArgument, domain.ErrMultipleVendors, "all items must be from one business")
		}
	}
	return owner, nil
}

func toMinor(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}
