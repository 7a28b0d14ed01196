// Package inventory implements the reconciler that decrements catalog supply
// after a verified payment completion. Each item is settled through a
// compare-and-swap update so that concurrent notifications can never drive
// supply below zero.
package inventory

import (
	"context"
	"errors"

	"github.com/quantium/marketplace-checkout/internal/domain/catalog"
	"github.com/quantium/marketplace-checkout/internal/domain/checkout"
	"github.com/quantium/marketplace-checkout/internal/pkg/apperr"
	"github.com/quantium/marketplace-checkout/internal/pkg/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var tracer = otel.Tracer("application/inventory")

const defaultMaxRetries = 5

// ItemResult is the typed outcome of one item's decrement. Item policy is
// best-effort: one item failing never blocks the others, and the caller
// inspects the slice to decide the overall response.
type ItemResult struct {
	ProductID string
	Quantity  int
	Remaining int
	Err       error
}

func (r ItemResult) OK() bool { return r.Err == nil }

// AllOK reports whether every item in the batch settled.
func AllOK(results []ItemResult) bool {
	for _, r := range results {
		if !r.OK() {
			return false
		}
	}
	return true
}

type Reconciler struct {
	catalog    catalog.Repository
	maxRetries int
}

func NewReconciler(catalogRepo catalog.Repository, maxRetries int) *Reconciler {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	return &Reconciler{catalog: catalogRepo, maxRetries: maxRetries}
}

// Reconcile decrements supply for every purchased item independently and
// returns one result per input item, in order.
func (r *Reconciler) Reconcile(ctx context.Context, items []checkout.CartItem) []ItemResult {
	logger := logging.FromContext(ctx).With(zap.String("component", "inventory_reconciler"))

	ctx, span := tracer.Start(ctx, "UC.ReconcileInventory")
	span.SetAttributes(attribute.Int("reconcile.items", len(items)))
	defer span.End()

	results := make([]ItemResult, len(items))
	for i, item := range items {
		results[i] = r.decrement(ctx, item)
		if res := results[i]; res.OK() {
			logger.Info("supply_decremented",
				zap.String("product_id", res.ProductID),
				zap.Int("quantity", res.Quantity),
				zap.Int("remaining", res.Remaining),
			)
		} else {
			logger.Warn("supply_decrement_failed",
				zap.String("product_id", res.ProductID),
				zap.Int("quantity", res.Quantity),
				zap.Error(res.Err),
			)
		}
	}
	return results
}

// decrement performs one item's read-check-swap cycle, retrying on conflicting
// concurrent writes to the same product. The stock check happens inside the
// cycle: a decrement commits only against the supply value it read.
func (r *Reconciler) decrement(ctx context.Context, item checkout.CartItem) ItemResult {
	result := ItemResult{ProductID: item.ID, Quantity: item.Qty}

	for attempt := 0; attempt < r.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			result.Err = apperr.Wrap(apperr.CodeInternal, err, "reconcile canceled")
			return result
		}

		product, err := r.catalog.Get(ctx, item.ID)
		if errors.Is(err, catalog.ErrNotFound) {
			result.Err = apperr.NotFound("product %s not found", item.ID)
			return result
		}
		if err != nil {
			result.Err = apperr.Wrap(apperr.CodeInternal, err, "catalog read failed")
			return result
		}

		if product.Supply < item.Qty {
			result.Err = apperr.OutOfStock("not enough stock for %s", product.Title)
			return result
		}

		next := product.Supply - item.Qty
		err = r.catalog.CompareAndSwapSupply(ctx, item.ID, product.Supply, next)
		if errors.Is(err, catalog.ErrConflict) {
			continue
		}
		if err != nil {
			result.Err = apperr.Wrap(apperr.CodeInternal, err, "supply update failed")
			return result
		}

		result.Remaining = next
		return result
	}

	result.Err = apperr.Internal("supply update for %s kept conflicting after %d attempts", item.ID, r.maxRetries)
	return result
}
