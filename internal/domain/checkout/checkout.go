// Package checkout holds the value objects flowing through the order assembly
// path: cart input, priced lines, the split payment request sent to the
// gateway, and the pending order metadata round-tripped through it.
package checkout

import (
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyCart       = errors.New("checkout: cart is empty")
	ErrInvalidItem     = errors.New("checkout: item id and positive quantity are required")
	ErrMultipleVendors = errors.New("checkout: all items must belong to one business")
)

// CartItem is the caller-supplied request line. It is never persisted.
type CartItem struct {
	ID  string `json:"id"`
	Qty int    `json:"qty"`
}

// Validate rejects structurally invalid carts before any catalog read.
func Validate(items []CartItem) error {
	if len(items) == 0 {
		return ErrEmptyCart
	}
	for _, it := range items {
		if it.ID == "" || it.Qty <= 0 {
			return ErrInvalidItem
		}
	}
	return nil
}

// Line is a resolved, priced order line. It exists only within one assembler
// invocation.
type Line struct {
	ProductID       string
	ProductName     string
	UnitPrice       decimal.Decimal
	Quantity        int
	SubtotalMinor   int64
	CommissionMinor int64
}

// LineItem is the gateway-facing projection of a Line. The gateway only needs
// charge amounts; commission detail stays on the platform side.
type LineItem struct {
	Currency        string
	ProductName     string
	UnitAmountMinor int64
	Quantity        int
}

// SplitRequest instructs the gateway to charge the buyer, transfer settlement
// to the destination payout account, and retain the application fee for the
// platform, all in one operation.
type SplitRequest struct {
	LineItems            []LineItem
	ApplicationFeeMinor  int64
	DestinationAccountID string
	Metadata             map[string]string
	SuccessURL           string
	CancelURL            string
}
