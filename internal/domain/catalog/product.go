package catalog

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrNotFound        = errors.New("catalog: product not found")
	ErrInvalidQuantity = errors.New("catalog: quantity must be greater than zero")
	// ErrConflict signals a compare-and-swap update that lost a race with a
	// concurrent writer; callers retry with a fresh read.
	ErrConflict = errors.New("catalog: concurrent supply update")
)

// Product is a catalog entry. Supply is the only consistency-critical field;
// it is mutated exclusively through the repository's compare-and-swap update.
type Product struct {
	ID         string
	Title      string
	UnitPrice  decimal.Decimal
	Supply     int
	OwnerEmail string
	UpdatedAt  time.Time
}

func NewProduct(id, title string, unitPrice decimal.Decimal, supply int, ownerEmail string) (*Product, error) {
	if supply < 0 {
		return nil, ErrInvalidQuantity
	}
	return &Product{
		ID:         id,
		Title:      title,
		UnitPrice:  unitPrice,
		Supply:     supply,
		OwnerEmail: ownerEmail,
		UpdatedAt:  time.Now().UTC(),
	}, nil
}

// HasStock reports whether the product can currently cover quantity. This is
// an advisory check; the authoritative enforcement is the compare-and-swap
// decrement at reconciliation time.
func (p *Product) HasStock(quantity int) bool {
	return quantity > 0 && quantity <= p.Supply
}
