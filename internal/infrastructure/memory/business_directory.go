package memory

import (
	"context"
	"fmt"
	"sync"

	domain "github.com/quantium/marketplace-checkout/internal/domain/business"
)

// BusinessDirectory is an in-memory stand-in for the durable business
// registry, keyed by email.
type BusinessDirectory struct {
	mu         sync.RWMutex
	businesses map[string]*domain.Business
}

func NewBusinessDirectory() *BusinessDirectory {
	return &BusinessDirectory{
		businesses: make(map[string]*domain.Business),
	}
}

func (d *BusinessDirectory) FindByEmail(ctx context.Context, email string) (*domain.Business, error) {
	_ = ctx

	d.mu.RLock()
	defer d.mu.RUnlock()

	b, ok := d.businesses[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cloneBusiness(b), nil
}

func (d *BusinessDirectory) Save(ctx context.Context, b *domain.Business) error {
	_ = ctx
	if b == nil || b.Email == "" {
		return fmt.Errorf("business directory: email is required")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.businesses[b.Email]; exists {
		return domain.ErrConflict
	}
	d.businesses[b.Email] = cloneBusiness(b)
	return nil
}

func cloneBusiness(b *domain.Business) *domain.Business {
	if b == nil {
		return nil
	}
	clone := *b
	return &clone
}
