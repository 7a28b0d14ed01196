package memory

import (
	"context"
	"fmt"
	"sync"

	domain "github.com/quantium/marketplace-checkout/internal/domain/catalog"
)

// CatalogRepository is an in-memory stand-in for the document store backing
// the product catalog. Supply updates go through CompareAndSwapSupply only, so
// concurrent decrements behave like single-document transactions.
type CatalogRepository struct {
	mu       sync.RWMutex
	products map[string]*domain.Product
}

func NewCatalogRepository() *CatalogRepository {
	return &CatalogRepository{
		products: make(map[string]*domain.Product),
	}
}

func (r *CatalogRepository) Get(ctx context.Context, id string) (*domain.Product, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, &domain.NotFoundError{ID: id}
	}
	return cloneProduct(product), nil
}

func (r *CatalogRepository) GetBatch(ctx context.Context, ids []string) ([]*domain.Product, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Product, len(ids))
	for i, id := range ids {
		product, ok := r.products[id]
		if !ok {
			return nil, &domain.NotFoundError{ID: id}
		}
		out[i] = cloneProduct(product)
	}
	return out, nil
}

func (r *CatalogRepository) CompareAndSwapSupply(ctx context.Context, id string, expected, next int) error {
	_ = ctx
	if next < 0 {
		return fmt.Errorf("catalog repository: negative supply for %s", id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	product, ok := r.products[id]
	if !ok {
		return &domain.NotFoundError{ID: id}
	}
	if product.Supply != expected {
		return domain.ErrConflict
	}

	product.Supply = next
	return nil
}

func (r *CatalogRepository) Save(ctx context.Context, product *domain.Product) error {
	_ = ctx
	if product == nil || product.ID == "" {
		return fmt.Errorf("catalog repository: product id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.products[product.ID] = cloneProduct(product)
	return nil
}

func cloneProduct(p *domain.Product) *domain.Product {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}
