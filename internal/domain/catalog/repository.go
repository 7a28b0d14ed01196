package catalog

import "context"

// NotFoundError names the missing product so callers can surface the id.
// It matches ErrNotFound under errors.Is.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return "catalog: product " + e.ID + " not found"
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// Repository is the port to the durable product catalog.
type Repository interface {
	Get(ctx context.Context, id string) (*Product, error)
	// GetBatch resolves ids in order. It fails with ErrNotFound wrapping the
	// first missing id rather than returning a partial result.
	GetBatch(ctx context.Context, ids []string) ([]*Product, error)
	// CompareAndSwapSupply sets the product's supply to next only if the
	// stored supply still equals expected, returning ErrConflict otherwise.
	CompareAndSwapSupply(ctx context.Context, id string, expected, next int) error
	Save(ctx context.Context, product *Product) error
}
