package business

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("business: not found")
	ErrConflict      = errors.New("business: email already registered")
	ErrEmailRequired = errors.New("business: email is required")
)

// Business is a selling vendor on the platform. PayoutAccountID stays empty
// until gateway onboarding completes.
type Business struct {
	Email           string
	Name            string
	PayoutAccountID string
	CreatedAt       time.Time
}

func New(email, name string) (*Business, error) {
	if email == "" {
		return nil, ErrEmailRequired
	}
	return &Business{
		Email:     email,
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Onboarded reports whether funds can be routed to this business.
func (b *Business) Onboarded() bool {
	return b.PayoutAccountID != ""
}

// Directory is the port to the durable business registry.
type Directory interface {
	FindByEmail(ctx context.Context, email string) (*Business, error)
	Save(ctx context.Context, b *Business) error
}
