package business

import "time"

// RegisteredEvent is emitted when a new business completes registration. It is
// handled outside the request path, e.g. by the mail fanout worker.
type RegisteredEvent struct {
	Email           string
	Name            string
	PayoutAccountID string
	OccurredAt      time.Time
}

func (RegisteredEvent) EventName() string { return "business.registered" }

func NewRegisteredEvent(b *Business) RegisteredEvent {
	return RegisteredEvent{
		Email:           b.Email,
		Name:            b.Name,
		PayoutAccountID: b.PayoutAccountID,
		OccurredAt:      time.Now().UTC(),
	}
}
