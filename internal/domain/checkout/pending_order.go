package checkout

import (
	"encoding/json"
	"errors"
	"fmt"
)

const (
	metadataItemsKey   = "items"
	metadataEmailKey   = "business_email"
	metadataAccountKey = "payout_account_id"
)

var ErrMetadataMissing = errors.New("checkout: pending order metadata missing")

// PendingOrder is the order content carried from assembly time to completion
// time. No order record persists between the two; the gateway metadata is the
// only channel, so encoding and decoding must round-trip verbatim.
type PendingOrder struct {
	Items           []CartItem
	BusinessEmail   string
	PayoutAccountID string
}

// EncodeMetadata serializes the pending order into gateway metadata.
func (p PendingOrder) EncodeMetadata() (map[string]string, error) {
	raw, err := json.Marshal(p.Items)
	if err != nil {
		return nil, fmt.Errorf("checkout: encode items: %w", err)
	}
	return map[string]string{
		metadataItemsKey:   string(raw),
		metadataEmailKey:   p.BusinessEmail,
		metadataAccountKey: p.PayoutAccountID,
	}, nil
}

// DecodePendingOrder recovers a pending order from notification metadata. It
// fails when the item list is absent or does not parse as [{id, qty}].
func DecodePendingOrder(metadata map[string]string) (PendingOrder, error) {
	rawItems, ok := metadata[metadataItemsKey]
	if !ok || rawItems == "" {
		return PendingOrder{}, ErrMetadataMissing
	}

	var items []CartItem
	if err := json.Unmarshal([]byte(rawItems), &items); err != nil {
		return PendingOrder{}, fmt.Errorf("checkout: decode items: %w", err)
	}
	if err := Validate(items); err != nil {
		return PendingOrder{}, err
	}

	return PendingOrder{
		Items:           items,
		BusinessEmail:   metadata[metadataEmailKey],
		PayoutAccountID: metadata[metadataAccountKey],
	}, nil
}
