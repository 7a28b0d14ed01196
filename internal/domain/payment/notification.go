package payment

import "encoding/json"

// EventCheckoutCompleted is the only notification type that drives inventory
// reconciliation. Other authentic event types are acknowledged and ignored.
const EventCheckoutCompleted = "checkout.session.completed"

// Notification is the parsed body of a signed completion notification. The
// gateway delivers notifications at least once, possibly duplicated or out of
// order.
type Notification struct {
	ID   string           `json:"id"`
	Type string           `json:"type"`
	Data NotificationData `json:"data"`
}

type NotificationData struct {
	Object SessionObject `json:"object"`
}

// SessionObject carries the completed session with the metadata embedded at
// assembly time, returned verbatim by the gateway.
type SessionObject struct {
	ID       string            `json:"id"`
	Metadata map[string]string `json:"metadata"`
}

// ParseNotification decodes raw notification bytes. Signature verification
// happens before parsing; this only validates structure.
func ParseNotification(raw []byte) (*Notification, error) {
	var n Notification
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, err
	}
	return &n, nil
}
