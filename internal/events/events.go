// Package events publishes ledger state changes after they commit.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Type identifies a ledger event. The value doubles as the NATS subject.
type Type string

const (
	OrderPlaced      Type = "orders.placed"
	OrderCancelled   Type = "orders.cancelled"
	PaymentSucceeded Type = "payments.succeeded"
	PaymentFailed    Type = "payments.failed"
)

// Event is the JSON payload published for every ledger state change.
type Event struct {
	ID         uuid.UUID       `json:"id"`
	Type       Type            `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	OrderID    string          `json:"order_id"`
	PaymentID  string          `json:"payment_id,omitempty"`
	UserID     string          `json:"user_id,omitempty"`
	Amount     decimal.Decimal `json:"amount"`
	Currency   string          `json:"currency,omitempty"`
}

// Publisher delivers events. Publishing happens after the transaction that
// produced the event has committed, so a failure never undoes ledger state.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// prepare fills in the ID and timestamp when the caller left them empty.
func prepare(event Event) Event {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	return event
}
