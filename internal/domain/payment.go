package domain

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

var (
	ErrDuplicatePayment    = &Error{Code: ECONFLICT, Message: "A payment already exists for this order"}
	ErrPaymentNotFound     = &Error{Code: ENOTFOUND, Message: "Payment not found"}
	ErrPaymentNotInitiated = &Error{Code: ECONFLICT, Message: "Payment is no longer in initiated state"}
)

// PaymentStatus is the state of a payment attempt.
type PaymentStatus string

const (
	PaymentStatusInitiated PaymentStatus = "initiated"
	PaymentStatusSucceeded PaymentStatus = "succeeded"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// PaymentService records the single payment attempt of an order and moves
// the order to paid or failed with it.
type PaymentService interface {
	// InitiatePayment opens the payment for a pending order. An empty
	// provider falls back to the configured default.
	InitiatePayment(ctx context.Context, orderID string, amount decimal.Decimal, provider string) (*Payment, error)

	// MarkSucceeded settles the payment and marks the order paid.
	MarkSucceeded(ctx context.Context, paymentID string, txnRef string) (*Payment, error)

	// MarkFailed fails the payment, fails the order and releases its stock.
	MarkFailed(ctx context.Context, paymentID string) (*Payment, error)

	GetPayment(ctx context.Context, paymentID string) (*Payment, error)
	GetPaymentForOrder(ctx context.Context, orderID string) (*Payment, error)
}

// Payment is the payment record of an order.
type Payment struct {
	ID        pgtype.UUID
	OrderID   pgtype.UUID
	Provider  string
	Amount    decimal.Decimal
	Status    PaymentStatus
	TxnRef    string
	PaidAt    *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
