package domain

import (
	"context"
	"time"

	"github.com/dukerupert/mercato/internal/address"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// Order-related domain errors.
var (
	ErrOrderNotFound   = &Error{Code: ENOTFOUND, Message: "Order not found"}
	ErrOrderNotPending = &Error{Code: ECONFLICT, Message: "Order is not pending"}
	ErrAddressNotOwned = &Error{Code: EFORBIDDEN, Message: "Address belongs to a different user"}
)

// OrderStatus is the lifecycle state of an order. Only the status of an
// order changes after placement.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusFailed    OrderStatus = "failed"
)

// OrderService converts carts into immutable orders.
type OrderService interface {
	// PlaceOrder converts an active cart into a pending order in one
	// transaction: every line's stock is reserved, prices and names are
	// snapshotted, and the cart is marked converted. If any line cannot be
	// reserved nothing is written.
	PlaceOrder(ctx context.Context, cartID string, shipping address.Address) (*OrderDetail, error)

	// PlaceOrderWithSavedAddress places an order shipping to one of the
	// cart owner's stored addresses. The address is copied, not referenced.
	PlaceOrderWithSavedAddress(ctx context.Context, cartID string, addressID string) (*OrderDetail, error)

	// GetOrder retrieves an order with its items and payment, if any.
	GetOrder(ctx context.Context, orderID string) (*OrderDetail, error)

	// ListOrdersForUser returns a user's orders, newest first.
	ListOrdersForUser(ctx context.Context, userID string, limit int) ([]Order, error)

	// CancelOrder cancels a pending order and returns its stock.
	CancelOrder(ctx context.Context, orderID string) (*OrderDetail, error)
}

// Order is the order header. Everything except Status is a write-once
// snapshot taken at placement.
type Order struct {
	ID              pgtype.UUID
	UserID          pgtype.UUID
	CartID          pgtype.UUID
	Status          OrderStatus
	PlacedAt        time.Time
	Currency        string
	TotalAmount     decimal.Decimal
	ShippingAddress address.Address
	UpdatedAt       time.Time
}

// IsPending reports whether the order can still be paid or cancelled.
func (o Order) IsPending() bool {
	return o.Status == OrderStatusPending
}

// OrderItem is an immutable order line.
type OrderItem struct {
	ID          pgtype.UUID
	OrderID     pgtype.UUID
	VariantID   pgtype.UUID
	ProductName string
	SKU         string
	UnitPrice   decimal.Decimal
	Quantity    int32
	LineTotal   decimal.Decimal
}

// OrderDetail aggregates an order with its items and payment.
type OrderDetail struct {
	Order   Order
	Items   []OrderItem
	Payment *Payment
}
