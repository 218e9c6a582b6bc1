package domain

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// =============================================================================
// CART DOMAIN ERRORS
// =============================================================================

var (
	ErrCartNotFound     = &Error{Code: ENOTFOUND, Message: "Cart not found"}
	ErrCartItemNotFound = &Error{Code: ENOTFOUND, Message: "Cart item not found"}
	ErrCartNotActive    = &Error{Code: ECONFLICT, Message: "Cart is not active"}
	ErrInvalidQuantity  = &Error{Code: EINVALID, Message: "Quantity must be at least 1"}
	ErrEmptyCart        = &Error{Code: EINVALID, Message: "Cart is empty"}
	ErrCartNotIdle      = &Error{Code: ECONFLICT, Message: "Cart was used recently"}
)

// CartStatus is the lifecycle state of a cart.
type CartStatus string

const (
	CartStatusActive    CartStatus = "active"
	CartStatusConverted CartStatus = "converted"
	CartStatusAbandoned CartStatus = "abandoned"
)

// CartService manages the single active cart each user may hold.
type CartService interface {
	// GetOrCreateActiveCart returns the user's active cart, creating it on
	// first use. Concurrent callers for one user all receive the same cart.
	GetOrCreateActiveCart(ctx context.Context, userID string) (*Cart, error)

	GetCart(ctx context.Context, cartID string) (*Cart, error)

	// AddItem adds a variant at its current price. Adding a variant already
	// in the cart increases its quantity and keeps the first price snapshot.
	AddItem(ctx context.Context, cartID string, variantID string, quantity int) (*CartSummary, error)

	// UpdateQuantity sets the quantity of a line. Quantities below 1 are
	// rejected; use RemoveItem to drop a line.
	UpdateQuantity(ctx context.Context, cartID string, variantID string, quantity int) (*CartSummary, error)

	RemoveItem(ctx context.Context, cartID string, variantID string) (*CartSummary, error)

	// GetCartSummary returns a cart with its lines and subtotal.
	GetCartSummary(ctx context.Context, cartID string) (*CartSummary, error)

	// AbandonCart moves an active cart to abandoned. Called by whatever
	// expiry policy runs outside this service.
	AbandonCart(ctx context.Context, cartID string) (*Cart, error)

	// AbandonIdleCart abandons the cart only if it is still active and was
	// last changed before idleSince, checked under the cart's row lock.
	// A cart touched since returns ErrCartNotIdle.
	AbandonIdleCart(ctx context.Context, cartID string, idleSince time.Time) (*Cart, error)
}

// Cart represents a lightweight cart view model.
type Cart struct {
	ID        pgtype.UUID
	UserID    pgtype.UUID
	Status    CartStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive reports whether the cart may still be mutated.
func (c Cart) IsActive() bool {
	return c.Status == CartStatusActive
}

// CartSummary aggregates cart information with items and calculated totals.
type CartSummary struct {
	Cart      Cart
	Items     []CartItem
	Subtotal  decimal.Decimal
	ItemCount int
}

// CartItem is a cart line. UnitPrice is the snapshot taken when the variant
// was first added; SKU and ProductName are live catalog values for display.
type CartItem struct {
	ID          pgtype.UUID
	VariantID   pgtype.UUID
	SKU         string
	ProductName string
	Quantity    int32
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
	AddedAt     time.Time
}
