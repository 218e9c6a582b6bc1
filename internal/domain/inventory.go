package domain

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

var (
	ErrInsufficientStock = &Error{Code: ECONFLICT, Message: "Insufficient stock"}
	ErrInventoryNotFound = &Error{Code: ENOTFOUND, Message: "Inventory record not found"}
)

// InsufficientStockError names the variant whose reservation failed.
// It matches ErrInsufficientStock via errors.Is.
type InsufficientStockError struct {
	VariantID string
	SKU       string
	Requested int32
	Available int32
}

func (e *InsufficientStockError) Error() string {
	target := "SKU " + e.SKU
	if e.SKU == "" {
		target = "variant " + e.VariantID
	}
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d", target, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error {
	return ErrInsufficientStock
}

// StockLevel is the available quantity of one variant.
type StockLevel struct {
	VariantID    pgtype.UUID
	QtyAvailable int32
	UpdatedAt    time.Time
}

// InventoryService reserves and releases stock. Every call is a single
// atomic statement against the inventory row, so concurrent reservations
// on one variant can never overdraw it.
type InventoryService interface {
	// Reserve decrements available stock by quantity, or fails with
	// InsufficientStockError leaving stock untouched.
	Reserve(ctx context.Context, variantID string, quantity int) (*StockLevel, error)

	// Release returns quantity units to stock. There is no upper bound.
	Release(ctx context.Context, variantID string, quantity int) (*StockLevel, error)

	GetStock(ctx context.Context, variantID string) (*StockLevel, error)

	// SetStock overwrites the available quantity (catalog restock).
	SetStock(ctx context.Context, variantID string, quantity int) (*StockLevel, error)
}
