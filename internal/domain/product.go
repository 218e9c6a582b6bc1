package domain

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// =============================================================================
// CATALOG DOMAIN ERRORS
// =============================================================================

var (
	ErrCategoryNotFound = &Error{Code: ENOTFOUND, Message: "Category not found"}
	ErrProductNotFound  = &Error{Code: ENOTFOUND, Message: "Product not found"}
	ErrVariantNotFound  = &Error{Code: ENOTFOUND, Message: "Product variant not found"}
	ErrProductInactive  = &Error{Code: ECONFLICT, Message: "Product is not available for sale"}
	ErrDuplicateSKU     = &Error{Code: ECONFLICT, Message: "SKU already exists"}
	ErrDuplicateSlug    = &Error{Code: ECONFLICT, Message: "Slug already exists"}
	ErrDuplicateName    = &Error{Code: ECONFLICT, Message: "Name already exists"}
	ErrInvalidPrice     = &Error{Code: EINVALID, Message: "Price must be non-negative with at most two decimal places"}
)

// =============================================================================
// CATALOG DOMAIN TYPES
// =============================================================================

// Category groups products. Deleting a parent detaches its children.
type Category struct {
	ID       pgtype.UUID
	ParentID pgtype.UUID
	Name     string
	Slug     string
	IsActive bool
}

// Product is a sellable item. Its variants carry the SKUs.
type Product struct {
	ID          pgtype.UUID
	CategoryID  pgtype.UUID
	Name        string
	Slug        string
	Description string
	BasePrice   decimal.Decimal
	IsActive    bool
	CreatedAt   time.Time
}

// Variant is a concrete SKU of a product.
type Variant struct {
	ID            pgtype.UUID
	ProductID     pgtype.UUID
	SKU           string
	Attrs         map[string]string
	PriceOverride decimal.NullDecimal
}

// EffectivePrice is the price override when set, else the product base price.
func (v Variant) EffectivePrice(basePrice decimal.Decimal) decimal.Decimal {
	if v.PriceOverride.Valid {
		return v.PriceOverride.Decimal
	}
	return basePrice
}

type CreateCategoryParams struct {
	Name     string
	Slug     string
	ParentID string // optional
}

type CreateProductParams struct {
	CategoryID  string
	Name        string
	Slug        string
	Description string
	BasePrice   decimal.Decimal
}

// UpdateProductParams changes only the non-nil fields.
type UpdateProductParams struct {
	Name      *string
	BasePrice *decimal.Decimal
	IsActive  *bool
}

type CreateVariantParams struct {
	ProductID     string
	SKU           string
	Attrs         map[string]string
	PriceOverride decimal.NullDecimal
	InitialStock  int
}

// CatalogService is the write surface of the catalog. Orders and carts only
// read prices and stock from it.
type CatalogService interface {
	CreateCategory(ctx context.Context, params CreateCategoryParams) (*Category, error)
	CreateProduct(ctx context.Context, params CreateProductParams) (*Product, error)
	GetProduct(ctx context.Context, productID string) (*Product, error)
	UpdateProduct(ctx context.Context, productID string, params UpdateProductParams) (*Product, error)

	// CreateVariant creates the variant and its inventory row together.
	CreateVariant(ctx context.Context, params CreateVariantParams) (*Variant, error)
	GetVariant(ctx context.Context, variantID string) (*Variant, error)
	SetPriceOverride(ctx context.Context, variantID string, price decimal.NullDecimal) (*Variant, error)

	// Deletes fail with ErrReferentialIntegrity while cart or order lines
	// (or, for categories, products) still reference the row.
	DeleteCategory(ctx context.Context, categoryID string) error
	DeleteProduct(ctx context.Context, productID string) error
	DeleteVariant(ctx context.Context, variantID string) error
}
