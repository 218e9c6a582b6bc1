package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

const createCategory = `
INSERT INTO categories (name, slug, parent_id)
VALUES ($1, $2, $3)
RETURNING id, parent_id, name, slug, is_active
`

type CreateCategoryParams struct {
	Name     string
	Slug     string
	ParentID pgtype.UUID
}

func (q *Queries) CreateCategory(ctx context.Context, arg CreateCategoryParams) (Category, error) {
	row := q.db.QueryRow(ctx, createCategory, arg.Name, arg.Slug, arg.ParentID)
	var i Category
	err := row.Scan(&i.ID, &i.ParentID, &i.Name, &i.Slug, &i.IsActive)
	return i, translateError(err)
}

const getCategory = `
SELECT id, parent_id, name, slug, is_active
FROM categories
WHERE id = $1
`

func (q *Queries) GetCategory(ctx context.Context, id pgtype.UUID) (Category, error) {
	row := q.db.QueryRow(ctx, getCategory, id)
	var i Category
	err := row.Scan(&i.ID, &i.ParentID, &i.Name, &i.Slug, &i.IsActive)
	return i, translateError(err)
}

const deleteCategory = `
DELETE FROM categories WHERE id = $1
`

func (q *Queries) DeleteCategory(ctx context.Context, id pgtype.UUID) (int64, error) {
	result, err := q.db.Exec(ctx, deleteCategory, id)
	if err != nil {
		return 0, translateError(err)
	}
	return result.RowsAffected(), nil
}

const productColumns = `id, category_id, name, slug, description, base_price, is_active, created_at`

func scanProduct(row rowScanner) (Product, error) {
	var i Product
	err := row.Scan(
		&i.ID,
		&i.CategoryID,
		&i.Name,
		&i.Slug,
		&i.Description,
		&i.BasePrice,
		&i.IsActive,
		&i.CreatedAt,
	)
	return i, translateError(err)
}

const createProduct = `
INSERT INTO products (category_id, name, slug, description, base_price, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING ` + productColumns

type CreateProductParams struct {
	CategoryID  pgtype.UUID
	Name        string
	Slug        string
	Description string
	BasePrice   decimal.Decimal
	CreatedAt   time.Time
}

func (q *Queries) CreateProduct(ctx context.Context, arg CreateProductParams) (Product, error) {
	return scanProduct(q.db.QueryRow(ctx, createProduct,
		arg.CategoryID,
		arg.Name,
		arg.Slug,
		arg.Description,
		arg.BasePrice,
		arg.CreatedAt,
	))
}

const getProduct = `
SELECT ` + productColumns + `
FROM products
WHERE id = $1
`

func (q *Queries) GetProduct(ctx context.Context, id pgtype.UUID) (Product, error) {
	return scanProduct(q.db.QueryRow(ctx, getProduct, id))
}

const updateProduct = `
UPDATE products
SET name = COALESCE($2, name),
    base_price = COALESCE($3, base_price),
    is_active = COALESCE($4, is_active)
WHERE id = $1
RETURNING ` + productColumns

// UpdateProductParams leaves a column unchanged when its value is NULL.
type UpdateProductParams struct {
	ID        pgtype.UUID
	Name      pgtype.Text
	BasePrice decimal.NullDecimal
	IsActive  pgtype.Bool
}

func (q *Queries) UpdateProduct(ctx context.Context, arg UpdateProductParams) (Product, error) {
	return scanProduct(q.db.QueryRow(ctx, updateProduct, arg.ID, arg.Name, arg.BasePrice, arg.IsActive))
}

const deleteProduct = `
DELETE FROM products WHERE id = $1
`

func (q *Queries) DeleteProduct(ctx context.Context, id pgtype.UUID) (int64, error) {
	result, err := q.db.Exec(ctx, deleteProduct, id)
	if err != nil {
		return 0, translateError(err)
	}
	return result.RowsAffected(), nil
}

const variantColumns = `id, product_id, sku, attrs, price_override`

func scanVariant(row rowScanner) (ProductVariant, error) {
	var i ProductVariant
	err := row.Scan(&i.ID, &i.ProductID, &i.Sku, &i.Attrs, &i.PriceOverride)
	return i, translateError(err)
}

const createVariant = `
INSERT INTO product_variants (product_id, sku, attrs, price_override)
VALUES ($1, $2, $3, $4)
RETURNING ` + variantColumns

type CreateVariantParams struct {
	ProductID     pgtype.UUID
	Sku           string
	Attrs         []byte
	PriceOverride decimal.NullDecimal
}

func (q *Queries) CreateVariant(ctx context.Context, arg CreateVariantParams) (ProductVariant, error) {
	return scanVariant(q.db.QueryRow(ctx, createVariant, arg.ProductID, arg.Sku, arg.Attrs, arg.PriceOverride))
}

const getVariant = `
SELECT ` + variantColumns + `
FROM product_variants
WHERE id = $1
`

func (q *Queries) GetVariant(ctx context.Context, id pgtype.UUID) (ProductVariant, error) {
	return scanVariant(q.db.QueryRow(ctx, getVariant, id))
}

const setVariantPriceOverride = `
UPDATE product_variants
SET price_override = $2
WHERE id = $1
RETURNING ` + variantColumns

type SetVariantPriceOverrideParams struct {
	ID            pgtype.UUID
	PriceOverride decimal.NullDecimal
}

func (q *Queries) SetVariantPriceOverride(ctx context.Context, arg SetVariantPriceOverrideParams) (ProductVariant, error) {
	return scanVariant(q.db.QueryRow(ctx, setVariantPriceOverride, arg.ID, arg.PriceOverride))
}

const deleteVariant = `
DELETE FROM product_variants WHERE id = $1
`

func (q *Queries) DeleteVariant(ctx context.Context, id pgtype.UUID) (int64, error) {
	result, err := q.db.Exec(ctx, deleteVariant, id)
	if err != nil {
		return 0, translateError(err)
	}
	return result.RowsAffected(), nil
}

const getVariantPricing = `
SELECT v.id, v.product_id, v.sku, p.name, p.base_price, v.price_override, p.is_active
FROM product_variants v
JOIN products p ON p.id = v.product_id
WHERE v.id = $1
`

type GetVariantPricingRow struct {
	VariantID     pgtype.UUID
	ProductID     pgtype.UUID
	Sku           string
	ProductName   string
	BasePrice     decimal.Decimal
	PriceOverride decimal.NullDecimal
	ProductActive bool
}

// GetVariantPricing reads the live price inputs of a variant.
func (q *Queries) GetVariantPricing(ctx context.Context, variantID pgtype.UUID) (GetVariantPricingRow, error) {
	row := q.db.QueryRow(ctx, getVariantPricing, variantID)
	var i GetVariantPricingRow
	err := row.Scan(
		&i.VariantID,
		&i.ProductID,
		&i.Sku,
		&i.ProductName,
		&i.BasePrice,
		&i.PriceOverride,
		&i.ProductActive,
	)
	return i, translateError(err)
}
