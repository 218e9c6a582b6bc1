package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

const cartColumns = `id, user_id, status, created_at, updated_at`

func scanCart(row rowScanner) (Cart, error) {
	var i Cart
	err := row.Scan(&i.ID, &i.UserID, &i.Status, &i.CreatedAt, &i.UpdatedAt)
	return i, translateError(err)
}

const getActiveCartByUser = `
SELECT ` + cartColumns + `
FROM carts
WHERE user_id = $1 AND status = 'active'
`

func (q *Queries) GetActiveCartByUser(ctx context.Context, userID pgtype.UUID) (Cart, error) {
	return scanCart(q.db.QueryRow(ctx, getActiveCartByUser, userID))
}

// A concurrent insert for the same user fails on uniq_active_cart_per_user.
const createCart = `
INSERT INTO carts (user_id, status, created_at, updated_at)
VALUES ($1, 'active', $2, $2)
RETURNING ` + cartColumns

type CreateCartParams struct {
	UserID    pgtype.UUID
	CreatedAt time.Time
}

func (q *Queries) CreateCart(ctx context.Context, arg CreateCartParams) (Cart, error) {
	return scanCart(q.db.QueryRow(ctx, createCart, arg.UserID, arg.CreatedAt))
}

const getCart = `
SELECT ` + cartColumns + `
FROM carts
WHERE id = $1
`

func (q *Queries) GetCart(ctx context.Context, id pgtype.UUID) (Cart, error) {
	return scanCart(q.db.QueryRow(ctx, getCart, id))
}

const getCartForUpdate = `
SELECT ` + cartColumns + `
FROM carts
WHERE id = $1
FOR UPDATE
`

// GetCartForUpdate locks the cart row until the surrounding transaction ends.
func (q *Queries) GetCartForUpdate(ctx context.Context, id pgtype.UUID) (Cart, error) {
	return scanCart(q.db.QueryRow(ctx, getCartForUpdate, id))
}

const touchCart = `
UPDATE carts SET updated_at = $2 WHERE id = $1
`

type TouchCartParams struct {
	ID        pgtype.UUID
	UpdatedAt time.Time
}

func (q *Queries) TouchCart(ctx context.Context, arg TouchCartParams) error {
	_, err := q.db.Exec(ctx, touchCart, arg.ID, arg.UpdatedAt)
	return translateError(err)
}

const updateCartStatus = `
UPDATE carts
SET status = $2, updated_at = $3
WHERE id = $1
RETURNING ` + cartColumns

type UpdateCartStatusParams struct {
	ID        pgtype.UUID
	Status    string
	UpdatedAt time.Time
}

func (q *Queries) UpdateCartStatus(ctx context.Context, arg UpdateCartStatusParams) (Cart, error) {
	return scanCart(q.db.QueryRow(ctx, updateCartStatus, arg.ID, arg.Status, arg.UpdatedAt))
}

const cartItemColumns = `id, cart_id, variant_id, quantity, unit_price, added_at`

func scanCartItem(row rowScanner) (CartItem, error) {
	var i CartItem
	err := row.Scan(&i.ID, &i.CartID, &i.VariantID, &i.Quantity, &i.UnitPrice, &i.AddedAt)
	return i, translateError(err)
}

// An existing line keeps its unit_price; only the quantity grows.
const upsertCartItem = `
INSERT INTO cart_items (cart_id, variant_id, quantity, unit_price, added_at)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (cart_id, variant_id)
DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
RETURNING ` + cartItemColumns

type UpsertCartItemParams struct {
	CartID    pgtype.UUID
	VariantID pgtype.UUID
	Quantity  int32
	UnitPrice decimal.Decimal
	AddedAt   time.Time
}

func (q *Queries) UpsertCartItem(ctx context.Context, arg UpsertCartItemParams) (CartItem, error) {
	return scanCartItem(q.db.QueryRow(ctx, upsertCartItem,
		arg.CartID,
		arg.VariantID,
		arg.Quantity,
		arg.UnitPrice,
		arg.AddedAt,
	))
}

const updateCartItemQuantity = `
UPDATE cart_items
SET quantity = $3
WHERE cart_id = $1 AND variant_id = $2
RETURNING ` + cartItemColumns

type UpdateCartItemQuantityParams struct {
	CartID    pgtype.UUID
	VariantID pgtype.UUID
	Quantity  int32
}

func (q *Queries) UpdateCartItemQuantity(ctx context.Context, arg UpdateCartItemQuantityParams) (CartItem, error) {
	return scanCartItem(q.db.QueryRow(ctx, updateCartItemQuantity, arg.CartID, arg.VariantID, arg.Quantity))
}

const deleteCartItem = `
DELETE FROM cart_items WHERE cart_id = $1 AND variant_id = $2
`

type DeleteCartItemParams struct {
	CartID    pgtype.UUID
	VariantID pgtype.UUID
}

func (q *Queries) DeleteCartItem(ctx context.Context, arg DeleteCartItemParams) (int64, error) {
	result, err := q.db.Exec(ctx, deleteCartItem, arg.CartID, arg.VariantID)
	if err != nil {
		return 0, translateError(err)
	}
	return result.RowsAffected(), nil
}

// Lines come back in variant order so stock rows are always locked in the
// same order by concurrent placements.
const listCartItems = `
SELECT ci.id, ci.cart_id, ci.variant_id, ci.quantity, ci.unit_price, ci.added_at,
       v.sku, p.name
FROM cart_items ci
JOIN product_variants v ON v.id = ci.variant_id
JOIN products p ON p.id = v.product_id
WHERE ci.cart_id = $1
ORDER BY ci.variant_id
`

type ListCartItemsRow struct {
	ID          pgtype.UUID
	CartID      pgtype.UUID
	VariantID   pgtype.UUID
	Quantity    int32
	UnitPrice   decimal.Decimal
	AddedAt     time.Time
	Sku         string
	ProductName string
}

func (q *Queries) ListCartItems(ctx context.Context, cartID pgtype.UUID) ([]ListCartItemsRow, error) {
	rows, err := q.db.Query(ctx, listCartItems, cartID)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()
	var items []ListCartItemsRow
	for rows.Next() {
		var i ListCartItemsRow
		if err := rows.Scan(
			&i.ID,
			&i.CartID,
			&i.VariantID,
			&i.Quantity,
			&i.UnitPrice,
			&i.AddedAt,
			&i.Sku,
			&i.ProductName,
		); err != nil {
			return nil, translateError(err)
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err)
	}
	return items, nil
}

// Abandonment sweeps read the oldest idle carts first.
const listIdleCarts = `
SELECT id
FROM carts
WHERE status = 'active' AND updated_at < $1
ORDER BY updated_at
LIMIT $2
`

type ListIdleCartsParams struct {
	UpdatedBefore time.Time
	Limit         int32
}

func (q *Queries) ListIdleCarts(ctx context.Context, arg ListIdleCartsParams) ([]pgtype.UUID, error) {
	rows, err := q.db.Query(ctx, listIdleCarts, arg.UpdatedBefore, arg.Limit)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()
	var items []pgtype.UUID
	for rows.Next() {
		var id pgtype.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, translateError(err)
		}
		items = append(items, id)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err)
	}
	return items, nil
}
