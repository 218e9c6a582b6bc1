package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

const orderColumns = `id, user_id, cart_id, status, placed_at, currency, total_amount, shipping_address, updated_at`

func scanOrder(row rowScanner) (Order, error) {
	var i Order
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.CartID,
		&i.Status,
		&i.PlacedAt,
		&i.Currency,
		&i.TotalAmount,
		&i.ShippingAddress,
		&i.UpdatedAt,
	)
	return i, translateError(err)
}

const createOrder = `
INSERT INTO orders (user_id, cart_id, status, placed_at, currency, total_amount, shipping_address, updated_at)
VALUES ($1, $2, 'pending', $3, $4, $5, $6, $3)
RETURNING ` + orderColumns

type CreateOrderParams struct {
	UserID          pgtype.UUID
	CartID          pgtype.UUID
	PlacedAt        time.Time
	Currency        string
	TotalAmount     decimal.Decimal
	ShippingAddress []byte
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, createOrder,
		arg.UserID,
		arg.CartID,
		arg.PlacedAt,
		arg.Currency,
		arg.TotalAmount,
		arg.ShippingAddress,
	))
}

const getOrder = `
SELECT ` + orderColumns + `
FROM orders
WHERE id = $1
`

func (q *Queries) GetOrder(ctx context.Context, id pgtype.UUID) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getOrder, id))
}

const getOrderForUpdate = `
SELECT ` + orderColumns + `
FROM orders
WHERE id = $1
FOR UPDATE
`

func (q *Queries) GetOrderForUpdate(ctx context.Context, id pgtype.UUID) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, getOrderForUpdate, id))
}

const listOrdersByUser = `
SELECT ` + orderColumns + `
FROM orders
WHERE user_id = $1
ORDER BY placed_at DESC, id
LIMIT $2
`

type ListOrdersByUserParams struct {
	UserID pgtype.UUID
	Limit  int32
}

func (q *Queries) ListOrdersByUser(ctx context.Context, arg ListOrdersByUserParams) ([]Order, error) {
	rows, err := q.db.Query(ctx, listOrdersByUser, arg.UserID, arg.Limit)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()
	var items []Order
	for rows.Next() {
		i, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err)
	}
	return items, nil
}

const updateOrderStatus = `
UPDATE orders
SET status = $2, updated_at = $3
WHERE id = $1
RETURNING ` + orderColumns

type UpdateOrderStatusParams struct {
	ID        pgtype.UUID
	Status    string
	UpdatedAt time.Time
}

func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (Order, error) {
	return scanOrder(q.db.QueryRow(ctx, updateOrderStatus, arg.ID, arg.Status, arg.UpdatedAt))
}

const orderItemColumns = `id, order_id, variant_id, product_name, sku, unit_price, quantity, line_total`

func scanOrderItem(row rowScanner) (OrderItem, error) {
	var i OrderItem
	err := row.Scan(
		&i.ID,
		&i.OrderID,
		&i.VariantID,
		&i.ProductName,
		&i.Sku,
		&i.UnitPrice,
		&i.Quantity,
		&i.LineTotal,
	)
	return i, translateError(err)
}

const createOrderItem = `
INSERT INTO order_items (order_id, variant_id, product_name, sku, unit_price, quantity, line_total)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING ` + orderItemColumns

type CreateOrderItemParams struct {
	OrderID     pgtype.UUID
	VariantID   pgtype.UUID
	ProductName string
	Sku         string
	UnitPrice   decimal.Decimal
	Quantity    int32
	LineTotal   decimal.Decimal
}

func (q *Queries) CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error) {
	return scanOrderItem(q.db.QueryRow(ctx, createOrderItem,
		arg.OrderID,
		arg.VariantID,
		arg.ProductName,
		arg.Sku,
		arg.UnitPrice,
		arg.Quantity,
		arg.LineTotal,
	))
}

const listOrderItems = `
SELECT ` + orderItemColumns + `
FROM order_items
WHERE order_id = $1
ORDER BY variant_id
`

func (q *Queries) ListOrderItems(ctx context.Context, orderID pgtype.UUID) ([]OrderItem, error) {
	rows, err := q.db.Query(ctx, listOrderItems, orderID)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()
	var items []OrderItem
	for rows.Next() {
		i, err := scanOrderItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err)
	}
	return items, nil
}
