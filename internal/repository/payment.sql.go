package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

const paymentColumns = `id, order_id, provider, amount, status, txn_ref, paid_at, created_at, updated_at`

func scanPayment(row rowScanner) (Payment, error) {
	var i Payment
	err := row.Scan(
		&i.ID,
		&i.OrderID,
		&i.Provider,
		&i.Amount,
		&i.Status,
		&i.TxnRef,
		&i.PaidAt,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, translateError(err)
}

// A second payment for the same order fails on payments_order_id_key.
const createPayment = `
INSERT INTO payments (order_id, provider, amount, status, created_at, updated_at)
VALUES ($1, $2, $3, 'initiated', $4, $4)
RETURNING ` + paymentColumns

type CreatePaymentParams struct {
	OrderID   pgtype.UUID
	Provider  string
	Amount    decimal.Decimal
	CreatedAt time.Time
}

func (q *Queries) CreatePayment(ctx context.Context, arg CreatePaymentParams) (Payment, error) {
	return scanPayment(q.db.QueryRow(ctx, createPayment, arg.OrderID, arg.Provider, arg.Amount, arg.CreatedAt))
}

const getPayment = `
SELECT ` + paymentColumns + `
FROM payments
WHERE id = $1
`

func (q *Queries) GetPayment(ctx context.Context, id pgtype.UUID) (Payment, error) {
	return scanPayment(q.db.QueryRow(ctx, getPayment, id))
}

const getPaymentForUpdate = `
SELECT ` + paymentColumns + `
FROM payments
WHERE id = $1
FOR UPDATE
`

func (q *Queries) GetPaymentForUpdate(ctx context.Context, id pgtype.UUID) (Payment, error) {
	return scanPayment(q.db.QueryRow(ctx, getPaymentForUpdate, id))
}

const getPaymentByOrder = `
SELECT ` + paymentColumns + `
FROM payments
WHERE order_id = $1
`

func (q *Queries) GetPaymentByOrder(ctx context.Context, orderID pgtype.UUID) (Payment, error) {
	return scanPayment(q.db.QueryRow(ctx, getPaymentByOrder, orderID))
}

const updatePaymentStatus = `
UPDATE payments
SET status = $2,
    txn_ref = COALESCE($3, txn_ref),
    paid_at = COALESCE($4, paid_at),
    updated_at = $5
WHERE id = $1
RETURNING ` + paymentColumns

type UpdatePaymentStatusParams struct {
	ID        pgtype.UUID
	Status    string
	TxnRef    pgtype.Text
	PaidAt    pgtype.Timestamptz
	UpdatedAt time.Time
}

func (q *Queries) UpdatePaymentStatus(ctx context.Context, arg UpdatePaymentStatusParams) (Payment, error) {
	return scanPayment(q.db.QueryRow(ctx, updatePaymentStatus,
		arg.ID,
		arg.Status,
		arg.TxnRef,
		arg.PaidAt,
		arg.UpdatedAt,
	))
}
