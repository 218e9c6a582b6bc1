package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

const inventoryColumns = `variant_id, qty_available, updated_at`

func scanInventory(row rowScanner) (Inventory, error) {
	var i Inventory
	err := row.Scan(&i.VariantID, &i.QtyAvailable, &i.UpdatedAt)
	return i, translateError(err)
}

const createInventory = `
INSERT INTO inventory (variant_id, qty_available, updated_at)
VALUES ($1, $2, $3)
RETURNING ` + inventoryColumns

type CreateInventoryParams struct {
	VariantID    pgtype.UUID
	QtyAvailable int32
	UpdatedAt    time.Time
}

func (q *Queries) CreateInventory(ctx context.Context, arg CreateInventoryParams) (Inventory, error) {
	return scanInventory(q.db.QueryRow(ctx, createInventory, arg.VariantID, arg.QtyAvailable, arg.UpdatedAt))
}

const getInventory = `
SELECT ` + inventoryColumns + `
FROM inventory
WHERE variant_id = $1
`

func (q *Queries) GetInventory(ctx context.Context, variantID pgtype.UUID) (Inventory, error) {
	return scanInventory(q.db.QueryRow(ctx, getInventory, variantID))
}

// The check and the decrement are one statement: the row lock taken by
// UPDATE serializes concurrent reservations of the same variant, and the
// WHERE clause is re-evaluated against the latest committed quantity.
const reserveStock = `
UPDATE inventory
SET qty_available = qty_available - $2,
    updated_at = $3
WHERE variant_id = $1
  AND qty_available >= $2
RETURNING ` + inventoryColumns

type ReserveStockParams struct {
	VariantID pgtype.UUID
	Quantity  int32
	UpdatedAt time.Time
}

// ReserveStock returns pgx.ErrNoRows when the variant has no inventory row
// or fewer than Quantity units available.
func (q *Queries) ReserveStock(ctx context.Context, arg ReserveStockParams) (Inventory, error) {
	return scanInventory(q.db.QueryRow(ctx, reserveStock, arg.VariantID, arg.Quantity, arg.UpdatedAt))
}

const releaseStock = `
UPDATE inventory
SET qty_available = qty_available + $2,
    updated_at = $3
WHERE variant_id = $1
RETURNING ` + inventoryColumns

type ReleaseStockParams struct {
	VariantID pgtype.UUID
	Quantity  int32
	UpdatedAt time.Time
}

func (q *Queries) ReleaseStock(ctx context.Context, arg ReleaseStockParams) (Inventory, error) {
	return scanInventory(q.db.QueryRow(ctx, releaseStock, arg.VariantID, arg.Quantity, arg.UpdatedAt))
}

const setStock = `
UPDATE inventory
SET qty_available = $2,
    updated_at = $3
WHERE variant_id = $1
RETURNING ` + inventoryColumns

type SetStockParams struct {
	VariantID    pgtype.UUID
	QtyAvailable int32
	UpdatedAt    time.Time
}

func (q *Queries) SetStock(ctx context.Context, arg SetStockParams) (Inventory, error) {
	return scanInventory(q.db.QueryRow(ctx, setStock, arg.VariantID, arg.QtyAvailable, arg.UpdatedAt))
}
