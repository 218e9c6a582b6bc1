package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/dukerupert/mercato/internal/domain"
	"github.com/dukerupert/mercato/internal/repository"
	"github.com/jackc/pgx/v5/pgtype"
)

type inventoryService struct {
	store repository.Store
	deps  Deps
}

// NewInventoryService creates the stock reservation unit. Reserve and
// Release are the same conditional updates PlaceOrder and CancelOrder run
// inside their own transactions.
func NewInventoryService(store repository.Store, deps Deps) domain.InventoryService {
	return &inventoryService{
		store: store,
		deps:  deps.withDefaults(),
	}
}

func (s *inventoryService) Reserve(ctx context.Context, variantID string, quantity int) (*domain.StockLevel, error) {
	const op = "inventory.reserve"

	id, err := parseUUID(op, "variant_id", variantID)
	if err != nil {
		return nil, err
	}
	qty, err := toQuantity(op, quantity)
	if err != nil {
		return nil, err
	}

	var level repository.Inventory
	err = s.deps.run(ctx, op, func(ctx context.Context) error {
		var err error
		level, err = reserve(ctx, s.store, op, id, "", qty, s.deps.Clock())
		return err
	})
	if err != nil {
		if isInsufficient(err) {
			s.deps.Metrics.RecordReservationFailure()
			err = withSKU(ctx, s.store, err)
		}
		return nil, s.deps.fail(op, err, "variant_id", variantID)
	}

	return toStockLevel(level), nil
}

func (s *inventoryService) Release(ctx context.Context, variantID string, quantity int) (*domain.StockLevel, error) {
	const op = "inventory.release"

	id, err := parseUUID(op, "variant_id", variantID)
	if err != nil {
		return nil, err
	}
	qty, err := toQuantity(op, quantity)
	if err != nil {
		return nil, err
	}

	var level repository.Inventory
	err = s.deps.run(ctx, op, func(ctx context.Context) error {
		var err error
		level, err = release(ctx, s.store, op, id, qty, s.deps.Clock())
		return err
	})
	if err != nil {
		return nil, s.deps.fail(op, err, "variant_id", variantID)
	}

	s.deps.Metrics.RecordStockReleased(int(qty))
	return toStockLevel(level), nil
}

func (s *inventoryService) GetStock(ctx context.Context, variantID string) (*domain.StockLevel, error) {
	const op = "inventory.get"

	id, err := parseUUID(op, "variant_id", variantID)
	if err != nil {
		return nil, err
	}

	level, err := s.store.GetInventory(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.WithOp(domain.ErrInventoryNotFound, op)
		}
		return nil, s.deps.fail(op, err, "variant_id", variantID)
	}

	return toStockLevel(level), nil
}

// SetStock overwrites the available quantity. Zero is allowed.
func (s *inventoryService) SetStock(ctx context.Context, variantID string, quantity int) (*domain.StockLevel, error) {
	const op = "inventory.set"

	id, err := parseUUID(op, "variant_id", variantID)
	if err != nil {
		return nil, err
	}
	if quantity < 0 || quantity > math.MaxInt32 {
		return nil, domain.NewValidationError(op, "quantity", "must be zero or more")
	}

	level, err := s.store.SetStock(ctx, repository.SetStockParams{
		VariantID:    id,
		QtyAvailable: int32(quantity),
		UpdatedAt:    s.deps.Clock(),
	})
	if err != nil {
		if isNoRows(err) {
			return nil, domain.WithOp(domain.ErrInventoryNotFound, op)
		}
		return nil, s.deps.fail(op, err, "variant_id", variantID)
	}

	s.deps.Logger.Info("Stock level set", "variant_id", variantID, "qty_available", quantity)
	return toStockLevel(level), nil
}

// reserve decrements stock only if enough is available. The decrement and
// the availability check are one statement, so two callers can never both
// take the last unit. On failure the current level is read back to tell a
// missing inventory row from a short one.
func reserve(ctx context.Context, q repository.Querier, op string, variantID pgtype.UUID, sku string, qty int32, now time.Time) (repository.Inventory, error) {
	level, err := q.ReserveStock(ctx, repository.ReserveStockParams{
		VariantID: variantID,
		Quantity:  qty,
		UpdatedAt: now,
	})
	if err == nil {
		return level, nil
	}
	if !isNoRows(err) {
		return repository.Inventory{}, fmt.Errorf("failed to reserve stock: %w", err)
	}

	current, err := q.GetInventory(ctx, variantID)
	if err != nil {
		if isNoRows(err) {
			return repository.Inventory{}, domain.WithOp(domain.ErrInventoryNotFound, op)
		}
		return repository.Inventory{}, fmt.Errorf("failed to read stock level: %w", err)
	}

	return repository.Inventory{}, &domain.Error{
		Code:    domain.ECONFLICT,
		Op:      op,
		Message: domain.ErrInsufficientStock.Message,
		Err: &domain.InsufficientStockError{
			VariantID: uuidString(variantID),
			SKU:       sku,
			Requested: qty,
			Available: current.QtyAvailable,
		},
	}
}

// release returns units to stock.
func release(ctx context.Context, q repository.Querier, op string, variantID pgtype.UUID, qty int32, now time.Time) (repository.Inventory, error) {
	level, err := q.ReleaseStock(ctx, repository.ReleaseStockParams{
		VariantID: variantID,
		Quantity:  qty,
		UpdatedAt: now,
	})
	if err != nil {
		if isNoRows(err) {
			return repository.Inventory{}, domain.WithOp(domain.ErrInventoryNotFound, op)
		}
		return repository.Inventory{}, fmt.Errorf("failed to release stock: %w", err)
	}
	return level, nil
}

func isInsufficient(err error) bool {
	_, ok := asInsufficient(err)
	return ok
}

// withSKU names the variant by SKU when the caller only had its ID.
func withSKU(ctx context.Context, q repository.Querier, err error) error {
	ise, ok := asInsufficient(err)
	if !ok || ise.SKU != "" {
		return err
	}
	var id pgtype.UUID
	if id.Scan(ise.VariantID) != nil {
		return err
	}
	if v, verr := q.GetVariant(ctx, id); verr == nil {
		ise.SKU = v.Sku
	}
	return err
}
