package service

import (
	"context"
	"fmt"
	"time"

	"github.com/dukerupert/mercato/internal/domain"
	"github.com/dukerupert/mercato/internal/repository"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

type cartService struct {
	store repository.Store
	deps  Deps
}

// NewCartService creates a new CartService instance
func NewCartService(store repository.Store, deps Deps) domain.CartService {
	return &cartService{
		store: store,
		deps:  deps.withDefaults(),
	}
}

// GetOrCreateActiveCart returns the user's active cart, creating it on first
// use. When a concurrent request wins the insert, the unique index on active
// carts rejects ours and the lookup runs again.
func (s *cartService) GetOrCreateActiveCart(ctx context.Context, userID string) (*domain.Cart, error) {
	const op = "cart.get_or_create"

	uid, err := parseUUID(op, "user_id", userID)
	if err != nil {
		return nil, err
	}

	var (
		cart    repository.Cart
		created bool
	)
	err = s.deps.run(ctx, op, func(ctx context.Context) error {
		existing, err := s.store.GetActiveCartByUser(ctx, uid)
		if err == nil {
			cart, created = existing, false
			return nil
		}
		if !isNoRows(err) {
			return fmt.Errorf("failed to get active cart: %w", err)
		}

		fresh, err := s.store.CreateCart(ctx, repository.CreateCartParams{
			UserID:    uid,
			CreatedAt: s.deps.Clock(),
		})
		if err != nil {
			switch {
			case repository.IsConstraint(err, repository.ErrUniqueViolation, repository.ConstraintActiveCartPerUser):
				return domain.WithOp(domain.ErrConflictRetry, op)
			case repository.IsConstraint(err, repository.ErrForeignKeyViolation, ""):
				return domain.WithOp(domain.ErrUserNotFound, op)
			}
			return fmt.Errorf("failed to create cart: %w", err)
		}
		cart, created = fresh, true
		return nil
	})
	if err != nil {
		return nil, s.deps.fail(op, err, "user_id", userID)
	}

	if created {
		s.deps.Metrics.RecordCartCreated()
		s.deps.Logger.Info("Cart created", "cart_id", uuidString(cart.ID), "user_id", userID)
	}

	c := toCart(cart)
	return &c, nil
}

func (s *cartService) GetCart(ctx context.Context, cartID string) (*domain.Cart, error) {
	const op = "cart.get"

	id, err := parseUUID(op, "cart_id", cartID)
	if err != nil {
		return nil, err
	}

	cart, err := s.store.GetCart(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.WithOp(domain.ErrCartNotFound, op)
		}
		return nil, s.deps.fail(op, err, "cart_id", cartID)
	}

	c := toCart(cart)
	return &c, nil
}

// AddItem adds a variant to the cart at its current effective price. Adding
// a variant that is already in the cart raises its quantity and keeps the
// price captured when it was first added.
func (s *cartService) AddItem(ctx context.Context, cartID string, variantID string, quantity int) (*domain.CartSummary, error) {
	const op = "cart.add_item"

	vid, err := parseUUID(op, "variant_id", variantID)
	if err != nil {
		return nil, err
	}
	qty, err := toQuantity(op, quantity)
	if err != nil {
		return nil, err
	}

	summary, err := s.mutate(ctx, op, cartID, func(ctx context.Context, q repository.Querier, cart repository.Cart, now time.Time) error {
		pricing, err := q.GetVariantPricing(ctx, vid)
		if err != nil {
			if isNoRows(err) {
				return domain.WithOp(domain.ErrVariantNotFound, op)
			}
			return fmt.Errorf("failed to get variant pricing: %w", err)
		}
		if !pricing.ProductActive {
			return domain.WithOp(domain.ErrProductInactive, op)
		}

		unitPrice := pricing.BasePrice
		if pricing.PriceOverride.Valid {
			unitPrice = pricing.PriceOverride.Decimal
		}

		_, err = q.UpsertCartItem(ctx, repository.UpsertCartItemParams{
			CartID:    cart.ID,
			VariantID: vid,
			Quantity:  qty,
			UnitPrice: unitPrice,
			AddedAt:   now,
		})
		if err != nil {
			return fmt.Errorf("failed to add cart item: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, s.deps.fail(op, err, "cart_id", cartID, "variant_id", variantID)
	}

	s.deps.Metrics.RecordCartItemsAdded(quantity)
	return summary, nil
}

// UpdateQuantity sets a line's quantity. Removing a line is RemoveItem's
// job, so a quantity below one is rejected rather than treated as a delete.
func (s *cartService) UpdateQuantity(ctx context.Context, cartID string, variantID string, quantity int) (*domain.CartSummary, error) {
	const op = "cart.update_quantity"

	vid, err := parseUUID(op, "variant_id", variantID)
	if err != nil {
		return nil, err
	}
	qty, err := toQuantity(op, quantity)
	if err != nil {
		return nil, err
	}

	summary, err := s.mutate(ctx, op, cartID, func(ctx context.Context, q repository.Querier, cart repository.Cart, _ time.Time) error {
		_, err := q.UpdateCartItemQuantity(ctx, repository.UpdateCartItemQuantityParams{
			CartID:    cart.ID,
			VariantID: vid,
			Quantity:  qty,
		})
		if err != nil {
			if isNoRows(err) {
				return domain.WithOp(domain.ErrCartItemNotFound, op)
			}
			return fmt.Errorf("failed to update cart item: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, s.deps.fail(op, err, "cart_id", cartID, "variant_id", variantID)
	}
	return summary, nil
}

func (s *cartService) RemoveItem(ctx context.Context, cartID string, variantID string) (*domain.CartSummary, error) {
	const op = "cart.remove_item"

	vid, err := parseUUID(op, "variant_id", variantID)
	if err != nil {
		return nil, err
	}

	summary, err := s.mutate(ctx, op, cartID, func(ctx context.Context, q repository.Querier, cart repository.Cart, _ time.Time) error {
		n, err := q.DeleteCartItem(ctx, repository.DeleteCartItemParams{
			CartID:    cart.ID,
			VariantID: vid,
		})
		if err != nil {
			return fmt.Errorf("failed to remove cart item: %w", err)
		}
		if n == 0 {
			return domain.WithOp(domain.ErrCartItemNotFound, op)
		}
		return nil
	})
	if err != nil {
		return nil, s.deps.fail(op, err, "cart_id", cartID, "variant_id", variantID)
	}
	return summary, nil
}

// GetCartSummary works for carts in any state so a converted cart can still
// be shown next to its order.
func (s *cartService) GetCartSummary(ctx context.Context, cartID string) (*domain.CartSummary, error) {
	const op = "cart.summary"

	id, err := parseUUID(op, "cart_id", cartID)
	if err != nil {
		return nil, err
	}

	cart, err := s.store.GetCart(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.WithOp(domain.ErrCartNotFound, op)
		}
		return nil, s.deps.fail(op, err, "cart_id", cartID)
	}

	summary, err := cartSummary(ctx, s.store, cart)
	if err != nil {
		return nil, s.deps.fail(op, err, "cart_id", cartID)
	}
	return summary, nil
}

// AbandonCart moves an active cart to abandoned. It is the hook for
// whatever expiry policy runs outside the ledger.
func (s *cartService) AbandonCart(ctx context.Context, cartID string) (*domain.Cart, error) {
	return s.abandon(ctx, "cart.abandon", cartID, time.Time{})
}

// AbandonIdleCart abandons the cart only while it is still idle, so a cart
// the user touched after an idle listing survives.
func (s *cartService) AbandonIdleCart(ctx context.Context, cartID string, idleSince time.Time) (*domain.Cart, error) {
	return s.abandon(ctx, "cart.abandon_idle", cartID, idleSince)
}

// abandon marks the locked cart abandoned. A non-zero idleSince also
// requires the cart's updated_at to be older than it.
func (s *cartService) abandon(ctx context.Context, op, cartID string, idleSince time.Time) (*domain.Cart, error) {
	id, err := parseUUID(op, "cart_id", cartID)
	if err != nil {
		return nil, err
	}

	var cart repository.Cart
	err = s.deps.run(ctx, op, func(ctx context.Context) error {
		return s.store.ExecTx(ctx, func(q repository.Querier) error {
			locked, err := lockActiveCart(ctx, q, op, id)
			if err != nil {
				return err
			}
			if !idleSince.IsZero() && !locked.UpdatedAt.Before(idleSince) {
				return domain.WithOp(domain.ErrCartNotIdle, op)
			}
			updated, err := q.UpdateCartStatus(ctx, repository.UpdateCartStatusParams{
				ID:        id,
				Status:    string(domain.CartStatusAbandoned),
				UpdatedAt: s.deps.Clock(),
			})
			if err != nil {
				return fmt.Errorf("failed to abandon cart: %w", err)
			}
			cart = updated
			return nil
		})
	})
	if err != nil {
		return nil, s.deps.fail(op, err, "cart_id", cartID)
	}

	s.deps.Metrics.RecordCartAbandoned()
	s.deps.Logger.Info("Cart abandoned", "cart_id", cartID, "op", op)

	c := toCart(cart)
	return &c, nil
}

// mutate runs fn against a locked active cart, bumps the cart's updated_at
// and returns the resulting summary, all in one transaction.
func (s *cartService) mutate(
	ctx context.Context,
	op string,
	cartID string,
	fn func(ctx context.Context, q repository.Querier, cart repository.Cart, now time.Time) error,
) (*domain.CartSummary, error) {
	id, err := parseUUID(op, "cart_id", cartID)
	if err != nil {
		return nil, err
	}

	var summary *domain.CartSummary
	err = s.deps.run(ctx, op, func(ctx context.Context) error {
		return s.store.ExecTx(ctx, func(q repository.Querier) error {
			cart, err := lockActiveCart(ctx, q, op, id)
			if err != nil {
				return err
			}

			now := s.deps.Clock()
			if err := fn(ctx, q, cart, now); err != nil {
				return err
			}

			if err := q.TouchCart(ctx, repository.TouchCartParams{ID: id, UpdatedAt: now}); err != nil {
				return fmt.Errorf("failed to touch cart: %w", err)
			}
			cart.UpdatedAt = now

			summary, err = cartSummary(ctx, q, cart)
			return err
		})
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// lockActiveCart takes the cart's row lock and checks it can still be
// changed. Every cart mutation and PlaceOrder goes through here first.
func lockActiveCart(ctx context.Context, q repository.Querier, op string, id pgtype.UUID) (repository.Cart, error) {
	cart, err := q.GetCartForUpdate(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return repository.Cart{}, domain.WithOp(domain.ErrCartNotFound, op)
		}
		return repository.Cart{}, fmt.Errorf("failed to lock cart: %w", err)
	}
	if cart.Status != string(domain.CartStatusActive) {
		return repository.Cart{}, domain.WithOp(domain.ErrCartNotActive, op)
	}
	return cart, nil
}

func cartSummary(ctx context.Context, q repository.Querier, cart repository.Cart) (*domain.CartSummary, error) {
	rows, err := q.ListCartItems(ctx, cart.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cart items: %w", err)
	}

	items := make([]domain.CartItem, 0, len(rows))
	subtotal := decimal.Zero
	count := 0
	for _, row := range rows {
		item := toCartItem(row)
		items = append(items, item)
		subtotal = subtotal.Add(item.LineTotal)
		count += int(item.Quantity)
	}

	return &domain.CartSummary{
		Cart:      toCart(cart),
		Items:     items,
		Subtotal:  subtotal,
		ItemCount: count,
	}, nil
}
