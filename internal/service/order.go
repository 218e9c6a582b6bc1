package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dukerupert/mercato/internal/address"
	"github.com/dukerupert/mercato/internal/domain"
	"github.com/dukerupert/mercato/internal/events"
	"github.com/dukerupert/mercato/internal/repository"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is the currency orders are placed in when none is configured.
const DefaultCurrency = "INR"

type orderService struct {
	store     repository.Store
	validator address.Validator
	currency  string
	deps      Deps
}

// NewOrderService creates the order placement engine. A nil validator
// falls back to address.BasicValidator.
func NewOrderService(store repository.Store, validator address.Validator, currency string, deps Deps) domain.OrderService {
	if validator == nil {
		validator = address.NewBasicValidator()
	}
	if currency == "" {
		currency = DefaultCurrency
	}
	return &orderService{
		store:     store,
		validator: validator,
		currency:  currency,
		deps:      deps.withDefaults(),
	}
}

// addressResolver produces the shipping snapshot for an order once the
// cart is locked.
type addressResolver func(ctx context.Context, q repository.Querier, cart repository.Cart) (address.Address, error)

// PlaceOrder converts an active cart into a pending order in one
// transaction. Stock for every line is reserved first; if any line is short
// the transaction rolls back and no stock, order or cart change survives.
func (s *orderService) PlaceOrder(ctx context.Context, cartID string, shipping address.Address) (*domain.OrderDetail, error) {
	const op = "order.place"

	id, err := parseUUID(op, "cart_id", cartID)
	if err != nil {
		return nil, err
	}

	result, err := s.validator.Validate(ctx, shipping)
	if err != nil {
		return nil, s.deps.fail(op, fmt.Errorf("failed to validate shipping address: %w", err), "cart_id", cartID)
	}
	if !result.IsValid {
		s.deps.Metrics.RecordOrderFailed("invalid_address")
		return nil, domain.NewFieldsError(op, result.Fields())
	}

	snapshot := shipping.Normalize()
	if result.NormalizedAddress != nil {
		snapshot = *result.NormalizedAddress
	}

	return s.place(ctx, op, id, func(context.Context, repository.Querier, repository.Cart) (address.Address, error) {
		return snapshot, nil
	})
}

// PlaceOrderWithSavedAddress places an order shipping to one of the cart
// owner's saved addresses. The address is copied into the order, so later
// edits to the saved address do not reach it.
func (s *orderService) PlaceOrderWithSavedAddress(ctx context.Context, cartID string, addressID string) (*domain.OrderDetail, error) {
	const op = "order.place_saved_address"

	id, err := parseUUID(op, "cart_id", cartID)
	if err != nil {
		return nil, err
	}
	addrID, err := parseUUID(op, "address_id", addressID)
	if err != nil {
		return nil, err
	}

	return s.place(ctx, op, id, func(ctx context.Context, q repository.Querier, cart repository.Cart) (address.Address, error) {
		saved, err := q.GetAddress(ctx, addrID)
		if err != nil {
			if isNoRows(err) {
				return address.Address{}, domain.WithOp(domain.ErrAddressNotFound, op)
			}
			return address.Address{}, fmt.Errorf("failed to get address: %w", err)
		}
		if saved.UserID != cart.UserID {
			return address.Address{}, domain.WithOp(domain.ErrAddressNotOwned, op)
		}
		return toAddress(saved), nil
	})
}

func (s *orderService) place(ctx context.Context, op string, cartID pgtype.UUID, resolve addressResolver) (*domain.OrderDetail, error) {
	var detail *domain.OrderDetail

	err := s.deps.run(ctx, op, func(ctx context.Context) error {
		return s.store.ExecTx(ctx, func(q repository.Querier) error {
			cart, err := lockActiveCart(ctx, q, op, cartID)
			if err != nil {
				return err
			}

			// Ordered by variant so concurrent placements lock inventory
			// rows in the same sequence.
			lines, err := q.ListCartItems(ctx, cart.ID)
			if err != nil {
				return fmt.Errorf("failed to list cart items: %w", err)
			}
			if len(lines) == 0 {
				return domain.WithOp(domain.ErrEmptyCart, op)
			}

			shipping, err := resolve(ctx, q, cart)
			if err != nil {
				return err
			}
			snapshot, err := json.Marshal(shipping)
			if err != nil {
				return fmt.Errorf("failed to encode shipping address: %w", err)
			}

			now := s.deps.Clock()
			for _, line := range lines {
				if _, err := reserve(ctx, q, op, line.VariantID, line.Sku, line.Quantity, now); err != nil {
					return err
				}
			}

			totals := make([]decimal.Decimal, len(lines))
			for i, line := range lines {
				totals[i] = domain.LineTotal(line.UnitPrice, line.Quantity)
			}

			order, err := q.CreateOrder(ctx, repository.CreateOrderParams{
				UserID:          cart.UserID,
				CartID:          cart.ID,
				PlacedAt:        now,
				Currency:        s.currency,
				TotalAmount:     domain.SumLineTotals(totals...),
				ShippingAddress: snapshot,
			})
			if err != nil {
				return fmt.Errorf("failed to create order: %w", err)
			}

			items := make([]repository.OrderItem, 0, len(lines))
			for i, line := range lines {
				item, err := q.CreateOrderItem(ctx, repository.CreateOrderItemParams{
					OrderID:     order.ID,
					VariantID:   line.VariantID,
					ProductName: line.ProductName,
					Sku:         line.Sku,
					UnitPrice:   line.UnitPrice,
					Quantity:    line.Quantity,
					LineTotal:   totals[i],
				})
				if err != nil {
					return fmt.Errorf("failed to create order item %s: %w", line.Sku, err)
				}
				items = append(items, item)
			}

			if _, err := q.UpdateCartStatus(ctx, repository.UpdateCartStatusParams{
				ID:        cart.ID,
				Status:    string(domain.CartStatusConverted),
				UpdatedAt: now,
			}); err != nil {
				return fmt.Errorf("failed to convert cart: %w", err)
			}

			o, err := toOrder(order)
			if err != nil {
				return err
			}
			detail = &domain.OrderDetail{Order: o, Items: toOrderItems(items)}
			return nil
		})
	})
	if err != nil {
		reason := placementFailureReason(err)
		s.deps.Metrics.RecordOrderFailed(reason)
		if reason == "insufficient_stock" {
			s.deps.Metrics.RecordReservationFailure()
		}
		s.deps.Logger.Warn("Order placement failed", "cart_id", uuidString(cartID), "reason", reason, "error", err)
		return nil, s.deps.fail(op, err, "cart_id", uuidString(cartID))
	}

	order := detail.Order
	s.deps.Metrics.RecordOrderPlaced(order.Currency, order.TotalAmount, len(detail.Items))
	s.deps.Logger.Info("Order placed",
		"order_id", uuidString(order.ID),
		"cart_id", uuidString(cartID),
		"user_id", uuidString(order.UserID),
		"total", order.TotalAmount.StringFixed(domain.MoneyPlaces),
		"currency", order.Currency,
		"lines", len(detail.Items),
	)
	s.deps.publish(ctx, events.Event{
		Type:     events.OrderPlaced,
		OrderID:  uuidString(order.ID),
		UserID:   uuidString(order.UserID),
		Amount:   order.TotalAmount,
		Currency: order.Currency,
	})

	return detail, nil
}

func (s *orderService) GetOrder(ctx context.Context, orderID string) (*domain.OrderDetail, error) {
	const op = "order.get"

	id, err := parseUUID(op, "order_id", orderID)
	if err != nil {
		return nil, err
	}

	order, err := s.store.GetOrder(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.WithOp(domain.ErrOrderNotFound, op)
		}
		return nil, s.deps.fail(op, err, "order_id", orderID)
	}

	detail, err := orderDetail(ctx, s.store, order)
	if err != nil {
		return nil, s.deps.fail(op, err, "order_id", orderID)
	}
	return detail, nil
}

// ListOrdersForUser returns the user's orders, newest first.
func (s *orderService) ListOrdersForUser(ctx context.Context, userID string, limit int) ([]domain.Order, error) {
	const op = "order.list"

	uid, err := parseUUID(op, "user_id", userID)
	if err != nil {
		return nil, err
	}

	rows, err := s.store.ListOrdersByUser(ctx, repository.ListOrdersByUserParams{
		UserID: uid,
		Limit:  listLimit(limit),
	})
	if err != nil {
		return nil, s.deps.fail(op, err, "user_id", userID)
	}

	orders := make([]domain.Order, 0, len(rows))
	for _, row := range rows {
		o, err := toOrder(row)
		if err != nil {
			return nil, s.deps.fail(op, err, "user_id", userID)
		}
		orders = append(orders, o)
	}
	return orders, nil
}

// CancelOrder cancels a pending order and returns its stock. An initiated
// payment is marked failed in the same transaction.
func (s *orderService) CancelOrder(ctx context.Context, orderID string) (*domain.OrderDetail, error) {
	const op = "order.cancel"

	id, err := parseUUID(op, "order_id", orderID)
	if err != nil {
		return nil, err
	}

	var (
		detail   *domain.OrderDetail
		released int
	)
	err = s.deps.run(ctx, op, func(ctx context.Context) error {
		return s.store.ExecTx(ctx, func(q repository.Querier) error {
			order, err := lockOrder(ctx, q, op, id)
			if err != nil {
				return err
			}
			if order.Status != string(domain.OrderStatusPending) {
				return domain.WithOp(domain.ErrOrderNotPending, op)
			}

			now := s.deps.Clock()
			released, err = releaseOrderStock(ctx, q, op, order.ID, now)
			if err != nil {
				return err
			}

			updated, err := q.UpdateOrderStatus(ctx, repository.UpdateOrderStatusParams{
				ID:        order.ID,
				Status:    string(domain.OrderStatusCancelled),
				UpdatedAt: now,
			})
			if err != nil {
				return fmt.Errorf("failed to cancel order: %w", err)
			}

			if err := failInitiatedPayment(ctx, q, order.ID, now); err != nil {
				return err
			}

			detail, err = orderDetail(ctx, q, updated)
			return err
		})
	})
	if err != nil {
		return nil, s.deps.fail(op, err, "order_id", orderID)
	}

	s.deps.Metrics.RecordOrderCancelled()
	s.deps.Metrics.RecordStockReleased(released)
	s.deps.Logger.Info("Order cancelled", "order_id", orderID, "released_units", released)
	s.deps.publish(ctx, events.Event{
		Type:     events.OrderCancelled,
		OrderID:  orderID,
		UserID:   uuidString(detail.Order.UserID),
		Amount:   detail.Order.TotalAmount,
		Currency: detail.Order.Currency,
	})

	return detail, nil
}

// lockOrder takes the order's row lock. Order transitions lock the order
// before its payment.
func lockOrder(ctx context.Context, q repository.Querier, op string, id pgtype.UUID) (repository.Order, error) {
	order, err := q.GetOrderForUpdate(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return repository.Order{}, domain.WithOp(domain.ErrOrderNotFound, op)
		}
		return repository.Order{}, fmt.Errorf("failed to lock order: %w", err)
	}
	return order, nil
}

// releaseOrderStock returns every line of an order to stock and reports the
// number of units released.
func releaseOrderStock(ctx context.Context, q repository.Querier, op string, orderID pgtype.UUID, now time.Time) (int, error) {
	items, err := q.ListOrderItems(ctx, orderID)
	if err != nil {
		return 0, fmt.Errorf("failed to list order items: %w", err)
	}

	units := 0
	for _, item := range items {
		if _, err := release(ctx, q, op, item.VariantID, item.Quantity, now); err != nil {
			return 0, err
		}
		units += int(item.Quantity)
	}
	return units, nil
}

// failInitiatedPayment marks the order's payment failed if one is still
// waiting on the provider.
func failInitiatedPayment(ctx context.Context, q repository.Querier, orderID pgtype.UUID, now time.Time) error {
	payment, err := q.GetPaymentByOrder(ctx, orderID)
	if err != nil {
		if isNoRows(err) {
			return nil
		}
		return fmt.Errorf("failed to get payment: %w", err)
	}
	if payment.Status != string(domain.PaymentStatusInitiated) {
		return nil
	}

	if _, err := q.GetPaymentForUpdate(ctx, payment.ID); err != nil {
		return fmt.Errorf("failed to lock payment: %w", err)
	}
	if _, err := q.UpdatePaymentStatus(ctx, repository.UpdatePaymentStatusParams{
		ID:        payment.ID,
		Status:    string(domain.PaymentStatusFailed),
		UpdatedAt: now,
	}); err != nil {
		return fmt.Errorf("failed to fail payment: %w", err)
	}
	return nil
}

func orderDetail(ctx context.Context, q repository.Querier, order repository.Order) (*domain.OrderDetail, error) {
	o, err := toOrder(order)
	if err != nil {
		return nil, err
	}

	items, err := q.ListOrderItems(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}

	detail := &domain.OrderDetail{Order: o, Items: toOrderItems(items)}

	payment, err := q.GetPaymentByOrder(ctx, order.ID)
	switch {
	case err == nil:
		detail.Payment = toPayment(payment)
	case !isNoRows(err):
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return detail, nil
}

func placementFailureReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrEmptyCart):
		return "empty_cart"
	case errors.Is(err, domain.ErrCartNotActive):
		return "cart_not_active"
	case errors.Is(err, domain.ErrCartNotFound):
		return "cart_not_found"
	case errors.Is(err, domain.ErrConflictRetry):
		return "conflict"
	case domain.IsValidationError(err):
		return "invalid_address"
	default:
		return "error"
	}
}
