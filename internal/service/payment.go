package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dukerupert/mercato/internal/domain"
	"github.com/dukerupert/mercato/internal/events"
	"github.com/dukerupert/mercato/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

// DefaultPaymentProvider names the built-in simulated provider.
const DefaultPaymentProvider = "Simulated"

type paymentService struct {
	store    repository.Store
	provider string
	deps     Deps
}

// NewPaymentService creates the payment recorder. defaultProvider is used
// when InitiatePayment is called without one.
func NewPaymentService(store repository.Store, defaultProvider string, deps Deps) domain.PaymentService {
	if defaultProvider == "" {
		defaultProvider = DefaultPaymentProvider
	}
	return &paymentService{
		store:    store,
		provider: defaultProvider,
		deps:     deps.withDefaults(),
	}
}

// InitiatePayment records the single payment attempt an order may have.
// The amount must match the order total exactly.
func (s *paymentService) InitiatePayment(ctx context.Context, orderID string, amount decimal.Decimal, provider string) (*domain.Payment, error) {
	const op = "payment.initiate"

	id, err := parseUUID(op, "order_id", orderID)
	if err != nil {
		return nil, err
	}
	if !domain.IsValidPrice(amount) {
		return nil, domain.NewValidationError(op, "amount", "must be non-negative with at most two decimal places")
	}
	provider = strings.TrimSpace(provider)
	if provider == "" {
		provider = s.provider
	}

	var payment repository.Payment
	err = s.deps.run(ctx, op, func(ctx context.Context) error {
		return s.store.ExecTx(ctx, func(q repository.Querier) error {
			order, err := lockOrder(ctx, q, op, id)
			if err != nil {
				return err
			}

			_, err = q.GetPaymentByOrder(ctx, order.ID)
			if err == nil {
				return domain.WithOp(domain.ErrDuplicatePayment, op)
			}
			if !isNoRows(err) {
				return fmt.Errorf("failed to check existing payment: %w", err)
			}

			if order.Status != string(domain.OrderStatusPending) {
				return domain.WithOp(domain.ErrOrderNotPending, op)
			}
			if !amount.Equal(order.TotalAmount) {
				return domain.Invalid(op, fmt.Sprintf("Payment amount %s does not match order total %s",
					amount.StringFixed(domain.MoneyPlaces), order.TotalAmount.StringFixed(domain.MoneyPlaces)))
			}

			created, err := q.CreatePayment(ctx, repository.CreatePaymentParams{
				OrderID:   order.ID,
				Provider:  provider,
				Amount:    amount,
				CreatedAt: s.deps.Clock(),
			})
			if err != nil {
				if repository.IsConstraint(err, repository.ErrUniqueViolation, repository.ConstraintPaymentOrder) {
					return domain.WithOp(domain.ErrDuplicatePayment, op)
				}
				return fmt.Errorf("failed to create payment: %w", err)
			}
			payment = created
			return nil
		})
	})
	if err != nil {
		return nil, s.deps.fail(op, err, "order_id", orderID)
	}

	s.deps.Metrics.RecordPayment(string(domain.PaymentStatusInitiated), provider)
	s.deps.Logger.Info("Payment initiated",
		"payment_id", uuidString(payment.ID),
		"order_id", orderID,
		"provider", provider,
		"amount", amount.StringFixed(domain.MoneyPlaces),
	)

	return toPayment(payment), nil
}

// MarkSucceeded settles the payment and marks its order paid. An empty
// txnRef gets a generated reference from the simulated provider.
func (s *paymentService) MarkSucceeded(ctx context.Context, paymentID string, txnRef string) (*domain.Payment, error) {
	const op = "payment.mark_succeeded"

	txnRef = strings.TrimSpace(txnRef)
	if txnRef == "" {
		txnRef = "SIM-" + strings.ToUpper(uuid.NewString())
	}

	payment, order, err := s.transition(ctx, op, paymentID, func(ctx context.Context, q repository.Querier, p repository.Payment, now time.Time) error {
		if _, err := q.UpdatePaymentStatus(ctx, repository.UpdatePaymentStatusParams{
			ID:        p.ID,
			Status:    string(domain.PaymentStatusSucceeded),
			TxnRef:    pgtype.Text{String: txnRef, Valid: true},
			PaidAt:    pgtype.Timestamptz{Time: now, Valid: true},
			UpdatedAt: now,
		}); err != nil {
			return fmt.Errorf("failed to update payment: %w", err)
		}
		if _, err := q.UpdateOrderStatus(ctx, repository.UpdateOrderStatusParams{
			ID:        p.OrderID,
			Status:    string(domain.OrderStatusPaid),
			UpdatedAt: now,
		}); err != nil {
			return fmt.Errorf("failed to mark order paid: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.deps.Logger.Info("Payment succeeded", "payment_id", paymentID, "order_id", uuidString(payment.OrderID), "txn_ref", txnRef)
	s.deps.publish(ctx, events.Event{
		Type:      events.PaymentSucceeded,
		OrderID:   uuidString(payment.OrderID),
		PaymentID: paymentID,
		UserID:    uuidString(order.UserID),
		Amount:    payment.Amount,
		Currency:  order.Currency,
	})
	return payment, nil
}

// MarkFailed records a failed payment, fails the order and returns the
// order's stock.
func (s *paymentService) MarkFailed(ctx context.Context, paymentID string) (*domain.Payment, error) {
	const op = "payment.mark_failed"

	var released int
	payment, order, err := s.transition(ctx, op, paymentID, func(ctx context.Context, q repository.Querier, p repository.Payment, now time.Time) error {
		var err error
		released, err = releaseOrderStock(ctx, q, op, p.OrderID, now)
		if err != nil {
			return err
		}
		if _, err := q.UpdatePaymentStatus(ctx, repository.UpdatePaymentStatusParams{
			ID:        p.ID,
			Status:    string(domain.PaymentStatusFailed),
			UpdatedAt: now,
		}); err != nil {
			return fmt.Errorf("failed to update payment: %w", err)
		}
		if _, err := q.UpdateOrderStatus(ctx, repository.UpdateOrderStatusParams{
			ID:        p.OrderID,
			Status:    string(domain.OrderStatusFailed),
			UpdatedAt: now,
		}); err != nil {
			return fmt.Errorf("failed to mark order failed: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.deps.Metrics.RecordStockReleased(released)
	s.deps.Logger.Info("Payment failed", "payment_id", paymentID, "order_id", uuidString(payment.OrderID), "released_units", released)
	s.deps.publish(ctx, events.Event{
		Type:      events.PaymentFailed,
		OrderID:   uuidString(payment.OrderID),
		PaymentID: paymentID,
		UserID:    uuidString(order.UserID),
		Amount:    payment.Amount,
		Currency:  order.Currency,
	})
	return payment, nil
}

// transition locks the payment's order and then the payment, checks both
// are still open and runs fn. It returns the payment as stored after fn.
func (s *paymentService) transition(
	ctx context.Context,
	op string,
	paymentID string,
	fn func(ctx context.Context, q repository.Querier, p repository.Payment, now time.Time) error,
) (*domain.Payment, repository.Order, error) {
	id, err := parseUUID(op, "payment_id", paymentID)
	if err != nil {
		return nil, repository.Order{}, err
	}

	var (
		payment repository.Payment
		order   repository.Order
	)
	err = s.deps.run(ctx, op, func(ctx context.Context) error {
		return s.store.ExecTx(ctx, func(q repository.Querier) error {
			current, err := q.GetPayment(ctx, id)
			if err != nil {
				if isNoRows(err) {
					return domain.WithOp(domain.ErrPaymentNotFound, op)
				}
				return fmt.Errorf("failed to get payment: %w", err)
			}

			order, err = lockOrder(ctx, q, op, current.OrderID)
			if err != nil {
				return err
			}
			locked, err := q.GetPaymentForUpdate(ctx, id)
			if err != nil {
				return fmt.Errorf("failed to lock payment: %w", err)
			}

			if locked.Status != string(domain.PaymentStatusInitiated) {
				return domain.WithOp(domain.ErrPaymentNotInitiated, op)
			}
			if order.Status != string(domain.OrderStatusPending) {
				return domain.WithOp(domain.ErrOrderNotPending, op)
			}

			if err := fn(ctx, q, locked, s.deps.Clock()); err != nil {
				return err
			}

			payment, err = q.GetPayment(ctx, id)
			if err != nil {
				return fmt.Errorf("failed to reload payment: %w", err)
			}
			return nil
		})
	})
	if err != nil {
		return nil, repository.Order{}, s.deps.fail(op, err, "payment_id", paymentID)
	}

	s.deps.Metrics.RecordPayment(payment.Status, payment.Provider)
	return toPayment(payment), order, nil
}

func (s *paymentService) GetPayment(ctx context.Context, paymentID string) (*domain.Payment, error) {
	const op = "payment.get"

	id, err := parseUUID(op, "payment_id", paymentID)
	if err != nil {
		return nil, err
	}

	payment, err := s.store.GetPayment(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.WithOp(domain.ErrPaymentNotFound, op)
		}
		return nil, s.deps.fail(op, err, "payment_id", paymentID)
	}
	return toPayment(payment), nil
}

func (s *paymentService) GetPaymentForOrder(ctx context.Context, orderID string) (*domain.Payment, error) {
	const op = "payment.get_for_order"

	id, err := parseUUID(op, "order_id", orderID)
	if err != nil {
		return nil, err
	}

	payment, err := s.store.GetPaymentByOrder(ctx, id)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.WithOp(domain.ErrPaymentNotFound, op)
		}
		return nil, s.deps.fail(op, err, "order_id", orderID)
	}
	return toPayment(payment), nil
}
