package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/dukerupert/mercato/internal/address"
	"github.com/dukerupert/mercato/internal/domain"
	"github.com/dukerupert/mercato/internal/events"
	"github.com/dukerupert/mercato/internal/repository"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderService_PlaceOrder(t *testing.T) {
	env := newTestEnv()
	l := newLedgerFixture()
	a := l.putLine("A", "10.00", 3, 5)
	b := l.putLine("B", "25.00", 1, 1)

	detail, err := NewOrderService(l.store(), nil, "", env.deps).
		PlaceOrder(context.Background(), uuidString(l.cart.ID), testShipping())

	require.NoError(t, err)
	order := detail.Order
	assert.Equal(t, "55.00", order.TotalAmount.StringFixed(2))
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.Equal(t, "INR", order.Currency)
	assert.Equal(t, testNow, order.PlacedAt)
	assert.Equal(t, l.cart.UserID, order.UserID)
	assert.Equal(t, "IN", order.ShippingAddress.Country)
	assert.Nil(t, detail.Payment)

	assert.Equal(t, int32(2), l.stock[a])
	assert.Equal(t, int32(0), l.stock[b])
	assert.Equal(t, string(domain.CartStatusConverted), l.cart.Status)

	require.Len(t, detail.Items, 2)
	bySKU := map[string]domain.OrderItem{}
	for _, item := range detail.Items {
		bySKU[item.SKU] = item
	}
	assert.Equal(t, "30.00", bySKU["A"].LineTotal.StringFixed(2))
	assert.Equal(t, int32(3), bySKU["A"].Quantity)
	assert.Equal(t, "Product A", bySKU["A"].ProductName)
	assert.Equal(t, "25.00", bySKU["B"].LineTotal.StringFixed(2))

	placed := env.events.OfType(events.OrderPlaced)
	require.Len(t, placed, 1)
	assert.Equal(t, uuidString(order.ID), placed[0].OrderID)
	assert.True(t, money("55.00").Equal(placed[0].Amount))

	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.OrdersPlaced.WithLabelValues("INR")))
}

func TestOrderService_PlaceOrder_InsufficientStockRollsBack(t *testing.T) {
	env := newTestEnv()
	l := newLedgerFixture()
	a := l.putLine("A", "10.00", 3, 5)
	b := l.putLine("B", "25.00", 1, 0)

	_, err := NewOrderService(l.store(), nil, "", env.deps).
		PlaceOrder(context.Background(), uuidString(l.cart.ID), testShipping())

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInsufficientStock))
	var ise *domain.InsufficientStockError
	require.True(t, errors.As(err, &ise))
	assert.Equal(t, "B", ise.SKU)
	assert.Equal(t, int32(0), ise.Available)

	assert.Equal(t, int32(5), l.stock[a], "no partial decrement")
	assert.Equal(t, int32(0), l.stock[b])
	assert.Empty(t, l.orders)
	assert.Empty(t, l.orderItems)
	assert.Equal(t, string(domain.CartStatusActive), l.cart.Status)
	assert.Empty(t, env.events.Events())

	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.OrderPlacementFails.WithLabelValues("insufficient_stock")))
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.StockReservationFails))
}

func TestOrderService_PlaceOrder_ExactTotals(t *testing.T) {
	tests := []struct {
		name  string
		lines [][2]string // price, quantity
		want  string
	}{
		{"tenths that drift in binary", [][2]string{{"0.10", "3"}, {"0.20", "1"}}, "0.50"},
		{"many cents", [][2]string{{"19.99", "3"}, {"0.01", "1"}}, "59.98"},
		{"large quantity", [][2]string{{"1234.56", "999"}}, "1233325.44"},
		{"free item", [][2]string{{"0.00", "4"}, {"5.05", "2"}}, "10.10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			l := newLedgerFixture()
			for i, line := range tt.lines {
				qty := int32(money(line[1]).IntPart())
				l.putLine(string(rune('A'+i)), line[0], qty, qty)
			}

			detail, err := NewOrderService(l.store(), nil, "", env.deps).
				PlaceOrder(context.Background(), uuidString(l.cart.ID), testShipping())

			require.NoError(t, err)
			assert.Equal(t, tt.want, detail.Order.TotalAmount.StringFixed(2))

			sum := money("0")
			for _, item := range detail.Items {
				sum = sum.Add(item.LineTotal)
			}
			assert.True(t, sum.Equal(detail.Order.TotalAmount))
		})
	}
}

func TestOrderService_PlaceOrder_Preconditions(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(l *ledgerFixture)
		cartID func(l *ledgerFixture) string
		wantIs error
		reason string
	}{
		{
			name:   "empty cart",
			setup:  func(l *ledgerFixture) {},
			wantIs: domain.ErrEmptyCart,
			reason: "empty_cart",
		},
		{
			name: "converted cart",
			setup: func(l *ledgerFixture) {
				l.putLine("A", "10.00", 1, 5)
				l.cart.Status = "converted"
			},
			wantIs: domain.ErrCartNotActive,
			reason: "cart_not_active",
		},
		{
			name:  "unknown cart",
			setup: func(l *ledgerFixture) { l.putLine("A", "10.00", 1, 5) },
			cartID: func(l *ledgerFixture) string {
				_, id := newID()
				return id
			},
			wantIs: domain.ErrCartNotFound,
			reason: "cart_not_found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			l := newLedgerFixture()
			tt.setup(l)
			cartID := uuidString(l.cart.ID)
			if tt.cartID != nil {
				cartID = tt.cartID(l)
			}

			_, err := NewOrderService(l.store(), nil, "", env.deps).
				PlaceOrder(context.Background(), cartID, testShipping())

			assert.True(t, errors.Is(err, tt.wantIs), "got %v", err)
			assert.Empty(t, l.orders)
			assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.OrderPlacementFails.WithLabelValues(tt.reason)))
		})
	}
}

func TestOrderService_PlaceOrder_InvalidAddress(t *testing.T) {
	env := newTestEnv()
	l := newLedgerFixture()
	a := l.putLine("A", "10.00", 1, 5)

	validator := &address.MockValidator{
		ValidateFunc: func(ctx context.Context, addr address.Address) (*address.ValidationResult, error) {
			return &address.ValidationResult{
				IsValid: false,
				Errors:  []address.ValidationError{{Field: "postal_code", Message: "is required"}},
			}, nil
		},
	}

	_, err := NewOrderService(l.store(), validator, "", env.deps).
		PlaceOrder(context.Background(), uuidString(l.cart.ID), address.Address{RecipientName: "Asha"})

	require.Error(t, err)
	assert.Equal(t, domain.EINVALID, domain.ErrorCode(err))
	assert.Equal(t, map[string]string{"postal_code": "is required"}, domain.GetValidationFields(err))
	assert.Equal(t, int32(5), l.stock[a])
	assert.Len(t, validator.Calls, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.OrderPlacementFails.WithLabelValues("invalid_address")))
}

func TestOrderService_PlaceOrder_ShippingSnapshotIsCopied(t *testing.T) {
	env := newTestEnv()
	l := newLedgerFixture()
	l.putLine("A", "10.00", 1, 5)

	shipping := testShipping()
	detail, err := NewOrderService(l.store(), nil, "EUR", env.deps).
		PlaceOrder(context.Background(), uuidString(l.cart.ID), shipping)
	require.NoError(t, err)

	shipping.Line1 = "changed after placement"

	stored := l.orders[detail.Order.ID]
	var snapshot address.Address
	require.NoError(t, json.Unmarshal(stored.ShippingAddress, &snapshot))
	assert.Equal(t, "12 MG Road", snapshot.Line1)
	assert.Equal(t, "12 MG Road", detail.Order.ShippingAddress.Line1)
	assert.Equal(t, "EUR", detail.Order.Currency)
}

func TestOrderService_PlaceOrderWithSavedAddress(t *testing.T) {
	t.Run("uses owner's address", func(t *testing.T) {
		env := newTestEnv()
		l := newLedgerFixture()
		l.putLine("A", "10.00", 1, 5)
		addrID, addr := newID()
		l.addresses[addrID] = repository.Address{
			ID: addrID, UserID: l.cart.UserID, RecipientName: "Asha Rao",
			Line1: "4 Park Street", City: "Kolkata", PostalCode: "700016", Country: "IN",
		}

		detail, err := NewOrderService(l.store(), nil, "", env.deps).
			PlaceOrderWithSavedAddress(context.Background(), uuidString(l.cart.ID), addr)

		require.NoError(t, err)
		assert.Equal(t, "4 Park Street", detail.Order.ShippingAddress.Line1)
	})

	t.Run("rejects another user's address", func(t *testing.T) {
		env := newTestEnv()
		l := newLedgerFixture()
		a := l.putLine("A", "10.00", 1, 5)
		addrID, addr := newID()
		otherUser, _ := newID()
		l.addresses[addrID] = repository.Address{ID: addrID, UserID: otherUser, Line1: "elsewhere"}

		_, err := NewOrderService(l.store(), nil, "", env.deps).
			PlaceOrderWithSavedAddress(context.Background(), uuidString(l.cart.ID), addr)

		assert.True(t, errors.Is(err, domain.ErrAddressNotOwned))
		assert.Equal(t, domain.EFORBIDDEN, domain.ErrorCode(err))
		assert.Equal(t, int32(5), l.stock[a])
		assert.Equal(t, string(domain.CartStatusActive), l.cart.Status)
	})

	t.Run("unknown address", func(t *testing.T) {
		env := newTestEnv()
		l := newLedgerFixture()
		l.putLine("A", "10.00", 1, 5)
		_, addr := newID()

		_, err := NewOrderService(l.store(), nil, "", env.deps).
			PlaceOrderWithSavedAddress(context.Background(), uuidString(l.cart.ID), addr)

		assert.True(t, errors.Is(err, domain.ErrAddressNotFound))
	})
}

func TestOrderService_GetOrderAndList(t *testing.T) {
	env := newTestEnv()
	l := newLedgerFixture()
	l.putLine("A", "10.00", 2, 5)
	placed := placeTestOrder(t, l, env.deps)
	svc := NewOrderService(l.store(), nil, "", env.deps)

	detail, err := svc.GetOrder(context.Background(), uuidString(placed.Order.ID))
	require.NoError(t, err)
	assert.Equal(t, placed.Order.ID, detail.Order.ID)
	assert.Len(t, detail.Items, 1)
	assert.Nil(t, detail.Payment)

	orders, err := svc.ListOrdersForUser(context.Background(), uuidString(l.cart.UserID), 10)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "20.00", orders[0].TotalAmount.StringFixed(2))

	_, missing := newID()
	_, err = svc.GetOrder(context.Background(), missing)
	assert.True(t, errors.Is(err, domain.ErrOrderNotFound))
}

func TestOrderService_CancelOrder(t *testing.T) {
	env := newTestEnv()
	l := newLedgerFixture()
	a := l.putLine("A", "10.00", 3, 5)
	b := l.putLine("B", "25.00", 1, 1)
	placed := placeTestOrder(t, l, env.deps)
	orderID := uuidString(placed.Order.ID)

	payment, err := NewPaymentService(l.store(), "", env.deps).
		InitiatePayment(context.Background(), orderID, money("55.00"), "")
	require.NoError(t, err)

	svc := NewOrderService(l.store(), nil, "", env.deps)
	detail, err := svc.CancelOrder(context.Background(), orderID)

	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusCancelled, detail.Order.Status)
	assert.Equal(t, int32(5), l.stock[a])
	assert.Equal(t, int32(1), l.stock[b])
	require.NotNil(t, detail.Payment)
	assert.Equal(t, domain.PaymentStatusFailed, detail.Payment.Status)
	assert.Equal(t, string(domain.PaymentStatusFailed), l.payments[payment.ID].Status)
	assert.Len(t, env.events.OfType(events.OrderCancelled), 1)
	assert.Equal(t, 4.0, testutil.ToFloat64(env.metrics.StockReleasedUnits))

	_, err = svc.CancelOrder(context.Background(), orderID)
	assert.True(t, errors.Is(err, domain.ErrOrderNotPending))
	assert.Equal(t, int32(5), l.stock[a], "second cancel releases nothing")
}

func TestPlacementFailureReason(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{domain.WithOp(domain.ErrEmptyCart, "order.place"), "empty_cart"},
		{domain.WithOp(domain.ErrCartNotActive, "order.place"), "cart_not_active"},
		{&domain.InsufficientStockError{SKU: "B"}, "insufficient_stock"},
		{domain.WithOp(domain.ErrConflictRetry, "order.place"), "conflict"},
		{domain.NewValidationError("order.place", "cart_id", "must be a valid UUID"), "invalid_address"},
		{errors.New("boom"), "error"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, placementFailureReason(tt.err))
	}
}
