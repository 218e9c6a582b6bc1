package service

import (
	"context"
	"maps"
	"testing"

	"github.com/dukerupert/mercato/internal/address"
	"github.com/dukerupert/mercato/internal/domain"
	"github.com/dukerupert/mercato/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

// ledgerFixture extends cartFixture with stock, orders, payments and saved
// addresses. Its ExecTx restores every map when fn fails, standing in for a
// transaction rollback.
type ledgerFixture struct {
	*cartFixture

	stock      map[pgtype.UUID]int32
	orders     map[pgtype.UUID]repository.Order
	orderItems map[pgtype.UUID][]repository.OrderItem
	payments   map[pgtype.UUID]repository.Payment
	addresses  map[pgtype.UUID]repository.Address
}

func newLedgerFixture() *ledgerFixture {
	return &ledgerFixture{
		cartFixture: newCartFixture("active"),
		stock:       map[pgtype.UUID]int32{},
		orders:      map[pgtype.UUID]repository.Order{},
		orderItems:  map[pgtype.UUID][]repository.OrderItem{},
		payments:    map[pgtype.UUID]repository.Payment{},
		addresses:   map[pgtype.UUID]repository.Address{},
	}
}

// putLine places a variant straight into the cart at a fixed price snapshot
// and gives it stock.
func (l *ledgerFixture) putLine(sku string, price string, qty, stock int32) pgtype.UUID {
	id := l.addVariant(sku, "Product "+sku, price, "", true)
	itemID, _ := newID()
	l.items[id] = &repository.ListCartItemsRow{
		ID:          itemID,
		CartID:      l.cart.ID,
		VariantID:   id,
		Quantity:    qty,
		UnitPrice:   money(price),
		AddedAt:     testNow,
		Sku:         sku,
		ProductName: "Product " + sku,
	}
	l.stock[id] = stock
	return id
}

type ledgerSnapshot struct {
	cart       repository.Cart
	items      map[pgtype.UUID]repository.ListCartItemsRow
	stock      map[pgtype.UUID]int32
	orders     map[pgtype.UUID]repository.Order
	orderItems map[pgtype.UUID][]repository.OrderItem
	payments   map[pgtype.UUID]repository.Payment
}

func (l *ledgerFixture) snapshot() ledgerSnapshot {
	items := make(map[pgtype.UUID]repository.ListCartItemsRow, len(l.items))
	for k, v := range l.items {
		items[k] = *v
	}
	return ledgerSnapshot{
		cart:       l.cart,
		items:      items,
		stock:      maps.Clone(l.stock),
		orders:     maps.Clone(l.orders),
		orderItems: maps.Clone(l.orderItems),
		payments:   maps.Clone(l.payments),
	}
}

func (l *ledgerFixture) restore(s ledgerSnapshot) {
	l.cart = s.cart
	l.items = make(map[pgtype.UUID]*repository.ListCartItemsRow, len(s.items))
	for k, v := range s.items {
		row := v
		l.items[k] = &row
	}
	l.stock = s.stock
	l.orders = s.orders
	l.orderItems = s.orderItems
	l.payments = s.payments
}

func (l *ledgerFixture) store() *mockStore {
	m := l.cartFixture.store()

	m.ExecTxFunc = func(ctx context.Context, fn func(q repository.Querier) error) error {
		saved := l.snapshot()
		if err := fn(m); err != nil {
			l.restore(saved)
			return err
		}
		return nil
	}

	m.ReserveStockFunc = func(ctx context.Context, arg repository.ReserveStockParams) (repository.Inventory, error) {
		qty, ok := l.stock[arg.VariantID]
		if !ok || qty < arg.Quantity {
			return repository.Inventory{}, pgx.ErrNoRows
		}
		l.stock[arg.VariantID] = qty - arg.Quantity
		return repository.Inventory{VariantID: arg.VariantID, QtyAvailable: qty - arg.Quantity, UpdatedAt: arg.UpdatedAt}, nil
	}
	m.ReleaseStockFunc = func(ctx context.Context, arg repository.ReleaseStockParams) (repository.Inventory, error) {
		qty, ok := l.stock[arg.VariantID]
		if !ok {
			return repository.Inventory{}, pgx.ErrNoRows
		}
		l.stock[arg.VariantID] = qty + arg.Quantity
		return repository.Inventory{VariantID: arg.VariantID, QtyAvailable: qty + arg.Quantity, UpdatedAt: arg.UpdatedAt}, nil
	}
	m.GetInventoryFunc = func(ctx context.Context, id pgtype.UUID) (repository.Inventory, error) {
		qty, ok := l.stock[id]
		if !ok {
			return repository.Inventory{}, pgx.ErrNoRows
		}
		return repository.Inventory{VariantID: id, QtyAvailable: qty}, nil
	}

	m.CreateOrderFunc = func(ctx context.Context, arg repository.CreateOrderParams) (repository.Order, error) {
		id, _ := newID()
		order := repository.Order{
			ID:              id,
			UserID:          arg.UserID,
			CartID:          arg.CartID,
			Status:          "pending",
			PlacedAt:        arg.PlacedAt,
			Currency:        arg.Currency,
			TotalAmount:     arg.TotalAmount,
			ShippingAddress: arg.ShippingAddress,
			UpdatedAt:       arg.PlacedAt,
		}
		l.orders[id] = order
		return order, nil
	}
	m.CreateOrderItemFunc = func(ctx context.Context, arg repository.CreateOrderItemParams) (repository.OrderItem, error) {
		if !arg.LineTotal.Equal(arg.UnitPrice.Mul(decimal.NewFromInt32(arg.Quantity))) {
			return repository.OrderItem{}, constraintErr(repository.ErrCheckViolation, "order_items_line_total_check")
		}
		id, _ := newID()
		item := repository.OrderItem{
			ID:          id,
			OrderID:     arg.OrderID,
			VariantID:   arg.VariantID,
			ProductName: arg.ProductName,
			Sku:         arg.Sku,
			UnitPrice:   arg.UnitPrice,
			Quantity:    arg.Quantity,
			LineTotal:   arg.LineTotal,
		}
		l.orderItems[arg.OrderID] = append(append([]repository.OrderItem(nil), l.orderItems[arg.OrderID]...), item)
		return item, nil
	}
	getOrder := func(ctx context.Context, id pgtype.UUID) (repository.Order, error) {
		order, ok := l.orders[id]
		if !ok {
			return repository.Order{}, pgx.ErrNoRows
		}
		return order, nil
	}
	m.GetOrderFunc = getOrder
	m.GetOrderForUpdateFunc = getOrder
	m.UpdateOrderStatusFunc = func(ctx context.Context, arg repository.UpdateOrderStatusParams) (repository.Order, error) {
		order, ok := l.orders[arg.ID]
		if !ok {
			return repository.Order{}, pgx.ErrNoRows
		}
		order.Status = arg.Status
		order.UpdatedAt = arg.UpdatedAt
		l.orders[arg.ID] = order
		return order, nil
	}
	m.ListOrderItemsFunc = func(ctx context.Context, orderID pgtype.UUID) ([]repository.OrderItem, error) {
		return l.orderItems[orderID], nil
	}
	m.ListOrdersByUserFunc = func(ctx context.Context, arg repository.ListOrdersByUserParams) ([]repository.Order, error) {
		var out []repository.Order
		for _, o := range l.orders {
			if o.UserID == arg.UserID {
				out = append(out, o)
			}
		}
		return out, nil
	}

	m.CreatePaymentFunc = func(ctx context.Context, arg repository.CreatePaymentParams) (repository.Payment, error) {
		for _, p := range l.payments {
			if p.OrderID == arg.OrderID {
				return repository.Payment{}, constraintErr(repository.ErrUniqueViolation, repository.ConstraintPaymentOrder)
			}
		}
		id, _ := newID()
		payment := repository.Payment{
			ID:        id,
			OrderID:   arg.OrderID,
			Provider:  arg.Provider,
			Amount:    arg.Amount,
			Status:    "initiated",
			CreatedAt: arg.CreatedAt,
			UpdatedAt: arg.CreatedAt,
		}
		l.payments[id] = payment
		return payment, nil
	}
	getPayment := func(ctx context.Context, id pgtype.UUID) (repository.Payment, error) {
		p, ok := l.payments[id]
		if !ok {
			return repository.Payment{}, pgx.ErrNoRows
		}
		return p, nil
	}
	m.GetPaymentFunc = getPayment
	m.GetPaymentForUpdateFunc = getPayment
	m.GetPaymentByOrderFunc = func(ctx context.Context, orderID pgtype.UUID) (repository.Payment, error) {
		for _, p := range l.payments {
			if p.OrderID == orderID {
				return p, nil
			}
		}
		return repository.Payment{}, pgx.ErrNoRows
	}
	m.UpdatePaymentStatusFunc = func(ctx context.Context, arg repository.UpdatePaymentStatusParams) (repository.Payment, error) {
		p, ok := l.payments[arg.ID]
		if !ok {
			return repository.Payment{}, pgx.ErrNoRows
		}
		p.Status = arg.Status
		if arg.TxnRef.Valid {
			p.TxnRef = arg.TxnRef
		}
		if arg.PaidAt.Valid {
			p.PaidAt = arg.PaidAt
		}
		p.UpdatedAt = arg.UpdatedAt
		l.payments[arg.ID] = p
		return p, nil
	}

	m.GetAddressFunc = func(ctx context.Context, id pgtype.UUID) (repository.Address, error) {
		a, ok := l.addresses[id]
		if !ok {
			return repository.Address{}, pgx.ErrNoRows
		}
		return a, nil
	}

	return m
}

// placeTestOrder places the fixture's cart with the basic validator.
func placeTestOrder(t *testing.T, l *ledgerFixture, deps Deps) *domain.OrderDetail {
	t.Helper()
	detail, err := NewOrderService(l.store(), nil, "", deps).
		PlaceOrder(context.Background(), uuidString(l.cart.ID), testShipping())
	require.NoError(t, err)
	return detail
}

func testShipping() address.Address {
	return address.Address{
		RecipientName: "Asha Rao",
		Line1:         "12 MG Road",
		City:          "Bengaluru",
		State:         "KA",
		PostalCode:    "560001",
		Country:       "in",
		Phone:         "+91 98450 12345",
	}
}
