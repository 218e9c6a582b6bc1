package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
)

// LedgerMetrics holds Prometheus metrics for carts, orders, stock and payments.
// A nil *LedgerMetrics is valid and records nothing, so services can run
// without a registry in tests.
type LedgerMetrics struct {
	// Carts
	CartsCreated   prometheus.Counter
	CartItemsAdded prometheus.Counter
	CartsAbandoned prometheus.Counter

	// Orders
	OrdersPlaced        *prometheus.CounterVec
	OrderValue          *prometheus.HistogramVec
	OrderItemCount      prometheus.Histogram
	OrderPlacementFails *prometheus.CounterVec
	OrdersCancelled     prometheus.Counter

	// Stock
	StockReservationFails prometheus.Counter
	StockReleasedUnits    prometheus.Counter

	// Payments
	Payments *prometheus.CounterVec

	// Concurrency
	ConflictRetries *prometheus.CounterVec
}

// NewLedgerMetrics creates the metrics and registers them with reg.
// Pass prometheus.DefaultRegisterer in production and a fresh
// prometheus.NewRegistry() in tests.
func NewLedgerMetrics(reg prometheus.Registerer, namespace string) *LedgerMetrics {
	if namespace == "" {
		namespace = "mercato"
	}
	factory := promauto.With(reg)

	return &LedgerMetrics{
		// =======================================================================
		// Carts
		// =======================================================================
		CartsCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cart",
			Name:      "created_total",
			Help:      "Total active carts created",
		}),
		CartItemsAdded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cart",
			Name:      "items_added_total",
			Help:      "Total units added to carts",
		}),
		CartsAbandoned: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cart",
			Name:      "abandoned_total",
			Help:      "Total carts moved to abandoned",
		}),

		// =======================================================================
		// Orders
		// =======================================================================
		OrdersPlaced: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "order",
				Name:      "placed_total",
				Help:      "Total orders placed",
			},
			[]string{"currency"},
		),
		OrderValue: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "order",
				Name:      "value",
				Help:      "Order total distribution in currency units",
				Buckets:   []float64{100, 250, 500, 1000, 2500, 5000, 10000, 25000, 50000},
			},
			[]string{"currency"},
		),
		OrderItemCount: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "order",
			Name:      "item_count",
			Help:      "Number of lines per order",
			Buckets:   []float64{1, 2, 3, 5, 10, 20},
		}),
		OrderPlacementFails: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "order",
				Name:      "placement_failures_total",
				Help:      "Total failed order placements",
			},
			[]string{"reason"}, // reason: insufficient_stock, empty_cart, cart_not_active, invalid_address, conflict, error
		),
		OrdersCancelled: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "order",
			Name:      "cancelled_total",
			Help:      "Total orders cancelled",
		}),

		// =======================================================================
		// Stock
		// =======================================================================
		StockReservationFails: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stock",
			Name:      "reservation_failures_total",
			Help:      "Total reservations rejected for insufficient stock",
		}),
		StockReleasedUnits: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stock",
			Name:      "released_units_total",
			Help:      "Total units returned to stock",
		}),

		// =======================================================================
		// Payments
		// =======================================================================
		Payments: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "payment",
				Name:      "transitions_total",
				Help:      "Total payments entering each status",
			},
			[]string{"status", "provider"},
		),

		// =======================================================================
		// Concurrency
		// =======================================================================
		ConflictRetries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "conflict_retries_total",
				Help:      "Total retries after a transient conflict",
			},
			[]string{"operation"},
		),
	}
}

func (m *LedgerMetrics) RecordCartCreated() {
	if m == nil {
		return
	}
	m.CartsCreated.Inc()
}

func (m *LedgerMetrics) RecordCartItemsAdded(units int) {
	if m == nil {
		return
	}
	m.CartItemsAdded.Add(float64(units))
}

func (m *LedgerMetrics) RecordCartAbandoned() {
	if m == nil {
		return
	}
	m.CartsAbandoned.Inc()
}

// RecordOrderPlaced records a committed order.
func (m *LedgerMetrics) RecordOrderPlaced(currency string, total decimal.Decimal, lines int) {
	if m == nil {
		return
	}
	m.OrdersPlaced.WithLabelValues(currency).Inc()
	m.OrderValue.WithLabelValues(currency).Observe(total.InexactFloat64())
	m.OrderItemCount.Observe(float64(lines))
}

func (m *LedgerMetrics) RecordOrderFailed(reason string) {
	if m == nil {
		return
	}
	m.OrderPlacementFails.WithLabelValues(reason).Inc()
}

func (m *LedgerMetrics) RecordOrderCancelled() {
	if m == nil {
		return
	}
	m.OrdersCancelled.Inc()
}

func (m *LedgerMetrics) RecordReservationFailure() {
	if m == nil {
		return
	}
	m.StockReservationFails.Inc()
}

func (m *LedgerMetrics) RecordStockReleased(units int) {
	if m == nil {
		return
	}
	m.StockReleasedUnits.Add(float64(units))
}

func (m *LedgerMetrics) RecordPayment(status, provider string) {
	if m == nil {
		return
	}
	m.Payments.WithLabelValues(status, provider).Inc()
}

func (m *LedgerMetrics) RecordConflictRetry(operation string) {
	if m == nil {
		return
	}
	m.ConflictRetries.WithLabelValues(operation).Inc()
}
