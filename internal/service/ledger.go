package service

import (
	"github.com/dukerupert/mercato/internal/address"
	"github.com/dukerupert/mercato/internal/domain"
	"github.com/dukerupert/mercato/internal/repository"
)

// Ledger bundles the services that share one store. It is the in-process
// API of the order placement ledger.
type Ledger struct {
	Catalog   domain.CatalogService
	Accounts  domain.AccountService
	Reviews   domain.ReviewService
	Inventory domain.InventoryService
	Carts     domain.CartService
	Orders    domain.OrderService
	Payments  domain.PaymentService
}

type LedgerConfig struct {
	Currency        string
	PaymentProvider string

	// Addresses validates shipping and saved addresses. Defaults to the
	// basic validator.
	Addresses address.Validator
}

func NewLedger(store repository.Store, cfg LedgerConfig, deps Deps) *Ledger {
	if cfg.Addresses == nil {
		cfg.Addresses = address.NewBasicValidator()
	}
	return &Ledger{
		Catalog:   NewCatalogService(store, deps),
		Accounts:  NewAccountService(store, cfg.Addresses, deps),
		Reviews:   NewReviewService(store, deps),
		Inventory: NewInventoryService(store, deps),
		Carts:     NewCartService(store, deps),
		Orders:    NewOrderService(store, cfg.Addresses, cfg.Currency, deps),
		Payments:  NewPaymentService(store, cfg.PaymentProvider, deps),
	}
}
