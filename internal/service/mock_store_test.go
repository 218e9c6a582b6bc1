package service

import (
	"context"
	"errors"

	"github.com/dukerupert/mercato/internal/repository"
	"github.com/jackc/pgx/v5/pgtype"
)

var errNotMocked = errors.New("not implemented in mock")

// mockStore implements repository.Store for testing. Each method calls its
// Func field when set and fails with errNotMocked otherwise. ExecTx runs fn
// against the mock itself unless ExecTxFunc is set.
type mockStore struct {
	ExecTxFunc func(ctx context.Context, fn func(q repository.Querier) error) error
	PingFunc   func(ctx context.Context) error

	CreateCategoryFunc          func(ctx context.Context, arg repository.CreateCategoryParams) (repository.Category, error)
	GetCategoryFunc             func(ctx context.Context, id pgtype.UUID) (repository.Category, error)
	DeleteCategoryFunc          func(ctx context.Context, id pgtype.UUID) (int64, error)
	CreateProductFunc           func(ctx context.Context, arg repository.CreateProductParams) (repository.Product, error)
	GetProductFunc              func(ctx context.Context, id pgtype.UUID) (repository.Product, error)
	UpdateProductFunc           func(ctx context.Context, arg repository.UpdateProductParams) (repository.Product, error)
	DeleteProductFunc           func(ctx context.Context, id pgtype.UUID) (int64, error)
	CreateVariantFunc           func(ctx context.Context, arg repository.CreateVariantParams) (repository.ProductVariant, error)
	GetVariantFunc              func(ctx context.Context, id pgtype.UUID) (repository.ProductVariant, error)
	SetVariantPriceOverrideFunc func(ctx context.Context, arg repository.SetVariantPriceOverrideParams) (repository.ProductVariant, error)
	DeleteVariantFunc           func(ctx context.Context, id pgtype.UUID) (int64, error)
	GetVariantPricingFunc       func(ctx context.Context, variantID pgtype.UUID) (repository.GetVariantPricingRow, error)
	CreateInventoryFunc         func(ctx context.Context, arg repository.CreateInventoryParams) (repository.Inventory, error)
	GetInventoryFunc            func(ctx context.Context, variantID pgtype.UUID) (repository.Inventory, error)
	ReserveStockFunc            func(ctx context.Context, arg repository.ReserveStockParams) (repository.Inventory, error)
	ReleaseStockFunc            func(ctx context.Context, arg repository.ReleaseStockParams) (repository.Inventory, error)
	SetStockFunc                func(ctx context.Context, arg repository.SetStockParams) (repository.Inventory, error)
	CreateUserFunc              func(ctx context.Context, arg repository.CreateUserParams) (repository.User, error)
	CreateUserProfileFunc       func(ctx context.Context, arg repository.CreateUserProfileParams) (repository.UserProfile, error)
	GetUserFunc                 func(ctx context.Context, id pgtype.UUID) (repository.GetUserRow, error)
	CreateAddressFunc           func(ctx context.Context, arg repository.CreateAddressParams) (repository.Address, error)
	ClearDefaultAddressFunc     func(ctx context.Context, userID pgtype.UUID) error
	CountAddressesFunc          func(ctx context.Context, userID pgtype.UUID) (int64, error)
	GetAddressFunc              func(ctx context.Context, id pgtype.UUID) (repository.Address, error)
	ListAddressesFunc           func(ctx context.Context, userID pgtype.UUID) ([]repository.Address, error)
	CreateReviewFunc            func(ctx context.Context, arg repository.CreateReviewParams) (repository.Review, error)
	GetReviewFunc               func(ctx context.Context, id pgtype.UUID) (repository.Review, error)
	UpdateReviewStatusFunc      func(ctx context.Context, arg repository.UpdateReviewStatusParams) (repository.Review, error)
	ListPublishedReviewsFunc    func(ctx context.Context, arg repository.ListPublishedReviewsParams) ([]repository.Review, error)
	GetActiveCartByUserFunc     func(ctx context.Context, userID pgtype.UUID) (repository.Cart, error)
	CreateCartFunc              func(ctx context.Context, arg repository.CreateCartParams) (repository.Cart, error)
	GetCartFunc                 func(ctx context.Context, id pgtype.UUID) (repository.Cart, error)
	GetCartForUpdateFunc        func(ctx context.Context, id pgtype.UUID) (repository.Cart, error)
	TouchCartFunc               func(ctx context.Context, arg repository.TouchCartParams) error
	UpdateCartStatusFunc        func(ctx context.Context, arg repository.UpdateCartStatusParams) (repository.Cart, error)
	UpsertCartItemFunc          func(ctx context.Context, arg repository.UpsertCartItemParams) (repository.CartItem, error)
	UpdateCartItemQuantityFunc  func(ctx context.Context, arg repository.UpdateCartItemQuantityParams) (repository.CartItem, error)
	DeleteCartItemFunc          func(ctx context.Context, arg repository.DeleteCartItemParams) (int64, error)
	ListCartItemsFunc           func(ctx context.Context, cartID pgtype.UUID) ([]repository.ListCartItemsRow, error)
	ListIdleCartsFunc           func(ctx context.Context, arg repository.ListIdleCartsParams) ([]pgtype.UUID, error)
	CreateOrderFunc             func(ctx context.Context, arg repository.CreateOrderParams) (repository.Order, error)
	GetOrderFunc                func(ctx context.Context, id pgtype.UUID) (repository.Order, error)
	GetOrderForUpdateFunc       func(ctx context.Context, id pgtype.UUID) (repository.Order, error)
	ListOrdersByUserFunc        func(ctx context.Context, arg repository.ListOrdersByUserParams) ([]repository.Order, error)
	UpdateOrderStatusFunc       func(ctx context.Context, arg repository.UpdateOrderStatusParams) (repository.Order, error)
	CreateOrderItemFunc         func(ctx context.Context, arg repository.CreateOrderItemParams) (repository.OrderItem, error)
	ListOrderItemsFunc          func(ctx context.Context, orderID pgtype.UUID) ([]repository.OrderItem, error)
	CreatePaymentFunc           func(ctx context.Context, arg repository.CreatePaymentParams) (repository.Payment, error)
	GetPaymentFunc              func(ctx context.Context, id pgtype.UUID) (repository.Payment, error)
	GetPaymentForUpdateFunc     func(ctx context.Context, id pgtype.UUID) (repository.Payment, error)
	GetPaymentByOrderFunc       func(ctx context.Context, orderID pgtype.UUID) (repository.Payment, error)
	UpdatePaymentStatusFunc     func(ctx context.Context, arg repository.UpdatePaymentStatusParams) (repository.Payment, error)
}

var _ repository.Store = (*mockStore)(nil)

func (m *mockStore) ExecTx(ctx context.Context, fn func(q repository.Querier) error) error {
	if m.ExecTxFunc != nil {
		return m.ExecTxFunc(ctx, fn)
	}
	return fn(m)
}

func (m *mockStore) Ping(ctx context.Context) error {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return nil
}

func (m *mockStore) CreateCategory(ctx context.Context, arg repository.CreateCategoryParams) (repository.Category, error) {
	if m.CreateCategoryFunc != nil {
		return m.CreateCategoryFunc(ctx, arg)
	}
	return repository.Category{}, errNotMocked
}

func (m *mockStore) GetCategory(ctx context.Context, id pgtype.UUID) (repository.Category, error) {
	if m.GetCategoryFunc != nil {
		return m.GetCategoryFunc(ctx, id)
	}
	return repository.Category{}, errNotMocked
}

func (m *mockStore) DeleteCategory(ctx context.Context, id pgtype.UUID) (int64, error) {
	if m.DeleteCategoryFunc != nil {
		return m.DeleteCategoryFunc(ctx, id)
	}
	return 0, errNotMocked
}

func (m *mockStore) CreateProduct(ctx context.Context, arg repository.CreateProductParams) (repository.Product, error) {
	if m.CreateProductFunc != nil {
		return m.CreateProductFunc(ctx, arg)
	}
	return repository.Product{}, errNotMocked
}

func (m *mockStore) GetProduct(ctx context.Context, id pgtype.UUID) (repository.Product, error) {
	if m.GetProductFunc != nil {
		return m.GetProductFunc(ctx, id)
	}
	return repository.Product{}, errNotMocked
}

func (m *mockStore) UpdateProduct(ctx context.Context, arg repository.UpdateProductParams) (repository.Product, error) {
	if m.UpdateProductFunc != nil {
		return m.UpdateProductFunc(ctx, arg)
	}
	return repository.Product{}, errNotMocked
}

func (m *mockStore) DeleteProduct(ctx context.Context, id pgtype.UUID) (int64, error) {
	if m.DeleteProductFunc != nil {
		return m.DeleteProductFunc(ctx, id)
	}
	return 0, errNotMocked
}

func (m *mockStore) CreateVariant(ctx context.Context, arg repository.CreateVariantParams) (repository.ProductVariant, error) {
	if m.CreateVariantFunc != nil {
		return m.CreateVariantFunc(ctx, arg)
	}
	return repository.ProductVariant{}, errNotMocked
}

func (m *mockStore) GetVariant(ctx context.Context, id pgtype.UUID) (repository.ProductVariant, error) {
	if m.GetVariantFunc != nil {
		return m.GetVariantFunc(ctx, id)
	}
	return repository.ProductVariant{}, errNotMocked
}

func (m *mockStore) SetVariantPriceOverride(ctx context.Context, arg repository.SetVariantPriceOverrideParams) (repository.ProductVariant, error) {
	if m.SetVariantPriceOverrideFunc != nil {
		return m.SetVariantPriceOverrideFunc(ctx, arg)
	}
	return repository.ProductVariant{}, errNotMocked
}

func (m *mockStore) DeleteVariant(ctx context.Context, id pgtype.UUID) (int64, error) {
	if m.DeleteVariantFunc != nil {
		return m.DeleteVariantFunc(ctx, id)
	}
	return 0, errNotMocked
}

func (m *mockStore) GetVariantPricing(ctx context.Context, variantID pgtype.UUID) (repository.GetVariantPricingRow, error) {
	if m.GetVariantPricingFunc != nil {
		return m.GetVariantPricingFunc(ctx, variantID)
	}
	return repository.GetVariantPricingRow{}, errNotMocked
}

func (m *mockStore) CreateInventory(ctx context.Context, arg repository.CreateInventoryParams) (repository.Inventory, error) {
	if m.CreateInventoryFunc != nil {
		return m.CreateInventoryFunc(ctx, arg)
	}
	return repository.Inventory{}, errNotMocked
}

func (m *mockStore) GetInventory(ctx context.Context, variantID pgtype.UUID) (repository.Inventory, error) {
	if m.GetInventoryFunc != nil {
		return m.GetInventoryFunc(ctx, variantID)
	}
	return repository.Inventory{}, errNotMocked
}

func (m *mockStore) ReserveStock(ctx context.Context, arg repository.ReserveStockParams) (repository.Inventory, error) {
	if m.ReserveStockFunc != nil {
		return m.ReserveStockFunc(ctx, arg)
	}
	return repository.Inventory{}, errNotMocked
}

func (m *mockStore) ReleaseStock(ctx context.Context, arg repository.ReleaseStockParams) (repository.Inventory, error) {
	if m.ReleaseStockFunc != nil {
		return m.ReleaseStockFunc(ctx, arg)
	}
	return repository.Inventory{}, errNotMocked
}

func (m *mockStore) SetStock(ctx context.Context, arg repository.SetStockParams) (repository.Inventory, error) {
	if m.SetStockFunc != nil {
		return m.SetStockFunc(ctx, arg)
	}
	return repository.Inventory{}, errNotMocked
}

func (m *mockStore) CreateUser(ctx context.Context, arg repository.CreateUserParams) (repository.User, error) {
	if m.CreateUserFunc != nil {
		return m.CreateUserFunc(ctx, arg)
	}
	return repository.User{}, errNotMocked
}

func (m *mockStore) CreateUserProfile(ctx context.Context, arg repository.CreateUserProfileParams) (repository.UserProfile, error) {
	if m.CreateUserProfileFunc != nil {
		return m.CreateUserProfileFunc(ctx, arg)
	}
	return repository.UserProfile{}, errNotMocked
}

func (m *mockStore) GetUser(ctx context.Context, id pgtype.UUID) (repository.GetUserRow, error) {
	if m.GetUserFunc != nil {
		return m.GetUserFunc(ctx, id)
	}
	return repository.GetUserRow{}, errNotMocked
}

func (m *mockStore) CreateAddress(ctx context.Context, arg repository.CreateAddressParams) (repository.Address, error) {
	if m.CreateAddressFunc != nil {
		return m.CreateAddressFunc(ctx, arg)
	}
	return repository.Address{}, errNotMocked
}

func (m *mockStore) ClearDefaultAddress(ctx context.Context, userID pgtype.UUID) error {
	if m.ClearDefaultAddressFunc != nil {
		return m.ClearDefaultAddressFunc(ctx, userID)
	}
	return errNotMocked
}

func (m *mockStore) CountAddresses(ctx context.Context, userID pgtype.UUID) (int64, error) {
	if m.CountAddressesFunc != nil {
		return m.CountAddressesFunc(ctx, userID)
	}
	return 0, errNotMocked
}

func (m *mockStore) GetAddress(ctx context.Context, id pgtype.UUID) (repository.Address, error) {
	if m.GetAddressFunc != nil {
		return m.GetAddressFunc(ctx, id)
	}
	return repository.Address{}, errNotMocked
}

func (m *mockStore) ListAddresses(ctx context.Context, userID pgtype.UUID) ([]repository.Address, error) {
	if m.ListAddressesFunc != nil {
		return m.ListAddressesFunc(ctx, userID)
	}
	return nil, errNotMocked
}

func (m *mockStore) CreateReview(ctx context.Context, arg repository.CreateReviewParams) (repository.Review, error) {
	if m.CreateReviewFunc != nil {
		return m.CreateReviewFunc(ctx, arg)
	}
	return repository.Review{}, errNotMocked
}

func (m *mockStore) GetReview(ctx context.Context, id pgtype.UUID) (repository.Review, error) {
	if m.GetReviewFunc != nil {
		return m.GetReviewFunc(ctx, id)
	}
	return repository.Review{}, errNotMocked
}

func (m *mockStore) UpdateReviewStatus(ctx context.Context, arg repository.UpdateReviewStatusParams) (repository.Review, error) {
	if m.UpdateReviewStatusFunc != nil {
		return m.UpdateReviewStatusFunc(ctx, arg)
	}
	return repository.Review{}, errNotMocked
}

func (m *mockStore) ListPublishedReviews(ctx context.Context, arg repository.ListPublishedReviewsParams) ([]repository.Review, error) {
	if m.ListPublishedReviewsFunc != nil {
		return m.ListPublishedReviewsFunc(ctx, arg)
	}
	return nil, errNotMocked
}

func (m *mockStore) GetActiveCartByUser(ctx context.Context, userID pgtype.UUID) (repository.Cart, error) {
	if m.GetActiveCartByUserFunc != nil {
		return m.GetActiveCartByUserFunc(ctx, userID)
	}
	return repository.Cart{}, errNotMocked
}

func (m *mockStore) CreateCart(ctx context.Context, arg repository.CreateCartParams) (repository.Cart, error) {
	if m.CreateCartFunc != nil {
		return m.CreateCartFunc(ctx, arg)
	}
	return repository.Cart{}, errNotMocked
}

func (m *mockStore) GetCart(ctx context.Context, id pgtype.UUID) (repository.Cart, error) {
	if m.GetCartFunc != nil {
		return m.GetCartFunc(ctx, id)
	}
	return repository.Cart{}, errNotMocked
}

func (m *mockStore) GetCartForUpdate(ctx context.Context, id pgtype.UUID) (repository.Cart, error) {
	if m.GetCartForUpdateFunc != nil {
		return m.GetCartForUpdateFunc(ctx, id)
	}
	return repository.Cart{}, errNotMocked
}

func (m *mockStore) TouchCart(ctx context.Context, arg repository.TouchCartParams) error {
	if m.TouchCartFunc != nil {
		return m.TouchCartFunc(ctx, arg)
	}
	return errNotMocked
}

func (m *mockStore) UpdateCartStatus(ctx context.Context, arg repository.UpdateCartStatusParams) (repository.Cart, error) {
	if m.UpdateCartStatusFunc != nil {
		return m.UpdateCartStatusFunc(ctx, arg)
	}
	return repository.Cart{}, errNotMocked
}

func (m *mockStore) UpsertCartItem(ctx context.Context, arg repository.UpsertCartItemParams) (repository.CartItem, error) {
	if m.UpsertCartItemFunc != nil {
		return m.UpsertCartItemFunc(ctx, arg)
	}
	return repository.CartItem{}, errNotMocked
}

func (m *mockStore) UpdateCartItemQuantity(ctx context.Context, arg repository.UpdateCartItemQuantityParams) (repository.CartItem, error) {
	if m.UpdateCartItemQuantityFunc != nil {
		return m.UpdateCartItemQuantityFunc(ctx, arg)
	}
	return repository.CartItem{}, errNotMocked
}

func (m *mockStore) DeleteCartItem(ctx context.Context, arg repository.DeleteCartItemParams) (int64, error) {
	if m.DeleteCartItemFunc != nil {
		return m.DeleteCartItemFunc(ctx, arg)
	}
	return 0, errNotMocked
}

func (m *mockStore) ListCartItems(ctx context.Context, cartID pgtype.UUID) ([]repository.ListCartItemsRow, error) {
	if m.ListCartItemsFunc != nil {
		return m.ListCartItemsFunc(ctx, cartID)
	}
	return nil, errNotMocked
}

func (m *mockStore) ListIdleCarts(ctx context.Context, arg repository.ListIdleCartsParams) ([]pgtype.UUID, error) {
	if m.ListIdleCartsFunc != nil {
		return m.ListIdleCartsFunc(ctx, arg)
	}
	return nil, errNotMocked
}

func (m *mockStore) CreateOrder(ctx context.Context, arg repository.CreateOrderParams) (repository.Order, error) {
	if m.CreateOrderFunc != nil {
		return m.CreateOrderFunc(ctx, arg)
	}
	return repository.Order{}, errNotMocked
}

func (m *mockStore) GetOrder(ctx context.Context, id pgtype.UUID) (repository.Order, error) {
	if m.GetOrderFunc != nil {
		return m.GetOrderFunc(ctx, id)
	}
	return repository.Order{}, errNotMocked
}

func (m *mockStore) GetOrderForUpdate(ctx context.Context, id pgtype.UUID) (repository.Order, error) {
	if m.GetOrderForUpdateFunc != nil {
		return m.GetOrderForUpdateFunc(ctx, id)
	}
	return repository.Order{}, errNotMocked
}

func (m *mockStore) ListOrdersByUser(ctx context.Context, arg repository.ListOrdersByUserParams) ([]repository.Order, error) {
	if m.ListOrdersByUserFunc != nil {
		return m.ListOrdersByUserFunc(ctx, arg)
	}
	return nil, errNotMocked
}

func (m *mockStore) UpdateOrderStatus(ctx context.Context, arg repository.UpdateOrderStatusParams) (repository.Order, error) {
	if m.UpdateOrderStatusFunc != nil {
		return m.UpdateOrderStatusFunc(ctx, arg)
	}
	return repository.Order{}, errNotMocked
}

func (m *mockStore) CreateOrderItem(ctx context.Context, arg repository.CreateOrderItemParams) (repository.OrderItem, error) {
	if m.CreateOrderItemFunc != nil {
		return m.CreateOrderItemFunc(ctx, arg)
	}
	return repository.OrderItem{}, errNotMocked
}

func (m *mockStore) ListOrderItems(ctx context.Context, orderID pgtype.UUID) ([]repository.OrderItem, error) {
	if m.ListOrderItemsFunc != nil {
		return m.ListOrderItemsFunc(ctx, orderID)
	}
	return nil, errNotMocked
}

func (m *mockStore) CreatePayment(ctx context.Context, arg repository.CreatePaymentParams) (repository.Payment, error) {
	if m.CreatePaymentFunc != nil {
		return m.CreatePaymentFunc(ctx, arg)
	}
	return repository.Payment{}, errNotMocked
}

func (m *mockStore) GetPayment(ctx context.Context, id pgtype.UUID) (repository.Payment, error) {
	if m.GetPaymentFunc != nil {
		return m.GetPaymentFunc(ctx, id)
	}
	return repository.Payment{}, errNotMocked
}

func (m *mockStore) GetPaymentForUpdate(ctx context.Context, id pgtype.UUID) (repository.Payment, error) {
	if m.GetPaymentForUpdateFunc != nil {
		return m.GetPaymentForUpdateFunc(ctx, id)
	}
	return repository.Payment{}, errNotMocked
}

func (m *mockStore) GetPaymentByOrder(ctx context.Context, orderID pgtype.UUID) (repository.Payment, error) {
	if m.GetPaymentByOrderFunc != nil {
		return m.GetPaymentByOrderFunc(ctx, orderID)
	}
	return repository.Payment{}, errNotMocked
}

func (m *mockStore) UpdatePaymentStatus(ctx context.Context, arg repository.UpdatePaymentStatusParams) (repository.Payment, error) {
	if m.UpdatePaymentStatusFunc != nil {
		return m.UpdatePaymentStatusFunc(ctx, arg)
	}
	return repository.Payment{}, errNotMocked
}
