package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

type Querier interface {
	// Catalog
	CreateCategory(ctx context.Context, arg CreateCategoryParams) (Category, error)
	GetCategory(ctx context.Context, id pgtype.UUID) (Category, error)
	DeleteCategory(ctx context.Context, id pgtype.UUID) (int64, error)
	CreateProduct(ctx context.Context, arg CreateProductParams) (Product, error)
	GetProduct(ctx context.Context, id pgtype.UUID) (Product, error)
	UpdateProduct(ctx context.Context, arg UpdateProductParams) (Product, error)
	DeleteProduct(ctx context.Context, id pgtype.UUID) (int64, error)
	CreateVariant(ctx context.Context, arg CreateVariantParams) (ProductVariant, error)
	GetVariant(ctx context.Context, id pgtype.UUID) (ProductVariant, error)
	SetVariantPriceOverride(ctx context.Context, arg SetVariantPriceOverrideParams) (ProductVariant, error)
	DeleteVariant(ctx context.Context, id pgtype.UUID) (int64, error)
	GetVariantPricing(ctx context.Context, variantID pgtype.UUID) (GetVariantPricingRow, error)

	// Inventory
	CreateInventory(ctx context.Context, arg CreateInventoryParams) (Inventory, error)
	GetInventory(ctx context.Context, variantID pgtype.UUID) (Inventory, error)
	ReserveStock(ctx context.Context, arg ReserveStockParams) (Inventory, error)
	ReleaseStock(ctx context.Context, arg ReleaseStockParams) (Inventory, error)
	SetStock(ctx context.Context, arg SetStockParams) (Inventory, error)

	// Accounts
	CreateUser(ctx context.Context, arg CreateUserParams) (User, error)
	CreateUserProfile(ctx context.Context, arg CreateUserProfileParams) (UserProfile, error)
	GetUser(ctx context.Context, id pgtype.UUID) (GetUserRow, error)
	CreateAddress(ctx context.Context, arg CreateAddressParams) (Address, error)
	ClearDefaultAddress(ctx context.Context, userID pgtype.UUID) error
	CountAddresses(ctx context.Context, userID pgtype.UUID) (int64, error)
	GetAddress(ctx context.Context, id pgtype.UUID) (Address, error)
	ListAddresses(ctx context.Context, userID pgtype.UUID) ([]Address, error)

	// Reviews
	CreateReview(ctx context.Context, arg CreateReviewParams) (Review, error)
	GetReview(ctx context.Context, id pgtype.UUID) (Review, error)
	UpdateReviewStatus(ctx context.Context, arg UpdateReviewStatusParams) (Review, error)
	ListPublishedReviews(ctx context.Context, arg ListPublishedReviewsParams) ([]Review, error)

	// Carts
	GetActiveCartByUser(ctx context.Context, userID pgtype.UUID) (Cart, error)
	CreateCart(ctx context.Context, arg CreateCartParams) (Cart, error)
	GetCart(ctx context.Context, id pgtype.UUID) (Cart, error)
	GetCartForUpdate(ctx context.Context, id pgtype.UUID) (Cart, error)
	TouchCart(ctx context.Context, arg TouchCartParams) error
	UpdateCartStatus(ctx context.Context, arg UpdateCartStatusParams) (Cart, error)
	UpsertCartItem(ctx context.Context, arg UpsertCartItemParams) (CartItem, error)
	UpdateCartItemQuantity(ctx context.Context, arg UpdateCartItemQuantityParams) (CartItem, error)
	DeleteCartItem(ctx context.Context, arg DeleteCartItemParams) (int64, error)
	ListCartItems(ctx context.Context, cartID pgtype.UUID) ([]ListCartItemsRow, error)
	ListIdleCarts(ctx context.Context, arg ListIdleCartsParams) ([]pgtype.UUID, error)

	// Orders
	CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error)
	GetOrder(ctx context.Context, id pgtype.UUID) (Order, error)
	GetOrderForUpdate(ctx context.Context, id pgtype.UUID) (Order, error)
	ListOrdersByUser(ctx context.Context, arg ListOrdersByUserParams) ([]Order, error)
	UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (Order, error)
	CreateOrderItem(ctx context.Context, arg CreateOrderItemParams) (OrderItem, error)
	ListOrderItems(ctx context.Context, orderID pgtype.UUID) ([]OrderItem, error)

	// Payments
	CreatePayment(ctx context.Context, arg CreatePaymentParams) (Payment, error)
	GetPayment(ctx context.Context, id pgtype.UUID) (Payment, error)
	GetPaymentForUpdate(ctx context.Context, id pgtype.UUID) (Payment, error)
	GetPaymentByOrder(ctx context.Context, orderID pgtype.UUID) (Payment, error)
	UpdatePaymentStatus(ctx context.Context, arg UpdatePaymentStatusParams) (Payment, error)
}

var _ Querier = (*Queries)(nil)
