package repository

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

type Category struct {
	ID       pgtype.UUID
	ParentID pgtype.UUID
	Name     string
	Slug     string
	IsActive bool
}

type Product struct {
	ID          pgtype.UUID
	CategoryID  pgtype.UUID
	Name        string
	Slug        string
	Description string
	BasePrice   decimal.Decimal
	IsActive    bool
	CreatedAt   time.Time
}

type ProductVariant struct {
	ID            pgtype.UUID
	ProductID     pgtype.UUID
	Sku           string
	Attrs         []byte
	PriceOverride decimal.NullDecimal
}

type Inventory struct {
	VariantID    pgtype.UUID
	QtyAvailable int32
	UpdatedAt    time.Time
}

type User struct {
	ID        pgtype.UUID
	Email     string
	IsActive  bool
	CreatedAt time.Time
}

type UserProfile struct {
	UserID   pgtype.UUID
	FullName string
	Phone    string
}

type Address struct {
	ID            pgtype.UUID
	UserID        pgtype.UUID
	Label         string
	RecipientName string
	Line1         string
	Line2         string
	City          string
	State         string
	PostalCode    string
	Country       string
	Phone         string
	IsDefault     bool
	CreatedAt     time.Time
}

type Review struct {
	ID        pgtype.UUID
	UserID    pgtype.UUID
	ProductID pgtype.UUID
	Rating    int16
	Title     string
	Body      string
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Cart struct {
	ID        pgtype.UUID
	UserID    pgtype.UUID
	Status    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type CartItem struct {
	ID        pgtype.UUID
	CartID    pgtype.UUID
	VariantID pgtype.UUID
	Quantity  int32
	UnitPrice decimal.Decimal
	AddedAt   time.Time
}

type Order struct {
	ID              pgtype.UUID
	UserID          pgtype.UUID
	CartID          pgtype.UUID
	Status          string
	PlacedAt        time.Time
	Currency        string
	TotalAmount     decimal.Decimal
	ShippingAddress []byte
	UpdatedAt       time.Time
}

type OrderItem struct {
	ID          pgtype.UUID
	OrderID     pgtype.UUID
	VariantID   pgtype.UUID
	ProductName string
	Sku         string
	UnitPrice   decimal.Decimal
	Quantity    int32
	LineTotal   decimal.Decimal
}

type Payment struct {
	ID        pgtype.UUID
	OrderID   pgtype.UUID
	Provider  string
	Amount    decimal.Decimal
	Status    string
	TxnRef    pgtype.Text
	PaidAt    pgtype.Timestamptz
	CreatedAt time.Time
	UpdatedAt time.Time
}
