package domain

import (
	"context"
	"time"

	"github.com/dukerupert/mercato/internal/address"
	"github.com/jackc/pgx/v5/pgtype"
)

var (
	ErrUserNotFound    = &Error{Code: ENOTFOUND, Message: "User not found"}
	ErrAddressNotFound = &Error{Code: ENOTFOUND, Message: "Address not found"}
	ErrEmailTaken      = &Error{Code: ECONFLICT, Message: "Email is already registered"}
)

// User is a customer account with its profile.
type User struct {
	ID        pgtype.UUID
	Email     string
	FullName  string
	Phone     string
	IsActive  bool
	CreatedAt time.Time
}

// SavedAddress is an address stored in a user's address book.
type SavedAddress struct {
	ID        pgtype.UUID
	UserID    pgtype.UUID
	Address   address.Address
	IsDefault bool
	CreatedAt time.Time
}

// AccountService manages users and their address books.
type AccountService interface {
	CreateUser(ctx context.Context, email, fullName, phone string) (*User, error)
	GetUser(ctx context.Context, userID string) (*User, error)

	// AddAddress stores an address. The first address, or one added with
	// makeDefault, becomes the default and clears the previous default.
	AddAddress(ctx context.Context, userID string, addr address.Address, makeDefault bool) (*SavedAddress, error)
	ListAddresses(ctx context.Context, userID string) ([]SavedAddress, error)
	GetAddress(ctx context.Context, addressID string) (*SavedAddress, error)
}
