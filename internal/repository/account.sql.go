package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

const createUser = `
INSERT INTO users (email, created_at)
VALUES ($1, $2)
RETURNING id, email, is_active, created_at
`

type CreateUserParams struct {
	Email     string
	CreatedAt time.Time
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRow(ctx, createUser, arg.Email, arg.CreatedAt)
	var i User
	err := row.Scan(&i.ID, &i.Email, &i.IsActive, &i.CreatedAt)
	return i, translateError(err)
}

const createUserProfile = `
INSERT INTO user_profiles (user_id, full_name, phone)
VALUES ($1, $2, $3)
RETURNING user_id, full_name, phone
`

type CreateUserProfileParams struct {
	UserID   pgtype.UUID
	FullName string
	Phone    string
}

func (q *Queries) CreateUserProfile(ctx context.Context, arg CreateUserProfileParams) (UserProfile, error) {
	row := q.db.QueryRow(ctx, createUserProfile, arg.UserID, arg.FullName, arg.Phone)
	var i UserProfile
	err := row.Scan(&i.UserID, &i.FullName, &i.Phone)
	return i, translateError(err)
}

const getUser = `
SELECT u.id, u.email, u.is_active, u.created_at,
       COALESCE(p.full_name, '') AS full_name,
       COALESCE(p.phone, '') AS phone
FROM users u
LEFT JOIN user_profiles p ON p.user_id = u.id
WHERE u.id = $1
`

type GetUserRow struct {
	ID        pgtype.UUID
	Email     string
	IsActive  bool
	CreatedAt time.Time
	FullName  string
	Phone     string
}

func (q *Queries) GetUser(ctx context.Context, id pgtype.UUID) (GetUserRow, error) {
	row := q.db.QueryRow(ctx, getUser, id)
	var i GetUserRow
	err := row.Scan(&i.ID, &i.Email, &i.IsActive, &i.CreatedAt, &i.FullName, &i.Phone)
	return i, translateError(err)
}

const addressColumns = `id, user_id, label, recipient_name, line1, line2, city, state, postal_code, country, phone, is_default, created_at`

func scanAddress(row rowScanner) (Address, error) {
	var i Address
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.Label,
		&i.RecipientName,
		&i.Line1,
		&i.Line2,
		&i.City,
		&i.State,
		&i.PostalCode,
		&i.Country,
		&i.Phone,
		&i.IsDefault,
		&i.CreatedAt,
	)
	return i, translateError(err)
}

const createAddress = `
INSERT INTO addresses (
    user_id, label, recipient_name, line1, line2, city, state,
    postal_code, country, phone, is_default, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
RETURNING ` + addressColumns

type CreateAddressParams struct {
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

func (q *Queries) CreateAddress(ctx context.Context, arg CreateAddressParams) (Address, error) {
	return scanAddress(q.db.QueryRow(ctx, createAddress,
		arg.UserID,
		arg.Label,
		arg.RecipientName,
		arg.Line1,
		arg.Line2,
		arg.City,
		arg.State,
		arg.PostalCode,
		arg.Country,
		arg.Phone,
		arg.IsDefault,
		arg.CreatedAt,
	))
}

const clearDefaultAddress = `
UPDATE addresses SET is_default = FALSE
WHERE user_id = $1 AND is_default
`

func (q *Queries) ClearDefaultAddress(ctx context.Context, userID pgtype.UUID) error {
	_, err := q.db.Exec(ctx, clearDefaultAddress, userID)
	return translateError(err)
}

const countAddresses = `
SELECT count(*) FROM addresses WHERE user_id = $1
`

func (q *Queries) CountAddresses(ctx context.Context, userID pgtype.UUID) (int64, error) {
	row := q.db.QueryRow(ctx, countAddresses, userID)
	var count int64
	err := row.Scan(&count)
	return count, translateError(err)
}

const getAddress = `
SELECT ` + addressColumns + `
FROM addresses
WHERE id = $1
`

func (q *Queries) GetAddress(ctx context.Context, id pgtype.UUID) (Address, error) {
	return scanAddress(q.db.QueryRow(ctx, getAddress, id))
}

const listAddresses = `
SELECT ` + addressColumns + `
FROM addresses
WHERE user_id = $1
ORDER BY is_default DESC, created_at, id
`

func (q *Queries) ListAddresses(ctx context.Context, userID pgtype.UUID) ([]Address, error) {
	rows, err := q.db.Query(ctx, listAddresses, userID)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()
	var items []Address
	for rows.Next() {
		i, err := scanAddress(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err)
	}
	return items, nil
}
