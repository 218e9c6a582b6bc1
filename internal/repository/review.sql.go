package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

const reviewColumns = `id, user_id, product_id, rating, title, body, status, created_at, updated_at`

func scanReview(row rowScanner) (Review, error) {
	var i Review
	err := row.Scan(
		&i.ID,
		&i.UserID,
		&i.ProductID,
		&i.Rating,
		&i.Title,
		&i.Body,
		&i.Status,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, translateError(err)
}

const createReview = `
INSERT INTO reviews (user_id, product_id, rating, title, body, status, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, 'published', $6, $6)
RETURNING ` + reviewColumns

type CreateReviewParams struct {
	UserID    pgtype.UUID
	ProductID pgtype.UUID
	Rating    int16
	Title     string
	Body      string
	CreatedAt time.Time
}

func (q *Queries) CreateReview(ctx context.Context, arg CreateReviewParams) (Review, error) {
	return scanReview(q.db.QueryRow(ctx, createReview,
		arg.UserID,
		arg.ProductID,
		arg.Rating,
		arg.Title,
		arg.Body,
		arg.CreatedAt,
	))
}

const getReview = `
SELECT ` + reviewColumns + `
FROM reviews
WHERE id = $1
`

func (q *Queries) GetReview(ctx context.Context, id pgtype.UUID) (Review, error) {
	return scanReview(q.db.QueryRow(ctx, getReview, id))
}

const updateReviewStatus = `
UPDATE reviews
SET status = $2, updated_at = $3
WHERE id = $1
RETURNING ` + reviewColumns

type UpdateReviewStatusParams struct {
	ID        pgtype.UUID
	Status    string
	UpdatedAt time.Time
}

func (q *Queries) UpdateReviewStatus(ctx context.Context, arg UpdateReviewStatusParams) (Review, error) {
	return scanReview(q.db.QueryRow(ctx, updateReviewStatus, arg.ID, arg.Status, arg.UpdatedAt))
}

const listPublishedReviews = `
SELECT ` + reviewColumns + `
FROM reviews
WHERE product_id = $1 AND status = 'published'
ORDER BY created_at DESC, id
LIMIT $2
`

type ListPublishedReviewsParams struct {
	ProductID pgtype.UUID
	Limit     int32
}

func (q *Queries) ListPublishedReviews(ctx context.Context, arg ListPublishedReviewsParams) ([]Review, error) {
	rows, err := q.db.Query(ctx, listPublishedReviews, arg.ProductID, arg.Limit)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()
	var items []Review
	for rows.Next() {
		i, err := scanReview(rows)
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
