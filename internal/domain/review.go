package domain

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

var (
	ErrReviewNotFound  = &Error{Code: ENOTFOUND, Message: "Review not found"}
	ErrDuplicateReview = &Error{Code: ECONFLICT, Message: "You have already reviewed this product"}
	ErrInvalidRating   = &Error{Code: EINVALID, Message: "Rating must be between 1 and 5"}
)

type ReviewStatus string

const (
	ReviewStatusPublished ReviewStatus = "published"
	ReviewStatusHidden    ReviewStatus = "hidden"
)

type Review struct {
	ID        pgtype.UUID
	UserID    pgtype.UUID
	ProductID pgtype.UUID
	Rating    int16
	Title     string
	Body      string
	Status    ReviewStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

type SubmitReviewParams struct {
	UserID    string
	ProductID string
	Rating    int
	Title     string
	Body      string
}

// ReviewService manages product reviews, one per user and product.
type ReviewService interface {
	SubmitReview(ctx context.Context, params SubmitReviewParams) (*Review, error)
	HideReview(ctx context.Context, reviewID string) (*Review, error)

	// ListProductReviews returns published reviews, newest first.
	ListProductReviews(ctx context.Context, productID string, limit int) ([]Review, error)
}
