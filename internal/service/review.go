package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/dukerupert/mercato/internal/domain"
	"github.com/dukerupert/mercato/internal/repository"
)

type reviewService struct {
	store repository.Store
	deps  Deps
}

func NewReviewService(store repository.Store, deps Deps) domain.ReviewService {
	return &reviewService{
		store: store,
		deps:  deps.withDefaults(),
	}
}

// SubmitReview publishes a review. A user may review a product once.
func (s *reviewService) SubmitReview(ctx context.Context, params domain.SubmitReviewParams) (*domain.Review, error) {
	const op = "review.submit"

	if params.Rating < 1 || params.Rating > 5 {
		return nil, domain.WithOp(domain.ErrInvalidRating, op)
	}
	userID, err := parseUUID(op, "user_id", params.UserID)
	if err != nil {
		return nil, err
	}
	productID, err := parseUUID(op, "product_id", params.ProductID)
	if err != nil {
		return nil, err
	}

	review, err := s.store.CreateReview(ctx, repository.CreateReviewParams{
		UserID:    userID,
		ProductID: productID,
		Rating:    int16(params.Rating),
		Title:     strings.TrimSpace(params.Title),
		Body:      strings.TrimSpace(params.Body),
		CreatedAt: s.deps.Clock(),
	})
	if err != nil {
		switch {
		case repository.IsConstraint(err, repository.ErrUniqueViolation, repository.ConstraintReviewPerUser):
			return nil, domain.WithOp(domain.ErrDuplicateReview, op)
		case repository.IsConstraint(err, repository.ErrForeignKeyViolation, repository.ConstraintReviewUser):
			return nil, domain.WithOp(domain.ErrUserNotFound, op)
		case repository.IsConstraint(err, repository.ErrForeignKeyViolation, repository.ConstraintReviewProduct):
			return nil, domain.WithOp(domain.ErrProductNotFound, op)
		}
		return nil, s.deps.fail(op, fmt.Errorf("failed to create review: %w", err), "product_id", params.ProductID)
	}

	r := toReview(review)
	return &r, nil
}

func (s *reviewService) HideReview(ctx context.Context, reviewID string) (*domain.Review, error) {
	const op = "review.hide"

	id, err := parseUUID(op, "review_id", reviewID)
	if err != nil {
		return nil, err
	}

	review, err := s.store.UpdateReviewStatus(ctx, repository.UpdateReviewStatusParams{
		ID:        id,
		Status:    string(domain.ReviewStatusHidden),
		UpdatedAt: s.deps.Clock(),
	})
	if err != nil {
		if isNoRows(err) {
			return nil, domain.WithOp(domain.ErrReviewNotFound, op)
		}
		return nil, s.deps.fail(op, err, "review_id", reviewID)
	}

	s.deps.Logger.Info("Review hidden", "review_id", reviewID)
	r := toReview(review)
	return &r, nil
}

// ListProductReviews returns published reviews, newest first.
func (s *reviewService) ListProductReviews(ctx context.Context, productID string, limit int) ([]domain.Review, error) {
	const op = "review.list"

	id, err := parseUUID(op, "product_id", productID)
	if err != nil {
		return nil, err
	}

	rows, err := s.store.ListPublishedReviews(ctx, repository.ListPublishedReviewsParams{
		ProductID: id,
		Limit:     listLimit(limit),
	})
	if err != nil {
		return nil, s.deps.fail(op, err, "product_id", productID)
	}

	reviews := make([]domain.Review, 0, len(rows))
	for _, row := range rows {
		reviews = append(reviews, toReview(row))
	}
	return reviews, nil
}
