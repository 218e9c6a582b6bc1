package service

import (
	"errors"
	"math"

	"github.com/dukerupert/mercato/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// parseUUID converts an API identifier into a pgtype.UUID.
func parseUUID(op, field, id string) (pgtype.UUID, error) {
	var u pgtype.UUID
	if err := u.Scan(id); err != nil || !u.Valid {
		return pgtype.UUID{}, domain.NewValidationError(op, field, "must be a valid UUID")
	}
	return u, nil
}

func uuidString(id pgtype.UUID) string {
	if !id.Valid {
		return ""
	}
	return uuid.UUID(id.Bytes).String()
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// toQuantity validates a line quantity.
func toQuantity(op string, quantity int) (int32, error) {
	if quantity < 1 || quantity > math.MaxInt32 {
		return 0, domain.WithOp(domain.ErrInvalidQuantity, op)
	}
	return int32(quantity), nil
}

func listLimit(limit int) int32 {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return int32(limit)
}

func asInsufficient(err error) (*domain.InsufficientStockError, bool) {
	var ise *domain.InsufficientStockError
	if errors.As(err, &ise) {
		return ise, true
	}
	return nil, false
}
