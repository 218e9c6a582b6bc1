package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error classes the ledger reacts to.
const (
	pgUniqueViolation      = "23505"
	pgForeignKeyViolation  = "23503"
	pgCheckViolation       = "23514"
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

var (
	ErrUniqueViolation     = errors.New("unique constraint violation")
	ErrForeignKeyViolation = errors.New("foreign key violation")
	ErrCheckViolation      = errors.New("check constraint violation")
	ErrSerialization       = errors.New("serialization failure")
)

// ConstraintError is a storage-level rejection. Kind is one of the Err*
// values above and matches via errors.Is; the driver error stays reachable
// via errors.As.
type ConstraintError struct {
	Kind       error
	Constraint string
	Table      string
	Detail     string
	Err        error
}

func (e *ConstraintError) Error() string {
	if e.Constraint != "" {
		return fmt.Sprintf("%v (%s): %v", e.Kind, e.Constraint, e.Err)
	}
	return fmt.Sprintf("%v: %v", e.Kind, e.Err)
}

func (e *ConstraintError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// Temporary reports whether the statement can succeed if the transaction
// is retried from the start.
func (e *ConstraintError) Temporary() bool {
	return e.Kind == ErrSerialization
}

// translateError maps driver errors onto the Err* kinds. Anything else,
// pgx.ErrNoRows included, is returned unchanged.
func translateError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	var kind error
	switch pgErr.Code {
	case pgUniqueViolation:
		kind = ErrUniqueViolation
	case pgForeignKeyViolation:
		kind = ErrForeignKeyViolation
	case pgCheckViolation:
		kind = ErrCheckViolation
	case pgSerializationFailure, pgDeadlockDetected:
		kind = ErrSerialization
	default:
		return err
	}

	return &ConstraintError{
		Kind:       kind,
		Constraint: pgErr.ConstraintName,
		Table:      pgErr.TableName,
		Detail:     pgErr.Detail,
		Err:        err,
	}
}

// IsConstraint reports whether err is a storage rejection of the given kind
// raised by the named constraint. An empty name matches any constraint.
func IsConstraint(err error, kind error, constraint string) bool {
	var ce *ConstraintError
	if !errors.As(err, &ce) || ce.Kind != kind {
		return false
	}
	return constraint == "" || ce.Constraint == constraint
}
