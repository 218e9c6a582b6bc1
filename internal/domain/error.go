package domain

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// Error codes. A transport in front of the ledger maps them to its own
// status codes; the ledger itself never speaks HTTP.
const (
	ECONFLICT  = "conflict"  // state forbids the operation: stock, duplicate payment, inactive cart
	EINTERNAL  = "internal"  // storage or programming failure, details hidden
	EINVALID   = "invalid"   // caller input rejected
	ENOTFOUND  = "not_found" // referenced record does not exist
	EFORBIDDEN = "forbidden" // record belongs to another user
)

const internalMessage = "An internal error occurred. Please try again later."

// Error is the ledger's error type. Message is safe to show callers, Op
// names the operation ("order.place") for logs, and Err keeps the cause.
type Error struct {
	Code    string
	Message string
	Op      string
	Err     error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	// A sentinel re-tagged by WithOp carries itself as cause.
	if e.Err != nil && e.Err.Error() != e.Message {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

func newError(code, op, message string, cause error) *Error {
	return &Error{Code: code, Op: op, Message: message, Err: cause}
}

func asError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}

// ErrorCode returns the code of the first *Error in err's chain, EINTERNAL
// when there is none, and "" for nil.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	if e, ok := asError(err); ok {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage returns text suitable for a caller. Internal failures and
// foreign errors collapse to a generic message.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	if e, ok := asError(err); ok && e.Code != EINTERNAL {
		return e.Message
	}
	return internalMessage
}

// ErrorOp returns the operation recorded on err, if any.
func ErrorOp(err error) string {
	if e, ok := asError(err); ok {
		return e.Op
	}
	return ""
}

func IsCode(err error, code string) bool {
	return ErrorCode(err) == code
}

func Errorf(code, op, format string, args ...interface{}) error {
	return newError(code, op, fmt.Sprintf(format, args...), nil)
}

// WrapError attaches a code and caller message to err. Sentinels stay
// matchable through errors.Is. A nil err yields nil.
func WrapError(err error, code, op, message string) error {
	if err == nil {
		return nil
	}
	return newError(code, op, message, err)
}

// WithOp tags a sentinel with the operation that returned it.
// errors.Is(WithOp(ErrCartNotActive, op), ErrCartNotActive) holds.
func WithOp(sentinel *Error, op string) error {
	return newError(sentinel.Code, op, sentinel.Message, sentinel)
}

func NotFound(op, resource, identifier string) error {
	return newError(ENOTFOUND, op, fmt.Sprintf("%s not found: %s", resource, identifier), nil)
}

func Invalid(op, message string) error {
	return newError(EINVALID, op, message, nil)
}

// Internal wraps a storage or programming failure. Only the cause is logged;
// callers see the generic message.
func Internal(err error, op, message string) error {
	return newError(EINTERNAL, op, message, err)
}

// ValidationError collects per-field input failures. It unwraps to an
// EINVALID *Error so ErrorCode treats it like any other rejected input.
type ValidationError struct {
	Fields map[string]string
	Op     string
}

func (e *ValidationError) Error() string {
	prefix := ""
	if e.Op != "" {
		prefix = e.Op + ": "
	}
	if len(e.Fields) == 1 {
		field := slices.Collect(maps.Keys(e.Fields))[0]
		return prefix + field + ": " + e.Fields[field]
	}
	return fmt.Sprintf("%svalidation failed for %d fields", prefix, len(e.Fields))
}

func (e *ValidationError) Unwrap() error {
	return newError(EINVALID, e.Op, e.Error(), nil)
}

func NewValidationError(op, field, message string) error {
	return NewFieldsError(op, map[string]string{field: message})
}

func NewFieldsError(op string, fields map[string]string) error {
	return &ValidationError{Op: op, Fields: fields}
}

func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// GetValidationFields returns the field messages of a ValidationError in
// err's chain, or nil.
func GetValidationFields(err error) map[string]string {
	var ve *ValidationError
	if !errors.As(err, &ve) {
		return nil
	}
	return ve.Fields
}

var (
	// ErrConflictRetry is returned once a transient conflict, such as two
	// requests racing to create the same active cart, exhausts its retries.
	ErrConflictRetry = &Error{Code: ECONFLICT, Message: "Concurrent update conflict, please retry"}

	// ErrReferentialIntegrity blocks deleting a row that others still reference.
	ErrReferentialIntegrity = &Error{Code: ECONFLICT, Message: "Record is still referenced and cannot be deleted"}
)

// IsRetryable reports whether the whole transaction behind err may be run
// again: ErrConflictRetry, or a storage error whose Temporary method says so
// (serialization failure, deadlock).
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrConflictRetry) {
		return true
	}
	var t interface{ Temporary() bool }
	return errors.As(err, &t) && t.Temporary()
}
