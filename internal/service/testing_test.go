package service

import (
	"log/slog"
	"time"

	"github.com/dukerupert/mercato/internal/events"
	"github.com/dukerupert/mercato/internal/repository"
	"github.com/dukerupert/mercato/internal/telemetry"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
)

var testNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

// newID returns a fresh identifier in both its storage and API forms.
func newID() (pgtype.UUID, string) {
	u := uuid.New()
	return pgtype.UUID{Bytes: u, Valid: true}, u.String()
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// testEnv bundles the collaborators every service test needs.
type testEnv struct {
	deps    Deps
	events  *events.RecordingPublisher
	metrics *telemetry.LedgerMetrics
}

func newTestEnv() testEnv {
	rec := &events.RecordingPublisher{}
	m := telemetry.NewLedgerMetrics(prometheus.NewRegistry(), "test")
	return testEnv{
		deps: Deps{
			Logger:    slog.New(slog.DiscardHandler),
			Metrics:   m,
			Publisher: rec,
			Clock:     func() time.Time { return testNow },
			Retry:     RetryPolicy{MaxRetries: 2, Delay: time.Millisecond},
		},
		events:  rec,
		metrics: m,
	}
}

// constraintErr builds the error the repository returns when PostgreSQL
// rejects a statement.
func constraintErr(kind error, constraint string) error {
	code := map[error]string{
		repository.ErrUniqueViolation:     "23505",
		repository.ErrForeignKeyViolation: "23503",
		repository.ErrCheckViolation:      "23514",
		repository.ErrSerialization:       "40001",
	}[kind]
	return &repository.ConstraintError{
		Kind:       kind,
		Constraint: constraint,
		Err:        &pgconn.PgError{Code: code, ConstraintName: constraint},
	}
}
