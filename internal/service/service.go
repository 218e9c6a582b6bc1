package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/dukerupert/mercato/internal/domain"
	"github.com/dukerupert/mercato/internal/events"
	"github.com/dukerupert/mercato/internal/telemetry"
)

// Clock returns the current time. Services stamp placed_at, paid_at and
// updated_at from it rather than leaving them to the database.
type Clock func() time.Time

// Deps collects the collaborators shared by every ledger service.
// Zero values are replaced with working defaults.
type Deps struct {
	Logger    *slog.Logger
	Metrics   *telemetry.LedgerMetrics
	Publisher events.Publisher
	Clock     Clock
	Retry     RetryPolicy
}

func (d Deps) withDefaults() Deps {
	if d.Logger == nil {
		d.Logger = slog.New(slog.DiscardHandler)
	}
	if d.Publisher == nil {
		d.Publisher = events.NopPublisher{}
	}
	if d.Clock == nil {
		d.Clock = func() time.Time { return time.Now().UTC() }
	}
	if d.Retry == (RetryPolicy{}) {
		d.Retry = DefaultRetryPolicy
	}
	return d
}

// fail passes domain errors through and turns anything else into EINTERNAL,
// logging it and reporting it to Sentry.
func (d Deps) fail(op string, err error, attrs ...any) error {
	if err == nil {
		return nil
	}

	var de *domain.Error
	if errors.As(err, &de) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	d.Logger.Error("Ledger operation failed", append([]any{"op", op, "error", err}, attrs...)...)
	telemetry.CaptureOpError(err, op, nil)
	return domain.Internal(err, op, "Failed to complete "+op)
}

// publish sends an event for state that has already committed. A delivery
// failure is logged and otherwise ignored.
func (d Deps) publish(ctx context.Context, event events.Event) {
	if err := d.Publisher.Publish(ctx, event); err != nil {
		d.Logger.Warn("Failed to publish event",
			"type", event.Type,
			"order_id", event.OrderID,
			"error", err,
		)
	}
}
