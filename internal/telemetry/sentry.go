package telemetry

import (
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/getsentry/sentry-go"
)

const flushTimeout = 2 * time.Second

// SentryConfig controls error reporting. Reporting stays off unless Enabled
// is set and a DSN is present.
type SentryConfig struct {
	DSN              string
	Enabled          bool
	Environment      string
	Release          string
	SampleRate       float64 // 0 means report everything
	TracesSampleRate float64
	Debug            bool
}

var reporting atomic.Bool

// InitSentry configures the global Sentry hub for the ledger process. The
// returned func flushes queued events and is safe to defer even when
// reporting is off.
func InitSentry(cfg SentryConfig, logger *slog.Logger) (func(), error) {
	reporting.Store(false)
	noop := func() {}

	switch {
	case !cfg.Enabled:
		logger.Info("Error reporting disabled")
		return noop, nil
	case cfg.DSN == "":
		logger.Warn("SENTRY_ENABLED is set without SENTRY_DSN, error reporting disabled")
		return noop, nil
	}

	rate := cfg.SampleRate
	if rate == 0 {
		rate = 1.0
	}

	opts := sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          cfg.Release,
		SampleRate:       rate,
		TracesSampleRate: cfg.TracesSampleRate,
		Debug:            cfg.Debug,
		ServerName:       "mercato",
	}
	if err := sentry.Init(opts); err != nil {
		return nil, fmt.Errorf("init sentry: %w", err)
	}
	reporting.Store(true)

	logger.Info("Error reporting enabled",
		"environment", cfg.Environment,
		"release", cfg.Release,
		"sample_rate", rate,
	)

	return func() { sentry.Flush(flushTimeout) }, nil
}

// IsEnabled reports whether events are being sent.
func IsEnabled() bool {
	return reporting.Load()
}

// CaptureError reports err with optional extra context. It is a no-op while
// reporting is off.
func CaptureError(err error, extras ...map[string]interface{}) {
	var merged map[string]interface{}
	if len(extras) > 0 {
		merged = extras[0]
	}
	capture(err, nil, merged)
}

// CaptureOpError reports err tagged with the ledger operation that produced
// it, so events group by operation.
func CaptureOpError(err error, op string, extras map[string]interface{}) {
	capture(err, map[string]string{"op": op}, extras)
}

func capture(err error, tags map[string]string, extras map[string]interface{}) {
	if err == nil || !IsEnabled() {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTags(tags)
		scope.SetExtras(extras)
		sentry.CaptureException(err)
	})
}

// AddBreadcrumb records a trail entry attached to the next reported event.
func AddBreadcrumb(category, message string, data map[string]interface{}) {
	if !IsEnabled() {
		return
	}
	sentry.AddBreadcrumb(&sentry.Breadcrumb{
		Category:  category,
		Message:   message,
		Data:      data,
		Level:     sentry.LevelInfo,
		Timestamp: time.Now(),
	})
}

// SentryMiddleware binds a per-request hub to the context and reports panics
// before answering 500.
func SentryMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !IsEnabled() {
				next.ServeHTTP(w, r)
				return
			}

			hub := sentry.GetHubFromContext(r.Context())
			if hub == nil {
				hub = sentry.CurrentHub().Clone()
			}
			hub.Scope().SetRequest(r)
			ctx := sentry.SetHubOnContext(r.Context(), hub)

			defer func() {
				if rec := recover(); rec != nil {
					hub.RecoverWithContext(ctx, rec)
					hub.Flush(flushTimeout)
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				}
			}()

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
