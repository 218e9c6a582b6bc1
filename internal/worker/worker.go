package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dukerupert/mercato/internal/domain"
	"github.com/dukerupert/mercato/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// Config holds cart sweeper configuration
type Config struct {
	// WorkerID identifies this sweeper in logs
	WorkerID string

	// PollInterval is how often to look for idle carts
	PollInterval time.Duration

	// IdleAfter is how long an active cart may go untouched before it is
	// abandoned
	IdleAfter time.Duration

	// BatchSize caps the carts abandoned per sweep
	BatchSize int

	// MaxConcurrency is the maximum number of carts abandoned at once
	MaxConcurrency int
}

// IdleCartLister finds active carts last touched before a cutoff.
type IdleCartLister interface {
	ListIdleCarts(ctx context.Context, arg repository.ListIdleCartsParams) ([]pgtype.UUID, error)
}

// CartSweeper abandons active carts that have sat idle past the cutoff, so
// a user's next visit starts a fresh cart.
type CartSweeper struct {
	config Config
	lister IdleCartLister
	carts  domain.CartService
	clock  func() time.Time
	logger *slog.Logger
}

// NewCartSweeper creates a sweeper. Zero config values take defaults.
func NewCartSweeper(lister IdleCartLister, carts domain.CartService, config Config, logger *slog.Logger) *CartSweeper {
	if config.WorkerID == "" {
		config.WorkerID = fmt.Sprintf("sweeper-%s", uuid.NewString()[:8])
	}
	if config.PollInterval == 0 {
		config.PollInterval = 5 * time.Minute
	}
	if config.IdleAfter == 0 {
		config.IdleAfter = 72 * time.Hour
	}
	if config.BatchSize == 0 {
		config.BatchSize = 100
	}
	if config.MaxConcurrency == 0 {
		config.MaxConcurrency = 4
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &CartSweeper{
		config: config,
		lister: lister,
		carts:  carts,
		clock:  func() time.Time { return time.Now().UTC() },
		logger: logger,
	}
}

// Start sweeps on every tick until ctx is cancelled. A failed sweep is
// logged and retried on the next tick.
func (w *CartSweeper) Start(ctx context.Context) error {
	w.logger.Info("cart sweeper starting",
		"worker_id", w.config.WorkerID,
		"poll_interval", w.config.PollInterval,
		"idle_after", w.config.IdleAfter,
	)

	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("cart sweeper shutting down", "worker_id", w.config.WorkerID)
			return ctx.Err()

		case <-ticker.C:
			if _, err := w.Sweep(ctx); err != nil && ctx.Err() == nil {
				w.logger.Error("cart sweep failed", "worker_id", w.config.WorkerID, "error", err)
			}
		}
	}
}

// Sweep abandons one batch of idle carts and returns how many it abandoned.
// A cart converted, abandoned or touched since it was listed is skipped:
// the idle cutoff is checked again under the cart's lock.
func (w *CartSweeper) Sweep(ctx context.Context) (int, error) {
	cutoff := w.clock().Add(-w.config.IdleAfter)
	ids, err := w.lister.ListIdleCarts(ctx, repository.ListIdleCartsParams{
		UpdatedBefore: cutoff,
		Limit:         int32(w.config.BatchSize),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to list idle carts: %w", err)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	var (
		abandoned atomic.Int32
		wg        sync.WaitGroup
		errMu     sync.Mutex
		errs      []error
	)
	sem := make(chan struct{}, w.config.MaxConcurrency)

	for _, id := range ids {
		select {
		case <-ctx.Done():
			wg.Wait()
			return int(abandoned.Load()), ctx.Err()
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(cartID string) {
			defer wg.Done()
			defer func() { <-sem }()

			_, err := w.carts.AbandonIdleCart(ctx, cartID, cutoff)
			switch {
			case err == nil:
				abandoned.Add(1)
			case errors.Is(err, domain.ErrCartNotActive),
				errors.Is(err, domain.ErrCartNotFound),
				errors.Is(err, domain.ErrCartNotIdle):
				w.logger.Debug("idle cart changed before sweep", "cart_id", cartID)
			default:
				errMu.Lock()
				errs = append(errs, fmt.Errorf("cart %s: %w", cartID, err))
				errMu.Unlock()
			}
		}(uuid.UUID(id.Bytes).String())
	}
	wg.Wait()

	n := int(abandoned.Load())
	w.logger.Info("cart sweep completed", "worker_id", w.config.WorkerID, "abandoned", n, "listed", len(ids))
	return n, errors.Join(errs...)
}
