package router

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/mercato/internal/telemetry"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pinger reports whether the ledger database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// OpsConfig configures the operational endpoints.
type OpsConfig struct {
	Logger   *slog.Logger
	DB       Pinger
	Gatherer prometheus.Gatherer
	Metrics  *HTTPMetrics

	// SchemaVersion reports the applied migration version. Optional.
	SchemaVersion func(ctx context.Context) (int64, error)
}

const pingTimeout = 2 * time.Second

// NewOps builds the router serving /healthz and /metrics.
func NewOps(cfg OpsConfig) *Router {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	chain := []Middleware{RequestID, Recovery(logger), telemetry.SentryMiddleware(), Logger(logger)}
	if cfg.Metrics != nil {
		chain = append(chain, cfg.Metrics.Middleware)
	}
	r := New(chain...)

	r.Get("/healthz", healthz(cfg, logger))

	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	return r
}

type healthResponse struct {
	Status        string `json:"status"`
	Database      string `json:"database"`
	SchemaVersion int64  `json:"schema_version,omitempty"`
}

func healthz(cfg OpsConfig, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{Status: "ok", Database: "ok"}
		status := http.StatusOK

		ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
		defer cancel()
		if err := cfg.DB.Ping(ctx); err != nil {
			logger.Warn("Health check failed", "error", err)
			resp.Status, resp.Database = "unavailable", "unreachable"
			status = http.StatusServiceUnavailable
		}

		if cfg.SchemaVersion != nil && status == http.StatusOK {
			if v, err := cfg.SchemaVersion(ctx); err == nil {
				resp.SchemaVersion = v
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(resp)
	}
}
