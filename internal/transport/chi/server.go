// Package chi serves the ops endpoints (health, metrics, version) while an
// indexing run is in progress.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/cellindex/internal/metrics"
	healthuc "github.com/kailas-cloud/cellindex/internal/usecase/health"
	"github.com/kailas-cloud/cellindex/internal/version"
)

// HealthChecker reports collaborator health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// Options configures the ops router.
type Options struct {
	Health   HealthChecker
	Gatherer prometheus.Gatherer
	HTTP     *metrics.HTTP
	APIKeys  []string
	Logger   *zap.Logger
}

// healthResponse is the /healthz body.
type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// errorResponse is the body of every error reply.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// NewRouter builds the ops router.
func NewRouter(opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(BearerAuthMiddleware(opts.APIKeys))
	r.Use(opts.HTTP.Middleware())

	r.Get("/healthz", healthHandler(opts.Health))
	r.Get("/version", versionHandler)
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return r
}

func healthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker == nil {
			writeJSON(w, http.StatusOK, healthResponse{Status: string(healthuc.Healthy), Checks: map[string]string{}})
			return
		}

		report := checker.Check(r.Context())
		checks := make(map[string]string, len(report.Checks))
		for k, v := range report.Checks {
			checks[k] = string(v)
		}

		status := http.StatusOK
		if report.Status == healthuc.Unhealthy {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, healthResponse{Status: string(report.Status), Checks: checks})
	}
}

func versionHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"version":    version.Version,
		"commit":     version.Commit,
		"build_date": version.Date,
	})
}

// Serve runs the ops server until ctx is canceled, then shuts it down.
func Serve(ctx context.Context, port int, handler http.Handler, logger *zap.Logger) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting ops server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("ops server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("ops server shutdown: %w", err)
	}
	logger.Info("Ops server stopped")
	return nil
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}
