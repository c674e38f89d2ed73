package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/lexiqai/speech-gateway/internal/config"
	"github.com/lexiqai/speech-gateway/internal/observability"
	"github.com/lexiqai/speech-gateway/internal/speech"
)

// NewRouter wires the gateway routes. client is shared by every upstream call.
func NewRouter(cfg *config.Config, logger zerolog.Logger, registry *speech.Registry, client speech.HTTPClient) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(hlog.NewHandler(logger))
	r.Use(correlationID)
	r.Use(hlog.AccessHandler(accessLog))
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", observability.HealthCheckHandler())
	r.Get("/ready", observability.ReadinessHandler(observability.HealthCheck{
		Name: "providers",
		Check: func(ctx context.Context) (bool, error) {
			if len(registry.Names()) == 0 {
				return false, errors.New("no providers registered")
			}
			return true, nil
		},
	}))

	if cfg.MetricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	speechH := NewSpeechHandler(registry, client, cfg.MaxRequestBytes)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/providers", speechH.Providers)
		r.With(RequireBearer).Post("/audio/speech", speechH.Speech)
		r.With(RequireBearer).Get("/voices", speechH.Voices)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeErrorMessage(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeErrorMessage(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	return r
}

// NewHTTPServer creates the listener-side server with timeouts from cfg.
func NewHTTPServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      handler,
		ReadTimeout:  config.Seconds(cfg.ReadTimeout),
		WriteTimeout: config.Seconds(cfg.WriteTimeout),
		IdleTimeout:  config.Seconds(cfg.IdleTimeout),
	}
}

// correlationID tags the request logger with chi's request ID, or a fresh
// UUID when none was assigned, and echoes it back to the caller.
func correlationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := chimiddleware.GetReqID(r.Context())
		if id == "" {
			id = observability.NewCorrelationID()
		}
		w.Header().Set("X-Request-ID", id)

		logger := hlog.FromRequest(r).With().Str("correlation_id", id).Logger()
		next.ServeHTTP(w, r.WithContext(logger.WithContext(r.Context())))
	})
}

func accessLog(r *http.Request, status, size int, duration time.Duration) {
	hlog.FromRequest(r).Info().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("remote_addr", r.RemoteAddr).
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Msg("Request handled")
}
