// Package server exposes the HTTP API: health, readiness, metrics, the live
// score widget (JSON and websocket) for stream overlays, and a small admin
// surface for inspecting sessions and guild profiles. Requests carry a
// correlation ID and a server span named after the matched chi route.
package server

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/onnwee/sokuji-bot/widget"
)

// Options configures the router's protection layers.
type Options struct {
	AdminUsername string
	AdminPassword string
	AdminToken    string

	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	CORSPermissive     bool
	CORSAllowedOrigins []string
}

// NewRouter returns the HTTP handler with all routes. ctx bounds the rate
// limiter's cleanup goroutine and open widget streams.
func NewRouter(ctx context.Context, db *sql.DB, store Store, hub *widget.Hub, opts Options) http.Handler {
	authCfg := newAuthConfig(opts)
	limiter := newIPRateLimiter(ctx, newRateLimiterConfig(opts))
	h := NewHandlers(ctx, db, store, hub)

	r := chi.NewRouter()
	r.Use(withCORS(newCORSConfig(opts)))
	r.Use(correlate)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", h.HandleHealthz)
	r.Get("/readyz", h.HandleReadyz)
	r.Get("/status", h.HandleStatus)

	r.Group(func(r chi.Router) {
		r.Use(rateLimit(limiter))
		r.Get("/sokuji", h.HandleWidget)
		r.Get("/sokuji/ws", h.HandleWidgetWS)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Use(adminAuth(authCfg))
		r.Use(rateLimit(limiter))
		r.Get("/sessions/{id}", h.HandleAdminSession)
		r.Get("/channels/{channelID}", h.HandleAdminChannel)
		r.Get("/guilds/{guildID}", h.HandleAdminGuild)
		r.Put("/guilds/{guildID}", h.HandleAdminGuild)
	})
	return r
}

// Start runs the HTTP server and shuts down gracefully on context cancellation.
func Start(ctx context.Context, handler http.Handler, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		// No WriteTimeout: widget websockets outlive any fixed deadline and
		// bound their own writes.
		IdleTimeout: 60 * time.Second,
	}

	// Shutdown goroutine
	go func() {
		<-ctx.Done()
		// Use WithoutCancel to inherit context values but allow shutdown to complete
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("http server shutdown error", slog.Any("err", err))
		}
	}()

	slog.Info("http server listening", slog.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("http server error", slog.Any("err", err))
		return err
	}
	return nil
}
