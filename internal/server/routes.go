package server

import (
	"net/http"

	"github.com/fulmenhq/gofulmen/signals"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/devfolio/devfolio/internal/observability"
	"github.com/devfolio/devfolio/internal/ratelimit"
	"github.com/devfolio/devfolio/internal/server/handlers"
	servermw "github.com/devfolio/devfolio/internal/server/middleware"
)

// registerRoutes registers all HTTP routes
func (s *Server) registerRoutes() {
	health := s.deps.Health
	s.router.Get("/health", health.HealthHandler)
	s.router.Get("/health/live", health.LivenessHandler)
	s.router.Get("/health/ready", health.ReadinessHandler)
	s.router.Get("/health/startup", health.StartupHandler)

	s.router.Get("/version", handlers.VersionHandler)

	// Metrics endpoint (in server package to access HandleError)
	s.router.Get("/metrics", metricsHandler(s.cfg.Metrics.Port))

	s.router.Route("/api", func(r chi.Router) {
		contact := handlers.NewContactHandler(s.deps.ContactSink, s.cfg.Contact.MaxMessageLength, s.keyFn)
		r.With(s.rateLimit(ratelimit.ContactForm)).Method(http.MethodPost, "/contact", contact)

		activity := &handlers.ActivityHandler{Source: s.deps.Activity, Username: s.cfg.GitHub.Username}
		r.With(s.rateLimit(ratelimit.GitHubActivity)).Method(http.MethodGet, "/github/activity", activity)
	})

	// Admin signal endpoint (optional, requires server.admin_token)
	s.registerAdminEndpoint()
}

// rateLimit builds the limiter middleware for a route preset, applying any
// configured override. Disabled limiting passes requests straight through.
func (s *Server) rateLimit(preset ratelimit.Config) func(next http.Handler) http.Handler {
	if !s.cfg.RateLimit.Enabled {
		return func(next http.Handler) http.Handler { return next }
	}
	return servermw.RateLimit(s.deps.Limiter, s.cfg.RateLimit.Route(preset), s.keyFn)
}

// registerAdminEndpoint optionally registers the admin signal endpoint
func (s *Server) registerAdminEndpoint() {
	adminToken := s.cfg.Server.AdminToken
	logger := observability.ServerLogger

	if adminToken == "" {
		if logger != nil {
			logger.Debug("Admin signal endpoint disabled (no DEVFOLIO_SERVER_ADMIN_TOKEN set)")
		}
		return
	}

	// Create HTTP signal handler with bearer token auth and rate limiting
	handler := signals.NewHTTPHandler(signals.HTTPConfig{
		TokenAuth: adminToken,
		RateLimit: 10,  // 10 requests per minute
		RateBurst: 5,   // burst size
		Manager:   nil, // use default global manager
	})

	s.router.Post("/admin/signal", handler.ServeHTTP)

	if logger != nil {
		logger.Info("Admin signal endpoint enabled",
			zap.String("path", "/admin/signal"),
			zap.String("auth", "bearer token"),
			zap.String("rate_limit", "10/min, burst 5"))
		logger.Warn("Admin endpoint enabled - ensure this server is not exposed to public internet")
	}
}
