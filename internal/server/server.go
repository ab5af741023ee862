package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/devfolio/devfolio/internal/config"
	apperrors "github.com/devfolio/devfolio/internal/errors"
	"github.com/devfolio/devfolio/internal/github"
	"github.com/devfolio/devfolio/internal/observability"
	"github.com/devfolio/devfolio/internal/ratelimit"
	"github.com/devfolio/devfolio/internal/server/handlers"
	servermw "github.com/devfolio/devfolio/internal/server/middleware"
)

// Deps are the collaborators the routes are built from. Nil fields get
// in-process defaults.
type Deps struct {
	Limiter     *ratelimit.Limiter
	Activity    github.ActivitySource
	ContactSink handlers.ContactSink
	Health      *handlers.HealthManager
}

// Server represents the HTTP server
type Server struct {
	cfg    *config.Config
	deps   Deps
	keyFn  ratelimit.KeyFunc
	router *chi.Mux
	server *http.Server
	host   string
	port   int
}

// New creates a new HTTP server instance
func New(cfg *config.Config, deps Deps) *Server {
	if deps.Limiter == nil {
		deps.Limiter = ratelimit.New(nil)
	}
	if deps.Health == nil {
		deps.Health = handlers.NewHealthManager(handlers.AppVersion)
	}

	r := chi.NewRouter()

	// Forwarded headers are only honoured behind a trusted proxy
	if cfg.RateLimit.TrustForwardedFor {
		r.Use(middleware.RealIP)
	}

	// Our custom middleware in correct order (RequestID → Metrics → Recovery → CORS)
	r.Use(servermw.RequestID)      // 1. Request ID (early for correlation)
	r.Use(servermw.RequestMetrics) // 2. Metrics (measure everything)
	r.Use(servermw.Recovery)       // 3. Panic recovery
	r.Use(servermw.CORS(servermw.CORSOptions{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: cfg.CORS.AllowedMethods,
		AllowedHeaders: cfg.CORS.AllowedHeaders,
		MaxAge:         cfg.CORS.MaxAge,
	}))

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		apperrors.RespondWithAPIError(w, req, apperrors.NewErrorResponse(
			apperrors.CodeNotFound, "The requested resource was not found", nil))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		apperrors.RespondWithAPIError(w, req, apperrors.NewErrorResponse(
			apperrors.CodeBadRequest, "The requested method is not allowed for this resource",
			map[string]any{"method": req.Method}))
	})

	s := &Server{
		cfg:    cfg,
		deps:   deps,
		keyFn:  ratelimit.DefaultKeyFunc(cfg.RateLimit.KeyHeader, cfg.RateLimit.TrustForwardedFor),
		router: r,
		host:   cfg.Server.Host,
		port:   cfg.Server.Port,
	}

	// Ensure handlers use the centralized error responder
	handlers.SetHTTPErrorResponder(HandleError)

	s.registerRoutes()

	return s
}

// Start starts the HTTP server and blocks until it stops. A clean Shutdown
// returns nil.
func (s *Server) Start() error {
	addr := net.JoinHostPort(s.host, strconv.Itoa(s.port))

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	if observability.ServerLogger != nil {
		observability.ServerLogger.Info("Starting HTTP server",
			zap.String("host", s.host),
			zap.Int("port", s.port),
			zap.String("addr", addr))
	}

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	if observability.ServerLogger != nil {
		observability.ServerLogger.Info("Shutting down HTTP server")
	}
	return s.server.Shutdown(ctx)
}

// Handler exposes the underlying router for testing and instrumentation
func (s *Server) Handler() http.Handler {
	return s.router
}

// Port returns the server port for testing
func (s *Server) Port() int {
	return s.port
}
