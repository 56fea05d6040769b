// Package server provides the HTTP server implementation.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/employee-api/internal/apidocs"
	"github.com/vyrodovalexey/employee-api/internal/auth"
	"github.com/vyrodovalexey/employee-api/internal/config"
	"github.com/vyrodovalexey/employee-api/internal/events"
	"github.com/vyrodovalexey/employee-api/internal/handler"
	"github.com/vyrodovalexey/employee-api/internal/middleware"
	"github.com/vyrodovalexey/employee-api/internal/store"
	"github.com/vyrodovalexey/employee-api/internal/version"
)

// ErrNilStore is returned by New when no store is supplied.
var ErrNilStore = errors.New("server: store is required")

// Deps are the collaborators the server routes requests to.
type Deps struct {
	Store store.Store

	// Publisher receives change events. Defaults to Hub, or to a no-op
	// publisher when Hub is nil. Deliveries are always counted.
	Publisher events.Publisher

	// Hub feeds the WebSocket change feed. Nil disables the feed.
	Hub *events.Hub

	// Authenticator protects the API. Nil disables authentication.
	Authenticator auth.Authenticator
}

// Server represents the HTTP server.
type Server struct {
	httpServer  *http.Server
	router      *mux.Router
	config      *config.Config
	logger      *zap.Logger
	feedHandler *handler.FeedHandler
}

// New creates a new Server instance.
func New(cfg *config.Config, logger *zap.Logger, deps Deps) (*Server, error) {
	if deps.Store == nil {
		return nil, ErrNilStore
	}

	s := &Server{
		router: mux.NewRouter(),
		config: cfg,
		logger: logger,
	}

	s.setupMiddleware(deps.Authenticator)

	if err := s.setupRoutes(deps); err != nil {
		return nil, err
	}

	s.setupHTTPServer()

	return s, nil
}

// setupMiddleware configures the middleware chain.
func (s *Server) setupMiddleware(authenticator auth.Authenticator) {
	// First applied is outermost.
	s.router.Use(mux.MiddlewareFunc(middleware.Recovery(s.logger)))
	s.router.Use(mux.MiddlewareFunc(middleware.RequestID()))

	if s.config.MetricsEnabled {
		s.router.Use(mux.MiddlewareFunc(middleware.Metrics()))
	}

	s.router.Use(mux.MiddlewareFunc(middleware.Logging(s.logger)))
	s.router.Use(mux.MiddlewareFunc(middleware.CORS(middleware.DefaultCORSConfig())))

	if authenticator != nil {
		s.router.Use(mux.MiddlewareFunc(middleware.Auth(authenticator, s.logger)))
	}
}

// setupRoutes configures the API routes.
func (s *Server) setupRoutes(deps Deps) error {
	handler.NewHealthHandler(deps.Store, version.Version(), s.logger).RegisterRoutes(s.router)

	if s.config.MetricsEnabled {
		s.router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	}

	if s.config.DocsEnabled {
		docs, err := apidocs.NewHandler(apidocs.Build(apidocs.DefaultInfo(version.Version())), s.logger)
		if err != nil {
			return fmt.Errorf("building api docs: %w", err)
		}
		docs.RegisterRoutes(s.router)
	}

	publisher := deps.Publisher
	if publisher == nil && deps.Hub != nil {
		publisher = deps.Hub
	}

	// The feed shares the /employees/ prefix and must win over /employees/{id},
	// also when it is disabled.
	if s.config.FeedEnabled && deps.Hub != nil {
		s.feedHandler = handler.NewFeedHandler(deps.Hub, s.logger)
		s.feedHandler.RegisterRoutes(s.router)
	} else {
		s.router.Handle(handler.FeedPath, http.NotFoundHandler()).Name("feed-disabled")
	}

	employees := handler.NewEmployeeHandler(deps.Store, events.Counted(publisher), s.logger, handler.Options{
		LinkBaseURL: s.config.LinkBaseURL,
	})
	employees.RegisterRoutes(s.router)

	// Preflight requests are answered by the CORS middleware; mux only runs
	// middleware on a matched route.
	s.router.Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	return nil
}

// setupHTTPServer configures the HTTP server.
func (s *Server) setupHTTPServer() {
	s.httpServer = &http.Server{
		Addr:              s.config.Address(),
		Handler:           s.router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.logger.Info("starting server",
		zap.String("address", s.config.Address()),
		zap.Bool("metrics_enabled", s.config.MetricsEnabled),
		zap.Bool("docs_enabled", s.config.DocsEnabled),
		zap.Bool("feed_enabled", s.feedHandler != nil),
	)

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server listen and serve: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server. Feed connections are closed
// first because they never finish on their own.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down server")

	if s.feedHandler != nil {
		s.feedHandler.CloseAllConnections()
	}

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	s.logger.Info("server shutdown complete")
	return nil
}

// Router returns the server's router.
func (s *Server) Router() *mux.Router {
	return s.router
}
