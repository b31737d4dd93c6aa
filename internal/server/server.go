// Package server provides the HTTP server setup and routing configuration.
package server

import (
	"context"
	"fmt"
	"net/http"

	"github.com/colinmarsh/segtrack/internal/api"
	"github.com/colinmarsh/segtrack/internal/config"
	"github.com/colinmarsh/segtrack/internal/demo"
	"github.com/colinmarsh/segtrack/internal/logger"
	"github.com/colinmarsh/segtrack/internal/middleware"
	"github.com/colinmarsh/segtrack/internal/syncstore"
	"github.com/colinmarsh/segtrack/internal/trackmetrics"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Server represents the HTTP server fronting the demo's status, health, and
// metrics endpoints. The stream it reports on is driven by its own
// goroutine started separately in cmd/trackerdemo — the server never calls
// into the tracker itself.
type Server struct {
	config *config.Config
	store  *syncstore.Store
	stream *demo.Stream
	sink   *trackmetrics.Sink
	router *gin.Engine
	server *http.Server
}

// New creates a new server instance.
func New(cfg *config.Config, store *syncstore.Store, stream *demo.Stream, sink *trackmetrics.Sink) *Server {
	return &Server{
		config: cfg,
		store:  store,
		stream: stream,
		sink:   sink,
	}
}

// setupRouter initializes the Gin router with middleware and routes
func (s *Server) setupRouter() {
	// Set Gin mode based on log level
	if s.config.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create new Gin router
	s.router = gin.New()

	// Add middleware stack
	s.router.Use(middleware.RequestLogger()) // Custom zerolog request logger
	s.router.Use(gin.Recovery())             // Panic recovery
	s.router.Use(cors.Default())             // CORS support (allows all origins)

	// Create API route group
	apiGroup := s.router.Group("/api")

	// Register service routes
	api.SetupHealthRoutes(apiGroup, s.store)
	api.SetupStatusRoutes(apiGroup, s.stream)

	// Prometheus scrape endpoint, outside the /api group per convention
	s.router.GET("/metrics", gin.WrapH(s.sink.Handler()))
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.setupRouter()

	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)

	s.server = &http.Server{
		Addr:           addr,
		Handler:        s.router,
		ReadTimeout:    s.config.Server.ReadTimeout,
		WriteTimeout:   s.config.Server.WriteTimeout,
		MaxHeaderBytes: 1 << 20, // 1 MB
	}

	logger.Log.Info().
		Str("host", s.config.Server.Host).
		Int("port", s.config.Server.Port).
		Msg("Starting HTTP server")

	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Log.Info().Msg("Shutting down server gracefully")

	if s.server != nil {
		if err := s.server.Shutdown(ctx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
	}

	logger.Log.Info().Msg("Server stopped")
	return nil
}
