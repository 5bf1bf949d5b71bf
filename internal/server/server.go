package server

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/SnapUI/backend/internal/api/http"
	"github.com/GriffinCanCode/SnapUI/backend/internal/api/middleware"
	"github.com/GriffinCanCode/SnapUI/backend/internal/api/ws"
	"github.com/GriffinCanCode/SnapUI/backend/internal/domain/session"
	"github.com/GriffinCanCode/SnapUI/backend/internal/generation"
	"github.com/GriffinCanCode/SnapUI/backend/internal/generation/prompts"
	"github.com/GriffinCanCode/SnapUI/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/SnapUI/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/SnapUI/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/SnapUI/backend/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/SnapUI/backend/internal/preview"
	"github.com/GriffinCanCode/SnapUI/backend/internal/preview/document"
	"github.com/GriffinCanCode/SnapUI/backend/internal/preview/sandbox"
)

// Server wraps the HTTP server and dependencies
type Server struct {
	router   *gin.Engine
	sessions *session.Manager
	pool     *sandbox.Pool
	logger   *logging.Logger
	config   *config.Config
	metrics  *monitoring.Metrics
}

// NewServer creates a new server instance
func NewServer(cfg *config.Config) (*Server, error) {
	// Initialize logger
	var logger *logging.Logger
	if cfg.Logging.Development {
		logger = logging.NewDevelopment()
	} else {
		logger = logging.NewDefault()
	}

	logger.Info("Initializing SnapUI Server",
		zap.String("port", cfg.Server.Port),
		zap.String("generation_model", cfg.Generation.Model),
	)

	// Initialize metrics first (needed by other components)
	metrics := monitoring.NewMetrics()

	// Prompt templates
	library, err := prompts.Load()
	if err != nil {
		return nil, err
	}

	// Generation service
	generator := generation.NewService(generation.NewGateway(cfg.Generation), library).
		WithLogger(logger).
		WithMetrics(metrics)

	// Session manager
	sessions := session.NewManager(cfg.Storage.Dir, cfg.Storage.Persistent).
		WithLogger(logger).
		WithMetrics(metrics)
	if err := sessions.Restore(); err != nil {
		logger.Warn("Failed to restore sessions", zap.Error(err))
	}

	// Preview pipeline with preflight pool
	pool, err := sandbox.NewPool(sandbox.Config{
		Timeout:       cfg.Preview.PreflightTimeout,
		EnableConsole: true,
		StubDOM:       true,
	}, cfg.Preview.PreflightPoolSize)
	if err != nil {
		return nil, err
	}

	previews := preview.NewService(document.NewBuilder(document.DefaultRuntimeRefs())).
		WithLogger(logger).
		WithMetrics(metrics).
		WithPreflight(pool, cfg.Preview.PreflightEvaluate)

	// Create router
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Add middleware
	tracer := tracing.New("snapui-backend", logger.Logger)
	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		router.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	// Create handlers
	handlers := http.NewHandlers(sessions, generator, previews, metrics)
	wsHandler := ws.NewHandler(sessions, generator).
		WithLogger(logger).
		WithMetrics(metrics)

	// Register routes
	router.GET("/", handlers.Root)
	router.GET("/health", handlers.Health)
	router.GET("/stats", handlers.Stats)

	// Generation
	router.POST("/upload-and-generate", handlers.UploadAndGenerate)
	router.POST("/chat", handlers.Chat)

	// Sessions
	router.GET("/sessions", handlers.ListSessions)
	router.GET("/sessions/:id", handlers.GetSession)
	router.DELETE("/sessions/:id", handlers.DeleteSession)

	// Preview
	router.POST("/preview", handlers.PreviewArtifact)
	router.GET("/preview/:session_id", handlers.PreviewSession)

	// WebSocket
	router.GET("/stream", wsHandler.HandleConnection)

	// Metrics endpoint (Prometheus exposition)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	logger.Info("Server initialized successfully")

	return &Server{
		router:   router,
		sessions: sessions,
		pool:     pool,
		logger:   logger,
		config:   cfg,
		metrics:  metrics,
	}, nil
}

// Run starts the HTTP server
func (s *Server) Run() error {
	addr := s.config.Server.Host + ":" + s.config.Server.Port
	s.logger.Info("Starting HTTP server", zap.String("addr", addr))
	return s.router.Run(addr)
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Close gracefully shuts down the server
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")

	if s.pool != nil {
		if err := s.pool.Close(); err != nil {
			s.logger.Error("Failed to close preflight pool", zap.Error(err))
		}
	}

	// Sync logger before exit
	s.logger.Sync()

	return nil
}
