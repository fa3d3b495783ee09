package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "partsbot/docs" // swagger docs
	"partsbot/pkg/handlers"
	"partsbot/pkg/logger"
	"partsbot/pkg/metrics"
	"partsbot/pkg/middleware"
)

// Server constants
const (
	DefaultReadTimeout = 30 * time.Second
	// Stock confirmations hold the response open for up to their max wait
	// (3h by default), so writes are not bounded here.
	DefaultWriteTimeout = 0
	DefaultIdleTimeout  = 120 * time.Second
	ServiceName         = "partsbot"
)

// Config holds HTTP server configuration
type Config struct {
	Address     string
	Port        int
	Development bool
}

// HTTPServer represents the HTTP server component
type HTTPServer struct {
	server     *http.Server
	router     *gin.Engine
	config     *Config
	handlerSvc *handlers.HandlerService
}

// NewHTTPServer creates a new HTTP server instance
func NewHTTPServer(config *Config, handlerSvc *handlers.HandlerService) *HTTPServer {
	logger.Info("Initializing HTTP server", zap.String("address", config.Address), zap.Int("port", config.Port))

	if !config.Development {
		gin.SetMode(gin.ReleaseMode)
	}

	server := &HTTPServer{
		router:     NewRouter(handlerSvc),
		config:     config,
		handlerSvc: handlerSvc,
	}

	addr := fmt.Sprintf("%s:%d", config.Address, config.Port)
	server.server = &http.Server{
		Addr:         addr,
		Handler:      server.router,
		ReadTimeout:  DefaultReadTimeout,
		WriteTimeout: DefaultWriteTimeout,
		IdleTimeout:  DefaultIdleTimeout,
	}

	logger.Info("HTTP server initialized", zap.String("listen_addr", addr))
	return server
}

// NewRouter builds the gin engine with middleware and every route
func NewRouter(h *handlers.HandlerService) *gin.Engine {
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.GinZapLogger(),
		middleware.ErrorHandler(),
		middleware.Recovery(),
		cors.New(cors.Config{
			AllowAllOrigins: true,
			AllowMethods:    []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:    []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
			ExposeHeaders:   []string{"X-Request-ID"},
			MaxAge:          12 * time.Hour,
		}),
	)

	setupRoutes(r, h)
	return r
}

// setupRoutes configures all HTTP routes
func setupRoutes(r *gin.Engine, h *handlers.HandlerService) {
	r.GET("/health", h.HealthCheck)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Product endpoints live under the configured prefix ("/consulta" by default)
	product := r.Group("/" + h.Prefix())
	{
		product.GET("/:codigo", h.SearchProduct)
		product.GET("/:codigo/stock-confirm", h.ConfirmStock)
		product.GET("/:codigo/stock-check-fast", h.ConfirmStock)
		product.POST("/:codigo/add-to-cart", h.AddToCart)
		product.POST("/:codigo/cart-confirm", h.CartConfirm)
	}

	r.POST("/compra", h.Purchase)

	orders := r.Group("/orders")
	{
		orders.GET("", h.ListOrders)
		orders.GET("/:id", h.GetOrder)
	}

	r.GET("/system/status", h.GetStatus)

	sched := r.Group("/scheduler")
	{
		sched.GET("/status", h.GetSchedulerStatus)
		sched.GET("/jobs", h.GetScheduledJobs)
		sched.POST("/jobs/:id/run", h.TriggerScheduledJob)
	}

	logger.Info("HTTP routes configured", zap.String("prefix", "/"+h.Prefix()))
}

// Handler exposes the router, mainly for tests
func (s *HTTPServer) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server and blocks until it stops
func (s *HTTPServer) Start() error {
	logger.Info("Starting HTTP server", zap.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	logger.Info("Shutting down HTTP server")

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("HTTP server shutdown failed: %w", err)
	}

	return nil
}
