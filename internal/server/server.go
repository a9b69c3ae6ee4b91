package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tm-acme-shop/smartfold-composer/internal/config"
	"github.com/tm-acme-shop/smartfold-composer/internal/handlers"
	"github.com/tm-acme-shop/smartfold-composer/internal/logging"
	"go.uber.org/zap"
)

type Server struct {
	config     *config.Config
	router     *gin.Engine
	handlers   *handlers.Handlers
	metrics    http.Handler
	httpServer *http.Server
	logger     *zap.Logger
}

// New builds the router. metrics may be nil, in which case /metrics is not
// served.
func New(h *handlers.Handlers, cfg *config.Config, metrics http.Handler) *Server {
	router := gin.New()

	s := &Server{
		config:   cfg,
		router:   router,
		handlers: h,
		metrics:  metrics,
		logger:   logging.New("server"),
	}

	router.Use(gin.Recovery(), s.requestLogger())
	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handlers.Health)
	s.router.GET("/ready", s.handlers.Ready)
	s.router.GET("/live", s.handlers.Live)
	s.router.GET("/version", s.handlers.Version)
	if s.metrics != nil {
		s.router.GET("/metrics", gin.WrapH(s.metrics))
	}

	v1 := s.router.Group("/api/v1")
	{
		v1.GET("/rates", s.handlers.Rates)

		composer := v1.Group("/composer")
		composer.POST("/mount", s.handlers.Mount)
		composer.GET("", s.handlers.GetComposer)
		composer.DELETE("", s.handlers.ReleaseSession)
		composer.POST("/lines/weight", s.handlers.AddWeightLine)
		composer.POST("/lines/category", s.handlers.AddCategoryLine)
		composer.POST("/lines/premium", s.handlers.AddPremiumLine)
		composer.POST("/lines/preview", s.handlers.PreviewLine)
		composer.DELETE("/lines/:id", s.handlers.RemoveLine)
		composer.PUT("/express", s.handlers.SetExpress)
		composer.PUT("/premium-addon", s.handlers.SetPremiumAddon)
		composer.PUT("/dates", s.handlers.SetDates)
		composer.POST("/reset", s.handlers.Reset)
		composer.GET("/validation", s.handlers.Validation)
		composer.POST("/submit/preview", s.handlers.PreviewSubmit)
		composer.POST("/submit", s.handlers.Submit)
		composer.GET("/last-order", s.handlers.LastOrder)
		composer.POST("/repeat", s.handlers.RepeatLastOrder)
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("Request handled",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.String("session_id", c.GetHeader(handlers.SessionHeader)),
			zap.Duration("latency", time.Since(start)),
		)
	}
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens until the server is shut down.
func (s *Server) Start() error {
	s.logger.Info("Starting server", zap.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
