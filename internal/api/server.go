package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/luispater/storefrontBot/internal/config"
	"github.com/luispater/storefrontBot/internal/event"
	log "github.com/sirupsen/logrus"
)

// Server represents the API server
type Server struct {
	engine    *gin.Engine
	server    *http.Server
	queue     *RequestQueue
	processor *BrowserProcessor
	handlers  *APIHandlers
}

// ServerConfig contains configuration for the API server
type ServerConfig struct {
	Port     string
	Debug    bool
	Browser  Browser
	Recorder *event.Recorder
}

// NewServer creates a new API server instance
func NewServer(config *ServerConfig, appConfig *config.AppConfig) *Server {
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	processor := NewBrowserProcessor(appConfig, config.Browser)
	queue := NewRequestQueue(processor)
	handlers := NewAPIHandlers(appConfig, queue, config.Recorder)

	engine := gin.New()
	engine.Use(gin.Logger())
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())

	s := &Server{
		engine:    engine,
		queue:     queue,
		processor: processor,
		handlers:  handlers,
	}
	s.setupRoutes()

	s.server = &http.Server{
		Addr:    ":" + config.Port,
		Handler: engine,
	}

	return s
}

func (s *Server) setupRoutes() {
	v1 := s.engine.Group("/v1")
	{
		v1.POST("/load", s.handlers.Load)
		v1.GET("/screenshot", s.handlers.Screenshot)
		v1.POST("/pdf", s.handlers.PDF)
		v1.POST("/reset", s.handlers.Reset)
		v1.POST("/relaunch", s.handlers.Relaunch)
		v1.GET("/events", s.handlers.Events)
	}

	s.engine.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Storefront Bot API Server",
			"version": "1.0.0",
			"endpoints": []string{
				"POST /v1/load",
				"GET /v1/screenshot",
				"POST /v1/pdf",
				"POST /v1/reset",
				"POST /v1/relaunch",
				"GET /v1/events",
			},
		})
	})
}

// Handler exposes the routed engine.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// StartQueue starts the task queue without listening.
func (s *Server) StartQueue() error {
	if err := s.queue.Start(); err != nil {
		return fmt.Errorf("failed to start request queue: %v", err)
	}
	return nil
}

// Start starts the API server
func (s *Server) Start() error {
	if err := s.StartQueue(); err != nil {
		return err
	}

	log.Debugf("Starting API server on %s", s.server.Addr)

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %v", err)
	}

	return nil
}

// Stop gracefully stops the API server
func (s *Server) Stop(ctx context.Context) error {
	log.Debug("Stopping API server...")

	if err := s.queue.Stop(); err != nil {
		log.Debugf("Error stopping request queue: %v", err)
	}

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %v", err)
	}

	log.Debug("API server stopped")
	return nil
}

// corsMiddleware adds CORS headers
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
