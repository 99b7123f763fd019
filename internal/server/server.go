package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	v1 "locoboard/internal/api/v1"
	"locoboard/internal/app"
)

// Server is the HTTP server.
type Server struct {
	router *gin.Engine
	app    *app.App
	v1     *v1.Handler
	logger *slog.Logger

	mu   sync.Mutex
	http *http.Server
}

// NewServer builds the router over a wired App.
func NewServer(a *app.App) *Server {
	devMode := a.Config.Server.DevMode
	if devMode {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if devMode {
		router.Use(gin.Logger())
	}

	v1Handler := v1.NewHandler(v1.Options{
		Service: a.Service,
		Editor:  a.Editor,
		Logs:    logReader(a),
		Config:  a.Config,
		Labels:  a.Labels,
		Logger:  a.Logger,
	})

	s := &Server{
		router: router,
		app:    a,
		v1:     v1Handler,
		logger: a.Logger,
	}
	s.setupRoutes()
	return s
}

// logReader avoids handing a typed nil store to the handler.
func logReader(a *app.App) v1.LogReader {
	if a.Store == nil {
		return nil
	}
	return a.Store
}

func (s *Server) setupRoutes() {
	// CORS
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	if s.app.Metrics != nil {
		s.router.GET(s.app.Config.Metrics.Path, gin.WrapH(s.app.Metrics.Handler()))
	}

	api := s.router.Group("/api")
	{
		s.v1.RegisterRoutes(api)
	}

	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	})
}

// Handler returns the router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until Shutdown.
func (s *Server) Run(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.mu.Lock()
	s.http = srv
	s.mu.Unlock()

	s.logger.Info("listening", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve %s: %w", addr, err)
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.http
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
