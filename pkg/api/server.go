// Package api implements the HTTP surface of the chat backend: session
// management, synchronous automation runs, provider discovery, export,
// and health.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/metric"

	"github.com/workflow-use/suitectl/pkg/config"
	"github.com/workflow-use/suitectl/pkg/executor"
	"github.com/workflow-use/suitectl/pkg/session"
)

// Server is the HTTP API server for the chat backend.
type Server struct {
	cfg      *config.Config
	sessions *session.Manager
	exec     *executor.Executor
	meter    metric.Meter

	httpSrv *http.Server
}

// NewServer creates a new API server.
func NewServer(cfg *config.Config, sessions *session.Manager, exec *executor.Executor, meter metric.Meter) *Server {
	return &Server{
		cfg:      cfg,
		sessions: sessions,
		exec:     exec,
		meter:    meter,
	}
}

// Router builds a gin engine with middleware and all routes attached.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(securityHeaders())
	router.Use(corsMiddleware(s.cfg.API.CORSOrigins))
	s.RegisterRoutes(router)
	return router
}

// RegisterRoutes attaches all API routes to the router.
func (s *Server) RegisterRoutes(router *gin.Engine) {
	router.GET("/health", s.healthHandler)

	chat := router.Group("/api/chat")
	{
		chat.POST("/sessions", s.createSessionHandler)
		chat.GET("/sessions", s.listSessionsHandler)
		chat.GET("/sessions/:id", s.getSessionHandler)
		chat.DELETE("/sessions/:id", s.deleteSessionHandler)
		chat.POST("/sessions/:id/messages", s.sendMessageHandler)
		chat.POST("/sessions/:id/cancel", s.cancelSessionHandler)
		chat.GET("/sessions/:id/export", s.exportSessionHandler)
		chat.GET("/sessions/:id/download", s.downloadSessionHandler)
		chat.GET("/providers", s.listProvidersHandler)
	}
}

// Start begins serving in a background goroutine. The returned channel
// receives the terminal server error, or nil after a clean shutdown.
func (s *Server) Start() <-chan error {
	s.httpSrv = &http.Server{
		Addr:              s.cfg.API.Addr(),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", s.httpSrv.Addr)
		err := s.httpSrv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()
	return errCh
}

// Shutdown stops accepting new connections and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpSrv == nil {
		return nil
	}
	return s.httpSrv.Shutdown(ctx)
}
