package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"spimex-data/internal/config"
)

const shutdownGrace = 10 * time.Second

// Server runs the HTTP API.
type Server struct {
	httpSrv *http.Server
	logger  *slog.Logger
	done    chan struct{}
	err     error
}

// NewServer wraps the router in an HTTP server bound to the configured port.
func NewServer(cfg config.ServerConfig, router *gin.Engine, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		httpSrv: &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Port),
			Handler: router,
		},
		logger: logger,
		done:   make(chan struct{}),
	}
}

// Start begins serving in the background. Serve errors are reported by Stop.
func (s *Server) Start() {
	s.logger.Info("http server starting", "addr", s.httpSrv.Addr)
	go func() {
		defer close(s.done)
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.err = err
		}
	}()
}

// Stop drains in-flight requests and shuts the listener down.
func (s *Server) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownGrace)
	defer cancel()

	if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	<-s.done
	if s.err != nil {
		return fmt.Errorf("serve: %w", s.err)
	}
	s.logger.Info("http server stopped")
	return nil
}
