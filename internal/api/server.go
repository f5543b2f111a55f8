package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/door-control/dcc/internal/config"
)

// DoorReadPort is the minimal view the ops surface needs of the
// registry.
type DoorReadPort interface {
	Doors() []config.DoorMapping
}

// Server is the ops HTTP server.
type Server struct {
	httpServer *http.Server
	doors      DoorReadPort
	logger     *slog.Logger
	version    string
	startTime  time.Time
}

// NewServer creates the ops server over a registry view.
func NewServer(doors DoorReadPort, version string, logger *slog.Logger) *Server {
	return &Server{
		doors:     doors,
		logger:    logger,
		version:   version,
		startTime: time.Now(),
	}
}

// Start serves on addr until Stop is called.
func (s *Server) Start(addr string) error {
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("ops HTTP server failed: %w", err)
	}
	return nil
}

// Stop gracefully stops the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down ops HTTP server: %w", err)
	}
	return nil
}
