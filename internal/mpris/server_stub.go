//go:build !linux

package mpris

import (
	"context"

	"github.com/genricoloni/hueplay/internal/domain"
	"go.uber.org/zap"
)

// Server stub for non-Linux platforms
type Server struct {
	logger *zap.Logger
}

// NewServer creates a stub server; MPRIS needs a Linux session bus
func NewServer(logger *zap.Logger, _ domain.Config, _ domain.Transport) *Server {
	return &Server{logger: logger}
}

// Start logs that the remote-control surface is unavailable
func (s *Server) Start(_ context.Context) error {
	s.logger.Warn("MPRIS is only supported on Linux systems")
	return nil
}

// Stop is a no-op on non-Linux platforms
func (s *Server) Stop(_ context.Context) error {
	return nil
}
