// Package server exposes the operator HTTP endpoints of a running bot.
package server

import (
	"log/slog"
	"time"

	"github.com/alfredjeanlab/eugenio/internal/mode"
)

// Server serves read-only operational views of the bot.
type Server struct {
	modes   *mode.Tracker
	logger  *slog.Logger
	started time.Time
	now     func() time.Time
}

// New returns a Server reporting on the given mode tracker.
func New(modes *mode.Tracker, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		modes:   modes,
		logger:  logger,
		started: time.Now(),
		now:     time.Now,
	}
}
