// Package cleanup provides the terminal-session retention sweeper.
package cleanup

import (
	"context"
	"log/slog"
	"time"

	"github.com/workflow-use/suitectl/pkg/config"
	"github.com/workflow-use/suitectl/pkg/session"
)

// Service periodically removes terminal sessions (completed, error,
// cancelled) whose last update is older than the retention window. Active
// sessions are never touched, whatever their age.
type Service struct {
	config   *config.RetentionConfig
	sessions *session.Manager

	cancel context.CancelFunc
	done   chan struct{}
}

// NewService creates a new retention sweeper.
func NewService(cfg *config.RetentionConfig, sessions *session.Manager) *Service {
	return &Service{
		config:   cfg,
		sessions: sessions,
	}
}

// Start launches the background sweep loop. It is a no-op when retention is
// disabled.
func (s *Service) Start(ctx context.Context) {
	if !s.config.Enabled {
		slog.Info("Session retention disabled")
		return
	}
	if s.cancel != nil {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go s.run(ctx)

	slog.Info("Session retention sweeper started",
		"max_age", s.config.MaxAge,
		"sweep_interval", s.config.SweepInterval)
}

// Stop signals the sweep loop to exit and waits for it to finish.
func (s *Service) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	slog.Info("Session retention sweeper stopped")
}

func (s *Service) run(ctx context.Context) {
	defer close(s.done)

	s.sweepOnce()

	ticker := time.NewTicker(s.config.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweepOnce()
		}
	}
}

func (s *Service) sweepOnce() {
	count := s.sessions.SweepTerminal(s.config.MaxAge)
	if count > 0 {
		slog.Info("Retention: removed stale terminal sessions", "count", count)
	}
}
