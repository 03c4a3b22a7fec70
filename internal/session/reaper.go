package session

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/linkdash/internal/logger"
)

const (
	// DefaultIdleTTL is the idle time after which a session is closed
	DefaultIdleTTL = 30 * time.Minute
)

// Reaper closes sessions that have been idle for longer than the TTL
type Reaper struct {
	manager  *Manager
	logger   logger.Logger
	interval time.Duration
	ttl      time.Duration
	stopCh   chan struct{}
}

// NewReaper creates a new reaper
func NewReaper(
	manager *Manager,
	log logger.Logger,
	interval time.Duration,
	ttl time.Duration,
) *Reaper {
	if ttl == 0 {
		ttl = DefaultIdleTTL
	}

	return &Reaper{
		manager:  manager,
		logger:   log,
		interval: interval,
		ttl:      ttl,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the periodic sweep
func (r *Reaper) Start(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.Collect(ctx)
			case <-r.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reaper
func (r *Reaper) Stop() {
	close(r.stopCh)
}

// Collect closes idle sessions and returns how many were closed
func (r *Reaper) Collect(_ context.Context) int {
	now := r.manager.now()
	closed := 0

	for _, s := range r.manager.Sessions() {
		idle := now.Sub(s.LastSeen())
		if idle < r.ttl {
			continue
		}

		r.manager.Close(s.Username)

		r.logger.Info("reaped idle session",
			logger.String("user", s.Username),
			logger.String("idle_for", idle.String()))

		closed++
	}

	if closed > 0 {
		r.logger.Info("session sweep completed",
			logger.Int("closed", closed),
			logger.Int("remaining", r.manager.Count()))
	} else {
		r.logger.Debug("no idle sessions")
	}

	return closed
}
