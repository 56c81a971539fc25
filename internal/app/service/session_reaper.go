package service

import (
	"context"
	"sync"
	"time"

	"github.com/sifan077/LinkMe/internal/infra/metrics"
	"go.uber.org/zap"
)

const defaultReaperInterval = time.Hour

// SessionPurger deletes sessions that are no longer active.
type SessionPurger interface {
	PurgeExpiredSessions(ctx context.Context) (int64, error)
}

// SessionReaper periodically deletes expired sessions so the session table
// does not grow without bound.
type SessionReaper struct {
	logger   *zap.Logger
	purger   SessionPurger
	interval time.Duration
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewSessionReaper creates a new session reaper.
func NewSessionReaper(logger *zap.Logger, purger SessionPurger, interval time.Duration) *SessionReaper {
	if interval <= 0 {
		interval = defaultReaperInterval
	}
	return &SessionReaper{
		logger:   logger,
		purger:   purger,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

// Start begins the periodic sweep.
func (r *SessionReaper) Start() {
	go r.run()
}

// Stop stops the periodic sweep. It is safe to call more than once.
func (r *SessionReaper) Stop() {
	r.stopOnce.Do(func() { close(r.stopChan) })
}

func (r *SessionReaper) run() {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.sweep()
		case <-r.stopChan:
			r.logger.Info("session reaper stopped")
			return
		}
	}
}

func (r *SessionReaper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), r.interval)
	defer cancel()

	affected, err := r.purger.PurgeExpiredSessions(ctx)
	if err != nil {
		r.logger.Error("failed to purge expired sessions", zap.Error(err))
		return
	}

	if affected > 0 {
		metrics.SessionsReaped.Add(float64(affected))
		r.logger.Info("purged expired sessions", zap.Int64("count", affected))
	}
}
