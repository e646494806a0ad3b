// Package sweeper runs the periodic reaping of expired challenges as an
// explicitly scheduled, cancelable background job.
package sweeper

import (
	"context"
	"time"

	"github.com/Abraxas-365/praxis/pkg/clockx"
	"github.com/Abraxas-365/praxis/pkg/logx"
	"github.com/Abraxas-365/praxis/pkg/trust"
)

// Sweeper periodically removes challenges older than the lifetime bound.
type Sweeper struct {
	store    trust.ChallengeStore
	clock    clockx.Clock
	interval time.Duration
	lifetime time.Duration
}

// New creates a sweeper over the given store.
func New(store trust.ChallengeStore, clock clockx.Clock, interval, lifetime time.Duration) *Sweeper {
	return &Sweeper{
		store:    store,
		clock:    clock,
		interval: interval,
		lifetime: lifetime,
	}
}

// Start blocks, sweeping on a fixed interval until ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	logx.Infof("sweeper: running every %s", s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logx.Info("sweeper: stopped")
			return
		case <-ticker.C:
			s.SweepOnce(ctx)
		}
	}
}

// SweepOnce performs a single sweep pass.
func (s *Sweeper) SweepOnce(ctx context.Context) {
	cutoff := s.clock.Now().Add(-s.lifetime)
	reaped, err := s.store.SweepExpired(ctx, cutoff)
	if err != nil {
		if ctx.Err() == nil {
			logx.WithError(err).Warn("sweeper: sweep failed")
		}
		return
	}
	if reaped > 0 {
		logx.WithField("reaped", reaped).Info("sweeper: removed expired challenges")
	}
}
