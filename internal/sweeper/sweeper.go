// Package sweeper runs the background task that reclaims stalls whose
// holds were never confirmed in time.
package sweeper

import (
	"context"
	"log"
	"time"

	"github.com/iliyamo/exhibition-stall-reservation/internal/ledger"
)

// DefaultInterval is how often the sweeper scans for overdue holds.
const DefaultInterval = 60 * time.Second

// Sweeper periodically expires overdue holds on the ledger.  It uses
// the same per-stall discipline as client-driven operations, so it is
// safe alongside live traffic and alongside sweepers on other
// instances: expiring a hold that was confirmed or already expired in
// the meantime is a no-op.
type Sweeper struct {
	ledger   *ledger.Ledger
	interval time.Duration
	now      func() time.Time
}

// New constructs a Sweeper.  interval <= 0 falls back to
// DefaultInterval; now may be nil, in which case the wall clock is used.
func New(l *ledger.Ledger, interval time.Duration, now func() time.Time) *Sweeper {
	if l == nil {
		panic("nil ledger passed to sweeper.New")
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Sweeper{ledger: l, interval: interval, now: now}
}

// Run sweeps on a fixed interval until the context is cancelled.  It
// performs one sweep immediately on start so a restart does not leave
// stale holds sitting for a full interval.
func (s *Sweeper) Run(ctx context.Context) {
	s.sweep(ctx)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Printf("sweeper: stopped: %v", ctx.Err())
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	if n := s.ledger.ExpireOverdueHolds(ctx, s.now()); n > 0 {
		log.Printf("sweeper: expired %d overdue hold(s)", n)
	}
}
