package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Lease excludes other processes from a shared job. Acquire returns nil when another
// holder has it.
type Lease interface {
	Acquire(ctx context.Context) (release func(), err error)
}

// PenaltySweeper periodically expires penalties whose end time has passed. Runs never
// overlap: a tick that finds the previous run still going is skipped.
type PenaltySweeper struct {
	penalties *PenaltyService
	interval  time.Duration
	batch     int
	lease     Lease
	mu        sync.Mutex
}

// NewPenaltySweeper builds a sweeper. lease may be nil for a single instance.
func NewPenaltySweeper(penalties *PenaltyService, interval time.Duration, batch int, lease Lease) *PenaltySweeper {
	return &PenaltySweeper{
		penalties: penalties,
		interval:  interval,
		batch:     batch,
		lease:     lease,
	}
}

// Start runs the sweep on every tick until done is closed.
func (s *PenaltySweeper) Start(done chan struct{}) {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		slog.Info("penalty sweeper started", "interval", s.interval, "batch", s.batch)
		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithCancel(context.Background())
				go func() {
					select {
					case <-done:
						cancel()
					case <-ctx.Done():
					}
				}()
				if _, err := s.SweepNow(ctx); err != nil && !errors.Is(err, ErrSweepInProgress) {
					slog.Error("penalty sweep failed", "error", err)
				}
				cancel()
			case <-done:
				return
			}
		}
	}()
}

// SweepNow runs one bounded sweep and returns how many penalties it expired.
func (s *PenaltySweeper) SweepNow(ctx context.Context) (int, error) {
	if !s.mu.TryLock() {
		return 0, ErrSweepInProgress
	}
	defer s.mu.Unlock()

	if s.lease != nil {
		release, err := s.lease.Acquire(ctx)
		if err != nil {
			return 0, err
		}
		if release == nil {
			slog.Debug("penalty sweep skipped, lease held elsewhere")
			return 0, ErrSweepInProgress
		}
		defer release()
	}

	start := time.Now()
	expired, err := s.penalties.ExpireElapsed(ctx, s.batch)
	sweepDuration.Observe(time.Since(start).Seconds())
	if expired > 0 {
		slog.Info("penalty sweep completed", "expired", expired, "duration_ms", time.Since(start).Milliseconds())
	}
	return expired, err
}
