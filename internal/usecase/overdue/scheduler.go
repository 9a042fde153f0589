package overdue

import (
	"context"
	"log"
	"time"
)

// Scheduler drives the sweep: once at startup to correct for downtime, then
// on a fixed interval. A failed run is logged and retried on the next tick;
// it never takes the process down.
type Scheduler struct {
	uc       *Usecase
	interval time.Duration
}

func NewScheduler(uc *Usecase, interval time.Duration) *Scheduler {
	return &Scheduler{uc: uc, interval: interval}
}

// Run blocks until ctx is canceled; call it in its own goroutine.
func (s *Scheduler) Run(ctx context.Context) {
	s.sweep(ctx)
	t := time.NewTicker(s.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.sweep(ctx)
		}
	}
}

func (s *Scheduler) sweep(ctx context.Context) {
	n, err := s.uc.SweepOverdue(ctx, time.Now().UTC())
	if err != nil {
		log.Printf("overdue sweep failed: %v", err)
		return
	}
	if n > 0 {
		log.Printf("overdue sweep: marked %d loan(s) overdue", n)
	}
}
