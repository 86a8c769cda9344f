package service

import (
	"context"
	"time"

	"stationwatch/internal/logger"
)

// SchedulerService drives the background poll loop: one cycle immediately
// on start, then one per tick until the context is canceled.
type SchedulerService struct {
	poller Poller
	log    *logger.Logger
}

func NewSchedulerService(poller Poller, log *logger.Logger) *SchedulerService {
	return &SchedulerService{poller: poller, log: log}
}

var _ Scheduler = (*SchedulerService)(nil)

// Run ticks at the given interval until ctx is canceled.
func (s *SchedulerService) Run(ctx context.Context, tick time.Duration) {
	s.runOnce(ctx)

	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.runOnce(ctx)
		}
	}
}

func (s *SchedulerService) runOnce(ctx context.Context) {
	run := s.poller.RunCycle(ctx)

	transitions := 0
	degraded := 0
	for _, acct := range run.Accounts {
		transitions += acct.Transitions
		if acct.Degraded {
			degraded++
		}
	}
	s.log.Infow("poll cycle finished",
		"accounts", len(run.Accounts),
		"transitions", transitions,
		"degraded_accounts", degraded,
		"took", run.FinishedAt.Sub(run.StartedAt).String(),
	)
}
