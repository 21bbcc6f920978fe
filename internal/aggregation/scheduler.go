package aggregation

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Scheduler re-runs aggregation on a fixed interval so dashboards keep up
// with newly submitted reports without anyone hitting the trigger endpoint.
type Scheduler struct {
	orchestrator *Orchestrator
	interval     time.Duration
	monthsBack   int
	wg           sync.WaitGroup
}

func NewScheduler(orchestrator *Orchestrator, interval time.Duration, monthsBack int) *Scheduler {
	return &Scheduler{
		orchestrator: orchestrator,
		interval:     interval,
		monthsBack:   monthsBack,
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	s.wg.Add(1)
	go s.run(ctx)
}

func (s *Scheduler) run(ctx context.Context) {
	defer s.wg.Done()
	slog.Info("starting aggregation scheduler", "interval", s.interval, "months_back", s.monthsBack)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Initial run
	s.runOnce(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("aggregation scheduler shutting down")
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	report, err := s.orchestrator.Run(ctx, RunOptions{MonthsBack: s.monthsBack})
	if err != nil {
		slog.Error("scheduled aggregation run failed", "error", err)
		return
	}
	slog.Debug("scheduled aggregation run complete", "succeeded", report.Succeeded, "failed", len(report.Failed))
}

// Stop blocks until the run loop has exited. Cancel the Start context first.
func (s *Scheduler) Stop() {
	s.wg.Wait()
	slog.Info("aggregation scheduler stopped")
}
