package aggregation

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/swasthya/go-outbreak-alerts/internal/broadcast"
	"github.com/swasthya/go-outbreak-alerts/internal/models"
	"github.com/swasthya/go-outbreak-alerts/internal/repository"
	"github.com/swasthya/go-outbreak-alerts/internal/worker"
)

// DefaultMonthsBack is the lookback applied when a run does not specify one.
const DefaultMonthsBack = 6

// RunOptions parameterize one orchestrator run. Now is the reference
// instant for the lookback window; a zero Now means wall clock.
type RunOptions struct {
	MonthsBack int
	Now        time.Time
	VillageIDs []int64 // empty means all villages
}

// RunReport records the per-village outcome of a run. One village failing
// does not stop the others; its error lands in Failed.
type RunReport struct {
	Succeeded int
	Failed    map[int64]error
}

// Orchestrator runs per-village aggregation across villages in parallel.
// Villages have no cross dependencies, so each is an independent job; the
// final upsert per village is a single atomic store write.
type Orchestrator struct {
	villages    repository.VillageRepository
	store       repository.AggregateStore
	aggregator  *Aggregator
	broadcaster *broadcast.Broadcaster // optional
	workers     int
}

func NewOrchestrator(villages repository.VillageRepository, store repository.AggregateStore, aggregator *Aggregator, broadcaster *broadcast.Broadcaster, workers int) *Orchestrator {
	if workers < 1 {
		workers = 1
	}
	return &Orchestrator{
		villages:    villages,
		store:       store,
		aggregator:  aggregator,
		broadcaster: broadcaster,
		workers:     workers,
	}
}

// RunVillage aggregates and upserts one village's snapshot.
func (o *Orchestrator) RunVillage(ctx context.Context, village models.Village, monthsBack int, now time.Time) (*models.VillageAggregate, error) {
	agg, err := o.aggregator.Aggregate(ctx, village, monthsBack, now)
	if err != nil {
		return nil, err
	}
	if err := o.store.UpsertAggregate(ctx, agg); err != nil {
		return nil, fmt.Errorf("upserting aggregate for village %d: %w", village.ID, err)
	}
	if o.broadcaster != nil {
		o.broadcaster.Broadcast(agg)
	}
	return agg, nil
}

// Run aggregates every selected village over a worker pool and reports
// per-village failures individually.
func (o *Orchestrator) Run(ctx context.Context, opts RunOptions) (*RunReport, error) {
	if opts.MonthsBack <= 0 {
		opts.MonthsBack = DefaultMonthsBack
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now().UTC()
	}

	villages, err := o.villages.ListVillages(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing villages: %w", err)
	}
	villages = filterVillages(villages, opts.VillageIDs)

	report := &RunReport{Failed: make(map[int64]error)}
	var mu sync.Mutex

	pool := worker.NewPool(o.workers, len(villages)+1, func(ctx context.Context, v models.Village) error {
		agg, err := o.RunVillage(ctx, v, opts.MonthsBack, opts.Now)

		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			slog.Error("village aggregation failed", "village_id", v.ID, "village", v.Name, "error", err)
			report.Failed[v.ID] = err
			return err
		}
		report.Succeeded++
		slog.Info("village aggregated",
			"village_id", v.ID,
			"village", v.Name,
			"total_cases", agg.TotalCases,
			"risk_level", agg.RiskLevel,
			"risk_percentage", agg.RiskPercentage,
		)
		return nil
	})

	pool.Start(ctx)
	for _, v := range villages {
		pool.Submit(v)
	}
	pool.Stop()

	return report, nil
}

func filterVillages(villages []models.Village, ids []int64) []models.Village {
	if len(ids) == 0 {
		return villages
	}
	wanted := make(map[int64]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	filtered := villages[:0]
	for _, v := range villages {
		if wanted[v.ID] {
			filtered = append(filtered, v)
		}
	}
	return filtered
}
