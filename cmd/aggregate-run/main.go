package main

import (
	"context"
	"flag"
	"log/slog"
	"time"

	"github.com/joho/godotenv"

	"github.com/swasthya/go-outbreak-alerts/internal/aggregation"
	"github.com/swasthya/go-outbreak-alerts/internal/config"
	"github.com/swasthya/go-outbreak-alerts/internal/logging"
	"github.com/swasthya/go-outbreak-alerts/internal/repository"
	"github.com/swasthya/go-outbreak-alerts/internal/symptoms"
)

// One-shot aggregation run over every village, for cron jobs and manual
// backfills.
func main() {
	monthsBack := flag.Int("months-back", aggregation.DefaultMonthsBack, "lookback window in 30-day months")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level)

	db, err := repository.NewSQLiteDB(cfg.DB.Path)
	if err != nil {
		logging.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	aggregator := aggregation.NewAggregator(db, db, symptoms.NewNormalizer(nil))
	orchestrator := aggregation.NewOrchestrator(db, db, aggregator, nil, cfg.Worker.Count)

	report, err := orchestrator.Run(context.Background(), aggregation.RunOptions{
		MonthsBack: *monthsBack,
		Now:        time.Now().UTC(),
	})
	if err != nil {
		logging.Fatalf("Aggregation run failed: %v", err)
	}

	slog.Info("aggregation run complete", "succeeded", report.Succeeded, "failed", len(report.Failed))
	for villageID, ferr := range report.Failed {
		slog.Error("village failed", "village_id", villageID, "error", ferr)
	}
}
