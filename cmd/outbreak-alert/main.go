package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/swasthya/go-outbreak-alerts/internal/aggregation"
	"github.com/swasthya/go-outbreak-alerts/internal/api"
	"github.com/swasthya/go-outbreak-alerts/internal/broadcast"
	"github.com/swasthya/go-outbreak-alerts/internal/config"
	"github.com/swasthya/go-outbreak-alerts/internal/llm"
	"github.com/swasthya/go-outbreak-alerts/internal/logging"
	"github.com/swasthya/go-outbreak-alerts/internal/repository"
	"github.com/swasthya/go-outbreak-alerts/internal/rules"
	"github.com/swasthya/go-outbreak-alerts/internal/summary"
	"github.com/swasthya/go-outbreak-alerts/internal/symptoms"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level)

	slog.Info("Server starting", "host", cfg.Server.Host, "port", cfg.Server.Port)

	db, err := repository.NewSQLiteDB(cfg.DB.Path)
	if err != nil {
		logging.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	broadcaster := broadcast.NewBroadcaster()

	aggregator := aggregation.NewAggregator(db, db, symptoms.NewNormalizer(nil))
	orchestrator := aggregation.NewOrchestrator(db, db, aggregator, broadcaster, cfg.Worker.Count)

	var scheduler *aggregation.Scheduler
	if cfg.Aggregation.Enabled {
		scheduler = aggregation.NewScheduler(orchestrator, cfg.Aggregation.Interval, cfg.Aggregation.MonthsBack)
		scheduler.Start(ctx)
	}

	model := llm.NewOllamaClient(cfg.LLM.BaseURL, cfg.LLM.Model, cfg.LLM.Timeout)
	summaries := summary.NewService(db, model)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false, // Set to false when using wildcard origins
	}))
	router.Use(api.RateLimitMiddleware(5)) // 5 req/s global limit

	handler := api.NewHandler(db, db, db, orchestrator, rules.NewEngine(rules.DefaultThresholds()), summaries, broadcaster)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down...")

	cancel()
	if scheduler != nil {
		scheduler.Stop()
	}
	broadcaster.Close()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
}
