package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/PoorRican/BidBeast/internal/feed"
	"github.com/PoorRican/BidBeast/internal/ingest"
	"github.com/PoorRican/BidBeast/internal/retry"
	"github.com/PoorRican/BidBeast/internal/review"
	"github.com/PoorRican/BidBeast/internal/scheduler"
	"github.com/PoorRican/BidBeast/internal/store"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the feed daemon",
	Long:  "Start the feed and review-reminder loops; blocks until SIGINT/SIGTERM.",
	RunE:  runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("config loaded",
		"polling_interval", cfg.PollingInterval.String(),
		"review_interval", cfg.ReviewInterval.String(),
		"feeds", len(cfg.Feeds),
		"ai_enabled", cfg.AI.Enabled,
	)

	sqlStore, err := store.NewSQLiteStore(cfg.StorePath)
	if err != nil {
		logger.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer sqlStore.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Merge configured feeds into the store so `sources add` and config both
	// contribute to the same set.
	for _, url := range cfg.Feeds {
		if err := sqlStore.AddSource(ctx, url); err != nil {
			logger.Error("failed to register feed", "url", url, "error", err)
			os.Exit(1)
		}
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}
	out := setupMessenger(cfg, httpClient, logger)
	reasoner := setupReasoner(cfg, logger)

	source := retry.NewRetrySource(feed.NewRSSSource(httpClient), 2, 5*time.Second, logger)
	dedup := ingest.NewDeduplicator(sqlStore, logger)
	enricher := ingest.NewEnrichmentCoordinator(reasoner, sqlStore, logger)

	sched := scheduler.NewScheduler(source, sqlStore, dedup, enricher, out, cfg.PollingInterval, logger)
	sched.Start(ctx)
	defer sched.Stop()

	queue := review.NewQueue(sqlStore)
	reminder := review.NewNotifier(queue, out, cfg.ReviewInterval, logger)
	reminder.Start(ctx)
	defer reminder.Stop()

	<-ctx.Done()
	logger.Info("goodbye")
	return nil
}
