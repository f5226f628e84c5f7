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
	"github.com/PoorRican/BidBeast/internal/messenger"
	"github.com/PoorRican/BidBeast/internal/reasoning"
	"github.com/PoorRican/BidBeast/internal/retry"
	"github.com/PoorRican/BidBeast/internal/scheduler"
	"github.com/PoorRican/BidBeast/internal/store"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Poll every feed once, print findings, exit",
	Long:  "One-shot cycle against a throwaway in-memory store: fetches every configured feed, prints the postings found, exits. Nothing is persisted and no AI calls are made.",
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	logger := setupLogger(debug)

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if len(cfg.Feeds) == 0 {
		logger.Error("no feeds configured")
		os.Exit(1)
	}

	logger.Info("check mode: nothing will be persisted")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	memStore := store.NewMemoryStore()
	for _, url := range cfg.Feeds {
		if err := memStore.AddSource(ctx, url); err != nil {
			logger.Error("failed to register feed", "url", url, "error", err)
			os.Exit(1)
		}
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}
	out := messenger.NewWriterMessenger(os.Stdout)
	source := retry.NewRetrySource(feed.NewRSSSource(httpClient), 2, 5*time.Second, logger)
	dedup := ingest.NewDeduplicator(memStore, logger)
	enricher := ingest.NewEnrichmentCoordinator(reasoning.NewNopReasoner(), memStore, logger)

	sched := scheduler.NewScheduler(source, memStore, dedup, enricher, out, cfg.PollingInterval, logger)
	sched.RunCycle(ctx)

	logger.Info("check complete")
	return nil
}
