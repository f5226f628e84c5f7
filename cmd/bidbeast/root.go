package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/PoorRican/BidBeast/internal/config"
	"github.com/PoorRican/BidBeast/internal/messenger"
	"github.com/PoorRican/BidBeast/internal/model"
	"github.com/PoorRican/BidBeast/internal/ratelimit"
	"github.com/PoorRican/BidBeast/internal/reasoning"
)

var (
	cfgPath string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:   "bidbeast",
	Short: "Freelance job radar — find postings worth bidding on",
	Long:  "BidBeast polls freelance job feeds, summarizes and judges new postings with an LLM, and walks you through reviewing its judgments.",
	// Default to `start` so that `bidbeast` with no args runs the daemon.
	RunE: runStart,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "path to config file (default: BIDBEAST_CONFIG env var or ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

// loadConfig resolves the config path and parses it.
// Priority: explicit path arg > BIDBEAST_CONFIG env var > "./config.yaml"
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if env := os.Getenv("BIDBEAST_CONFIG"); env != "" {
			path = env
		} else {
			path = "config.yaml"
		}
	}
	return config.Load(path)
}

func setupLogger(dbg bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if dbg {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

func setupMessenger(cfg *config.Config, httpClient *http.Client, logger *slog.Logger) model.Messenger {
	switch cfg.Notification.Type {
	case "slack":
		logger.Info("using slack messenger")
		return messenger.NewSlackMessenger(cfg.Notification.WebhookURL, httpClient, logger)
	default:
		return messenger.NewLogMessenger(logger)
	}
}

// setupReasoner returns the enrichment backend. When AI is disabled the nop
// reasoner keeps the pipeline running with empty summaries and unresolved
// judgments.
func setupReasoner(cfg *config.Config, logger *slog.Logger) model.Reasoner {
	if !cfg.AI.Enabled {
		logger.Info("ai disabled, postings will not be enriched")
		return reasoning.NewNopReasoner()
	}

	httpClient := &http.Client{Timeout: cfg.AI.Timeout}
	provider := reasoning.NewOpenAIProvider(cfg.AI.BaseURL, cfg.AI.APIKey, cfg.AI.Model, httpClient)
	var r model.Reasoner = reasoning.NewService(provider, logger)

	if cfg.AI.MinDelay > 0 {
		logger.Info("reasoner rate limit", "min_delay", cfg.AI.MinDelay.String())
		r = ratelimit.NewLimitedReasoner(r, cfg.AI.MinDelay, 1)
	}
	return r
}
