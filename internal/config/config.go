package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the BidBeast daemon.
type Config struct {
	PollingInterval time.Duration
	ReviewInterval  time.Duration // cadence of the "N postings need review" loop
	StorePath       string
	Feeds           []string // seed feed URLs, merged into the store at startup
	Notification    NotificationConfig
	AI              AIConfig
}

// AIConfig controls the reasoning service used for enrichment.
type AIConfig struct {
	Enabled  bool
	BaseURL  string        // defaults to https://api.openai.com/v1
	Model    string        // e.g. "gpt-4o-mini"
	APIKey   string        // expanded from env var by Load
	Timeout  time.Duration // per-request timeout
	MinDelay time.Duration // minimum gap between reasoning calls, 0 disables limiting
}

// NotificationConfig controls which messenger carries operator-facing text.
type NotificationConfig struct {
	Type       string `yaml:"type"`        // "log" or "slack"
	WebhookURL string `yaml:"webhook_url"` // required if type is "slack"
}

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// rawConfig is used for YAML unmarshaling (snake_case fields and durations
// as strings).
type rawConfig struct {
	PollingInterval string             `yaml:"polling_interval"`
	ReviewInterval  string             `yaml:"review_interval"`
	StorePath       string             `yaml:"store_path"`
	Feeds           []string           `yaml:"feeds"`
	Notification    NotificationConfig `yaml:"notification"`
	AI              rawAIConfig        `yaml:"ai"`
}

type rawAIConfig struct {
	Enabled  bool   `yaml:"enabled"`
	BaseURL  string `yaml:"base_url"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"api_key"`
	Timeout  string `yaml:"timeout"`
	MinDelay string `yaml:"min_delay"`
}

// Load reads and parses the YAML config file at path, validates it, and
// returns Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	interval := 5 * time.Minute // default
	if raw.PollingInterval != "" {
		interval, err = time.ParseDuration(raw.PollingInterval)
		if err != nil {
			return nil, fmt.Errorf("parse polling_interval %q: %w", raw.PollingInterval, err)
		}
	}

	reviewInterval := 1 * time.Hour // default
	if raw.ReviewInterval != "" {
		reviewInterval, err = time.ParseDuration(raw.ReviewInterval)
		if err != nil {
			return nil, fmt.Errorf("parse review_interval %q: %w", raw.ReviewInterval, err)
		}
	}

	aiTimeout := 30 * time.Second // default
	if raw.AI.Timeout != "" {
		aiTimeout, err = time.ParseDuration(raw.AI.Timeout)
		if err != nil {
			return nil, fmt.Errorf("parse ai.timeout %q: %w", raw.AI.Timeout, err)
		}
	}

	var aiMinDelay time.Duration
	if raw.AI.MinDelay != "" {
		aiMinDelay, err = time.ParseDuration(raw.AI.MinDelay)
		if err != nil {
			return nil, fmt.Errorf("parse ai.min_delay %q: %w", raw.AI.MinDelay, err)
		}
	}

	aiBaseURL := raw.AI.BaseURL
	if aiBaseURL == "" {
		aiBaseURL = defaultOpenAIBaseURL
	}

	storePath := raw.StorePath
	if storePath == "" {
		storePath = "bidbeast.db"
	}

	cfg := &Config{
		PollingInterval: interval,
		ReviewInterval:  reviewInterval,
		StorePath:       storePath,
		Feeds:           raw.Feeds,
		Notification:    raw.Notification,
		AI: AIConfig{
			Enabled:  raw.AI.Enabled,
			BaseURL:  aiBaseURL,
			Model:    raw.AI.Model,
			APIKey:   raw.AI.APIKey,
			Timeout:  aiTimeout,
			MinDelay: aiMinDelay,
		},
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.PollingInterval <= 0 {
		return fmt.Errorf("polling_interval must be positive, got %v", cfg.PollingInterval)
	}
	if cfg.ReviewInterval <= 0 {
		return fmt.Errorf("review_interval must be positive, got %v", cfg.ReviewInterval)
	}

	for _, url := range cfg.Feeds {
		if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
			return fmt.Errorf("feed url %q must start with http:// or https://", url)
		}
	}

	if cfg.Notification.Type == "slack" && cfg.Notification.WebhookURL == "" {
		return fmt.Errorf("notification.webhook_url is required when type is \"slack\"")
	}

	if cfg.AI.Enabled {
		if cfg.AI.APIKey == "" {
			return fmt.Errorf("ai.api_key is required when ai.enabled is true")
		}
		if cfg.AI.Model == "" {
			return fmt.Errorf("ai.model is required when ai.enabled is true")
		}
	}

	return nil
}
