package models

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// RunConfig holds the runtime configuration for one pipeline invocation.
// Values come from an optional YAML file merged with CLI flags; flags win.
type RunConfig struct {
	// ApplyChanges gates persistence. False runs every stage through dedup
	// and reports what would be written.
	ApplyChanges bool `yaml:"apply_changes"`

	// RequireAttribution skips URLs with no chef match instead of
	// persisting them with a null chef.
	RequireAttribution bool `yaml:"require_attribution"`

	RateLimitMs      int `yaml:"rate_limit_ms"`
	RequestTimeoutMs int `yaml:"request_timeout_ms"`

	// Fetch retry policy, applied by the orchestrator.
	FetchMaxAttempts       int     `yaml:"fetch_max_attempts"`
	FetchInitialDelayMs    int     `yaml:"fetch_initial_delay_ms"`
	FetchBackoffMultiplier float64 `yaml:"fetch_backoff_multiplier"`
	FetchMaxDelayMs        int     `yaml:"fetch_max_delay_ms"`

	// Quality gate thresholds.
	MinTitleLength  int `yaml:"min_title_length"`
	MinIngredients  int `yaml:"min_ingredients"`
	MinInstructions int `yaml:"min_instructions"`

	// Fuzzy title dedup threshold in [0,1].
	TitleSimilarity float64 `yaml:"title_similarity"`

	// Character budget for the AI-fallback prompt.
	AIMaxChars int `yaml:"ai_max_chars"`

	ScrapeEndpoint string `yaml:"scrape_endpoint"`
	ScrapeAPIKey   string `yaml:"scrape_api_key"`

	AnthropicAPIKey string `yaml:"anthropic_api_key"`
	AnthropicModel  string `yaml:"anthropic_model"`

	DBPath string `yaml:"db_path"`
}

// DefaultRunConfig returns the documented defaults. Callers start here and
// layer file values and flags on top.
func DefaultRunConfig() *RunConfig {
	return &RunConfig{
		ApplyChanges:           false,
		RequireAttribution:     true,
		RateLimitMs:            2000,
		RequestTimeoutMs:       30000,
		FetchMaxAttempts:       3,
		FetchInitialDelayMs:    1000,
		FetchBackoffMultiplier: 2.0,
		FetchMaxDelayMs:        15000,
		MinTitleLength:         5,
		MinIngredients:         3,
		MinInstructions:        2,
		TitleSimilarity:        0.85,
		AIMaxChars:             50000,
		DBPath:                 "recipe-ingest.db",
	}
}

// LoadRunConfig reads a YAML config file over the defaults.
func LoadRunConfig(path string) (*RunConfig, error) {
	cfg := DefaultRunConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// RequestTimeout returns the per-fetch budget as a duration.
func (c *RunConfig) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutMs) * time.Millisecond
}

// RateLimit returns the inter-request delay as a duration.
func (c *RunConfig) RateLimit() time.Duration {
	return time.Duration(c.RateLimitMs) * time.Millisecond
}
