// Package ingest holds the CLI actions for running the pipeline and
// managing the chef roster.
package ingest

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/plateful/recipe-ingest/internal/common"
	"github.com/plateful/recipe-ingest/internal/pipeline"
	"github.com/plateful/recipe-ingest/models"
	"github.com/plateful/recipe-ingest/pkg/aiextract"
	"github.com/plateful/recipe-ingest/pkg/extract"
	"github.com/plateful/recipe-ingest/pkg/fetcher"
	"github.com/plateful/recipe-ingest/pkg/scrape"
	"github.com/plateful/recipe-ingest/pkg/store"
)

func newLogger(c *cli.Context) *slog.Logger {
	logLevel := slog.LevelInfo
	if c.Bool("quiet") {
		logLevel = slog.LevelError
	}
	if c.Bool("verbose") {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}

// loadConfig layers CLI flags over the optional config file over defaults.
func loadConfig(c *cli.Context) (*models.RunConfig, error) {
	cfg := models.DefaultRunConfig()
	if c.IsSet("config") {
		loaded, err := models.LoadRunConfig(c.String("config"))
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if c.Bool("apply") {
		cfg.ApplyChanges = true
	}
	if c.Bool("allow-unattributed") {
		cfg.RequireAttribution = false
	}
	if c.IsSet("db") {
		cfg.DBPath = c.String("db")
	}
	if c.IsSet("rate-limit-ms") {
		cfg.RateLimitMs = c.Int("rate-limit-ms")
	}
	if c.IsSet("timeout-ms") {
		cfg.RequestTimeoutMs = c.Int("timeout-ms")
	}

	if cfg.ScrapeAPIKey == "" {
		cfg.ScrapeAPIKey = os.Getenv("SCRAPE_API_KEY")
	}
	if cfg.ScrapeEndpoint == "" {
		cfg.ScrapeEndpoint = os.Getenv("SCRAPE_ENDPOINT")
	}
	if cfg.AnthropicAPIKey == "" {
		cfg.AnthropicAPIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	return cfg, nil
}

func collectURLs(c *cli.Context) ([]string, error) {
	var raw []string
	if c.IsSet("urls") {
		raw = append(raw, strings.Split(c.String("urls"), ",")...)
	}
	if c.IsSet("urls-file") {
		data, err := os.ReadFile(c.String("urls-file"))
		if err != nil {
			return nil, fmt.Errorf("failed to read urls file: %w", err)
		}
		for _, line := range strings.Split(string(data), "\n") {
			line = strings.TrimSpace(line)
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			raw = append(raw, line)
		}
	}
	raw = append(raw, c.Args().Slice()...)
	return raw, nil
}

// IngestAction runs the full pipeline over the provided URLs and writes the
// run report as JSON to stdout.
func IngestAction(c *cli.Context) error {
	logger := newLogger(c)

	cfg, err := loadConfig(c)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(2)
	}
	if cfg.ScrapeEndpoint == "" {
		logger.Error("no scrape endpoint configured; set scrape_endpoint in the config file or SCRAPE_ENDPOINT")
		os.Exit(2)
	}

	raw, err := collectURLs(c)
	if err != nil {
		logger.Error("failed to collect urls", "error", err)
		os.Exit(2)
	}
	urls, invalid := common.SanitizeAndValidateURLs(raw)
	for _, bad := range invalid {
		logger.Warn("dropping invalid url", "url", bad)
	}

	var state *models.RunState
	statePath := c.String("state-file")
	if statePath != "" {
		state, err = loadRunState(statePath)
		if err != nil {
			logger.Error("failed to load state", "error", err, "path", statePath)
			os.Exit(2)
		}
		before := len(urls)
		urls = filterProcessed(urls, state)
		if skipped := before - len(urls); skipped > 0 {
			logger.Info("resuming previous run", "already_processed", skipped)
		}
	}

	if len(urls) == 0 {
		logger.Error("no valid urls to process")
		os.Exit(1)
	}

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "error", err, "path", cfg.DBPath)
		os.Exit(2)
	}
	defer db.Close()

	extractOpts := []extract.Option{
		extract.WithLogger(logger),
		extract.WithAIMaxChars(cfg.AIMaxChars),
	}
	if cfg.AnthropicAPIKey != "" {
		extractOpts = append(extractOpts, extract.WithAIFallback(aiextract.New(cfg.AnthropicAPIKey, cfg.AnthropicModel)))
	} else {
		logger.Info("no anthropic api key configured, AI fallback disabled")
	}

	scraper := scrape.NewClient(cfg.ScrapeEndpoint, cfg.ScrapeAPIKey)
	p := pipeline.New(cfg, fetcher.New(scraper, cfg.RequestTimeout()), extract.New(extractOpts...), db, logger)

	// SIGINT finishes the current URL and stops cleanly.
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	report, err := p.Run(ctx, urls)
	if err != nil {
		logger.Error("run failed", "error", err)
		os.Exit(2)
	}

	if statePath != "" {
		for _, o := range report.Outcomes {
			state.ProcessedURLs = append(state.ProcessedURLs, o.URL)
		}
		state.Outcomes = append(state.Outcomes, report.Outcomes...)
		if err := saveRunState(statePath, state); err != nil {
			logger.Warn("failed to save state", "error", err, "path", statePath)
		}
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	fmt.Println(string(out))

	if report.Failed > 0 {
		os.Exit(1)
	}
	return nil
}

// ChefsAddAction registers a chef so future ingests can attribute recipes
// from their domain.
func ChefsAddAction(c *cli.Context) error {
	logger := newLogger(c)

	cfg, err := loadConfig(c)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(2)
	}

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "error", err, "path", cfg.DBPath)
		os.Exit(2)
	}
	defer db.Close()

	chef, err := db.AddChef(c.Context, c.String("name"), c.String("domain"))
	if err != nil {
		logger.Error("failed to add chef", "error", err)
		os.Exit(1)
	}

	fmt.Printf("Added chef %s (%s) with id %s\n", chef.Name, chef.WebsiteDomain, chef.ID)
	return nil
}

// ChefsListAction prints the active roster as JSON.
func ChefsListAction(c *cli.Context) error {
	logger := newLogger(c)

	cfg, err := loadConfig(c)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(2)
	}

	db, err := store.Open(cfg.DBPath)
	if err != nil {
		logger.Error("failed to open database", "error", err, "path", cfg.DBPath)
		os.Exit(2)
	}
	defer db.Close()

	chefs, err := db.ListActiveChefs(c.Context)
	if err != nil {
		logger.Error("failed to list chefs", "error", err)
		os.Exit(1)
	}

	out, err := json.MarshalIndent(chefs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode chefs: %w", err)
	}
	fmt.Println(string(out))
	return nil
}
