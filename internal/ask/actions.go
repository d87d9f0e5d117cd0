package ask

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/brandlens/brandlens/models"
	"github.com/brandlens/brandlens/pkg/db"
	"github.com/brandlens/brandlens/pkg/llm"
	"github.com/brandlens/brandlens/pkg/retry"
	"github.com/brandlens/brandlens/pkg/search"
	"github.com/brandlens/brandlens/pkg/snippet"
)

const retryBackoff = 500 * time.Millisecond

// Flags defines the ask command's flag set.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "brand", Usage: "Brand name (required)"},
		&cli.StringFlag{Name: "url", Usage: "Brand site URL (required)"},
		&cli.StringFlag{Name: "question", Usage: "Question to ask (required)"},
		&cli.BoolFlag{Name: "ground", Value: true, Usage: "Ground the answer in web search results"},
		&cli.IntFlag{Name: "max-searches", Value: 1, Usage: "Cap on search requests"},
		&cli.IntFlag{Name: "max-sources", Value: 3, Usage: "Cap on grounding sources"},
		&cli.StringFlag{Name: "search-query", Usage: "Override the derived search query"},
		&cli.IntFlag{Name: "snippet-chars", Value: 600, Usage: "Character cap per snippet"},
		&cli.BoolFlag{Name: "must-link-site", Usage: "Bias the model toward referencing the brand site"},
		&cli.BoolFlag{Name: "compact-prompt", Usage: "Use the shorter instruction string"},
		&cli.DurationFlag{Name: "timeout", Value: 30 * time.Second, Usage: "Per-request timeout"},
		&cli.IntFlag{Name: "retries", Value: 2, Usage: "Retry count for 429/5xx responses"},
		&cli.StringFlag{Name: "provider", Value: "openai", Usage: "Generation provider: openai or ollama"},
		&cli.StringFlag{Name: "model", Usage: "Model name for the provider"},
		&cli.StringFlag{Name: "base-url", Usage: "Override the provider base URL"},
		&cli.StringFlag{Name: "config", Usage: "YAML defaults file; flags take precedence"},
		&cli.StringFlag{Name: "out", Usage: "Write the JSON report to this file instead of stdout"},
		&cli.StringFlag{Name: "cache-db", Value: db.DefaultDBName, Usage: "Page cache database path, or 'off'"},
		&cli.DurationFlag{Name: "cache-age", Value: 24 * time.Hour, Usage: "Max age of cached pages"},
		&cli.BoolFlag{Name: "force-fetch", Usage: "Bypass the page cache"},
		&cli.BoolFlag{Name: "debug", Usage: "Verbose logging and surfaced generation errors"},
		&cli.BoolFlag{Name: "quiet", Usage: "Errors only"},
	}
}

// Action runs the ask command: validate configuration, execute the
// pipeline, and write the report as JSON.
func Action(c *cli.Context) error {
	logLevel := slog.LevelInfo
	if c.Bool("quiet") {
		logLevel = slog.LevelError
	}
	if c.Bool("debug") {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	config, err := buildConfig(c)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(2)
	}
	if err := config.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(2)
	}

	// The page cache is an optimization; losing it never fails the run.
	var store *db.DB
	if config.CacheDB != "off" {
		store, err = db.Open(config.CacheDB)
		if err != nil {
			logger.Warn("failed to open page cache, continuing without it", "error", err)
			store = nil
		} else {
			defer store.Close()
		}
	}

	// One retry policy shape shared by search, page fetch, and generation.
	policy := retry.NewPolicy(config.Retries+1, retryBackoff)

	generator, err := llm.New(llm.Config{
		Provider: config.Provider,
		Model:    config.Model,
		BaseURL:  config.BaseURL,
		APIKey:   config.APIKey,
		Timeout:  config.Timeout,
		Policy:   policy,
	})
	if err != nil {
		logger.Error("invalid provider configuration", "error", err)
		os.Exit(2)
	}

	pipeline := &Pipeline{
		Config: *config,
		Logger: logger,
		Search: search.NewClient(config.Timeout, policy, logger),
		Fetcher: snippet.NewFetcher(snippet.Options{
			Timeout:    config.Timeout,
			Policy:     policy,
			Store:      store,
			CacheAge:   config.CacheAge,
			ForceFetch: config.ForceFetch,
			MaxChars:   config.SnippetChars,
			Detector:   snippet.NewLanguageDetector(),
			Logger:     logger,
		}),
		Generator: generator,
	}

	startTime := time.Now()
	report, genErr := pipeline.Run(c.Context)
	logger.Info("run finished",
		"elapsed", time.Since(startTime).Round(time.Millisecond).String(),
		"searches", report.Metadata.Usage.Searches,
		"sources_included", report.Metadata.Usage.SourcesIncluded,
		"total_tokens", report.Metadata.Usage.TotalTokens,
	)

	if err := writeReport(c.String("out"), report); err != nil {
		return err
	}

	if genErr != nil && config.Debug {
		return fmt.Errorf("generation failed: %w", genErr)
	}
	return nil
}

// buildConfig starts from the flag values (defaults included) and overlays
// the optional YAML defaults file. A flag given on the command line always
// wins; a key present in the file beats the flag default, even when the
// file value is zero.
func buildConfig(c *cli.Context) (*models.RunConfig, error) {
	config := &models.RunConfig{
		Brand:         c.String("brand"),
		URL:           c.String("url"),
		Question:      c.String("question"),
		Ground:        c.Bool("ground"),
		MaxSearches:   c.Int("max-searches"),
		MaxSources:    c.Int("max-sources"),
		SearchQuery:   c.String("search-query"),
		SnippetChars:  c.Int("snippet-chars"),
		MustLinkSite:  c.Bool("must-link-site"),
		CompactPrompt: c.Bool("compact-prompt"),
		Timeout:       c.Duration("timeout"),
		Retries:       c.Int("retries"),
		Provider:      c.String("provider"),
		Model:         c.String("model"),
		BaseURL:       c.String("base-url"),
		CacheDB:       c.String("cache-db"),
		CacheAge:      c.Duration("cache-age"),
		ForceFetch:    c.Bool("force-fetch"),
		Debug:         c.Bool("debug"),
	}

	if path := c.String("config"); path != "" {
		file, err := models.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		applyFileConfig(c, config, file)
	}

	config.APIKey = os.Getenv("BRANDLENS_API_KEY")
	if config.APIKey == "" {
		config.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	return config, nil
}

func applyFileConfig(c *cli.Context, config *models.RunConfig, file *models.FileConfig) {
	override(c, "brand", &config.Brand, file.Brand)
	override(c, "url", &config.URL, file.URL)
	override(c, "question", &config.Question, file.Question)
	override(c, "ground", &config.Ground, file.Ground)
	override(c, "max-searches", &config.MaxSearches, file.MaxSearches)
	override(c, "max-sources", &config.MaxSources, file.MaxSources)
	override(c, "search-query", &config.SearchQuery, file.SearchQuery)
	override(c, "snippet-chars", &config.SnippetChars, file.SnippetChars)
	override(c, "must-link-site", &config.MustLinkSite, file.MustLinkSite)
	override(c, "compact-prompt", &config.CompactPrompt, file.CompactPrompt)
	override(c, "timeout", &config.Timeout, file.Timeout)
	override(c, "retries", &config.Retries, file.Retries)
	override(c, "provider", &config.Provider, file.Provider)
	override(c, "model", &config.Model, file.Model)
	override(c, "base-url", &config.BaseURL, file.BaseURL)
	override(c, "cache-db", &config.CacheDB, file.CacheDB)
	override(c, "cache-age", &config.CacheAge, file.CacheAge)
	override(c, "force-fetch", &config.ForceFetch, file.ForceFetch)
}

// override replaces a flag-derived value with the file value when the file
// has the key and the flag was not given explicitly.
func override[T any](c *cli.Context, flag string, dst *T, fromFile *T) {
	if fromFile != nil && !c.IsSet(flag) {
		*dst = *fromFile
	}
}

func writeReport(outPath string, report models.Report) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if outPath == "" || outPath == "-" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(outPath, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
