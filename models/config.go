// Package models defines configuration and report structures shared across
// the pipeline.
package models

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// RunConfig holds runtime configuration for a single ask run.
// All values come from CLI flags, optionally seeded from a YAML defaults file.
type RunConfig struct {
	Brand    string
	URL      string
	Question string

	Ground       bool
	MaxSearches  int
	MaxSources   int
	SearchQuery  string
	SnippetChars int

	MustLinkSite  bool
	CompactPrompt bool

	Timeout time.Duration
	Retries int

	Provider string
	Model    string
	BaseURL  string
	APIKey   string

	CacheDB    string
	CacheAge   time.Duration
	ForceFetch bool

	Debug bool
}

// ValidationError reports missing required configuration. It is the only
// error class that aborts a run before any network activity.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required configuration: %s", strings.Join(e.Missing, ", "))
}

// Validate checks that the required identity fields are present.
func (c *RunConfig) Validate() error {
	var missing []string
	if strings.TrimSpace(c.Brand) == "" {
		missing = append(missing, "brand")
	}
	if strings.TrimSpace(c.URL) == "" {
		missing = append(missing, "url")
	}
	if strings.TrimSpace(c.Question) == "" {
		missing = append(missing, "question")
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}

// FileConfig holds the optional YAML defaults file. Pointer fields
// distinguish an absent key from an explicit zero, so a file can set
// max_sources: 0 and have it stick.
type FileConfig struct {
	Brand         *string
	URL           *string
	Question      *string
	Ground        *bool
	MaxSearches   *int
	MaxSources    *int
	SearchQuery   *string
	SnippetChars  *int
	MustLinkSite  *bool
	CompactPrompt *bool
	Timeout       *time.Duration
	Retries       *int
	Provider      *string
	Model         *string
	BaseURL       *string
	CacheDB       *string
	CacheAge      *time.Duration
	ForceFetch    *bool
}

// rawFileConfig mirrors FileConfig for YAML decoding. Durations arrive as
// strings like "30s" and are parsed in LoadConfig.
type rawFileConfig struct {
	Brand         *string `yaml:"brand"`
	URL           *string `yaml:"url"`
	Question      *string `yaml:"question"`
	Ground        *bool   `yaml:"ground"`
	MaxSearches   *int    `yaml:"max_searches"`
	MaxSources    *int    `yaml:"max_sources"`
	SearchQuery   *string `yaml:"search_query"`
	SnippetChars  *int    `yaml:"snippet_chars"`
	MustLinkSite  *bool   `yaml:"must_link_site"`
	CompactPrompt *bool   `yaml:"compact_prompt"`
	Timeout       *string `yaml:"timeout"`
	Retries       *int    `yaml:"retries"`
	Provider      *string `yaml:"provider"`
	Model         *string `yaml:"model"`
	BaseURL       *string `yaml:"base_url"`
	CacheDB       *string `yaml:"cache_db"`
	CacheAge      *string `yaml:"cache_age"`
	ForceFetch    *bool   `yaml:"force_fetch"`
}

// LoadConfig reads a YAML defaults file. CLI flags given on the command line
// take precedence over the values loaded here; the caller merges them.
func LoadConfig(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var raw rawFileConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config := &FileConfig{
		Brand:         raw.Brand,
		URL:           raw.URL,
		Question:      raw.Question,
		Ground:        raw.Ground,
		MaxSearches:   raw.MaxSearches,
		MaxSources:    raw.MaxSources,
		SearchQuery:   raw.SearchQuery,
		SnippetChars:  raw.SnippetChars,
		MustLinkSite:  raw.MustLinkSite,
		CompactPrompt: raw.CompactPrompt,
		Retries:       raw.Retries,
		Provider:      raw.Provider,
		Model:         raw.Model,
		BaseURL:       raw.BaseURL,
		CacheDB:       raw.CacheDB,
		ForceFetch:    raw.ForceFetch,
	}
	if raw.Timeout != nil {
		d, err := time.ParseDuration(*raw.Timeout)
		if err != nil {
			return nil, fmt.Errorf("invalid timeout in config file: %w", err)
		}
		config.Timeout = &d
	}
	if raw.CacheAge != nil {
		d, err := time.ParseDuration(*raw.CacheAge)
		if err != nil {
			return nil, fmt.Errorf("invalid cache_age in config file: %w", err)
		}
		config.CacheAge = &d
	}
	return config, nil
}
