// Package config loads and validates the YAML application configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

//go:generate go run ../../cmd/schema/main.go schema.json

// Config holds the application configuration.
type Config struct {
	Server struct {
		Listen  string        `yaml:"listen" json:"listen" jsonschema:"default=:8080,description=HTTP server listen address"`
		Timeout time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=HTTP server timeout"`
	} `yaml:"server" json:"server" jsonschema:"description=Server configuration"`

	Sources SourcesConfig `yaml:"sources" json:"sources" jsonschema:"description=Source collector configuration"`

	Pipeline struct {
		MaxResults  int      `yaml:"max_results" json:"max_results" jsonschema:"default=50,description=Maximum articles to collect across all sources"`
		MergePolicy string   `yaml:"merge_policy" json:"merge_policy" jsonschema:"default=exact,enum=exact,enum=fuzzy,description=Duplicate detection policy"`
		StartDay    string   `yaml:"start_day" json:"start_day" jsonschema:"description=Inclusive range start as yymmdd in KST"`
		EndDay      string   `yaml:"end_day" json:"end_day" jsonschema:"description=Inclusive range end as yymmdd in KST"`
		Publishers  []string `yaml:"publishers" json:"publishers" jsonschema:"description=Allowed publisher names or domains; empty disables filtering"`
	} `yaml:"pipeline" json:"pipeline" jsonschema:"description=Aggregation pipeline defaults"`

	Enrich EnrichConfig `yaml:"enrich" json:"enrich" jsonschema:"description=Content enrichment configuration"`

	LLM LLMConfig `yaml:"llm" json:"llm" jsonschema:"description=Optional LLM summarizer; extractive summaries are used when unset"`

	Schedule struct {
		Cron  string `yaml:"cron" json:"cron" jsonschema:"description=Cron expression for the server-mode digest refresh"`
		Query string `yaml:"query" json:"query" jsonschema:"description=Query the scheduled digest runs"`
	} `yaml:"schedule" json:"schedule" jsonschema:"description=Scheduled digest configuration"`
}

// SourcesConfig configures the individual collectors.
type SourcesConfig struct {
	GoogleNews struct {
		Enabled bool   `yaml:"enabled" json:"enabled" jsonschema:"default=true,description=Enable the Google News RSS collector"`
		Lang    string `yaml:"lang" json:"lang" jsonschema:"default=ko,description=Interface language code"`
		Region  string `yaml:"region" json:"region" jsonschema:"default=KR,description=Region code"`
	} `yaml:"google_news" json:"google_news" jsonschema:"description=Google News RSS search"`

	NewsAPI struct {
		Enabled bool   `yaml:"enabled" json:"enabled" jsonschema:"default=false,description=Enable the NewsAPI collector"`
		APIKey  string `yaml:"api_key" json:"api_key" jsonschema:"description=NewsAPI key (environment variables are expanded)"`
		Lang    string `yaml:"lang" json:"lang" jsonschema:"default=ko,description=Article language code"`
	} `yaml:"newsapi" json:"newsapi" jsonschema:"description=newsapi.org everything endpoint"`

	Feeds      []string      `yaml:"feeds" json:"feeds" jsonschema:"description=User RSS feed URLs matched against the query"`
	MaxPerFeed int           `yaml:"max_per_feed" json:"max_per_feed" jsonschema:"default=20,description=Entries one feed may contribute"`
	Timeout    time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=12s,description=Per-source fetch timeout"`
}

// EnrichConfig holds the optional per-item content steps. The toggles are
// independent; summaries and keywords of items without fetched text come
// out empty.
type EnrichConfig struct {
	FetchText        bool          `yaml:"fetch_text" json:"fetch_text" jsonschema:"default=false,description=Fetch full article bodies"`
	Summarize        bool          `yaml:"summarize" json:"summarize" jsonschema:"default=false,description=Generate summaries"`
	SummarySentences int           `yaml:"summary_sentences" json:"summary_sentences" jsonschema:"default=3,description=Sentences per summary"`
	Keywords         bool          `yaml:"keywords" json:"keywords" jsonschema:"default=false,description=Extract keywords"`
	TopKeywords      int           `yaml:"top_keywords" json:"top_keywords" jsonschema:"default=20,description=Keywords per item"`
	KeywordMode      string        `yaml:"keyword_mode" json:"keyword_mode" jsonschema:"default=segmenter,enum=segmenter,enum=frequency,description=Keyword tokenization strategy"`
	Stopwords        []string      `yaml:"stopwords" json:"stopwords" jsonschema:"description=Additional stopwords on top of the built-in Korean list"`
	Timeout          time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=12s,description=Per-article body fetch timeout"`
	UserAgent        string        `yaml:"user_agent" json:"user_agent" jsonschema:"description=User agent for body fetches"`
}

// LLMConfig configures the optional abstractive summarizer.
type LLMConfig struct {
	Endpoint    string        `yaml:"endpoint" json:"endpoint" jsonschema:"description=OpenAI-compatible API endpoint"`
	APIKey      string        `yaml:"api_key" json:"api_key" jsonschema:"description=API key (environment variables are expanded)"`
	Model       string        `yaml:"model" json:"model" jsonschema:"description=Model name; setting it enables the LLM summarizer"`
	Temperature float64       `yaml:"temperature" json:"temperature" jsonschema:"default=0.3,description=Sampling temperature"`
	MaxTokens   int           `yaml:"max_tokens" json:"max_tokens" jsonschema:"default=500,description=Maximum tokens per summary"`
	Timeout     time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=Request timeout"`
}

// Enabled reports whether the LLM summarizer should be constructed.
func (c *LLMConfig) Enabled() bool { return c.Model != "" }

// Load reads configuration from a YAML file, expanding environment
// variables. An empty path yields the built-in defaults.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(cfg *Config) {
	if cfg.Server.Listen == "" {
		cfg.Server.Listen = ":8080"
	}
	if cfg.Server.Timeout == 0 {
		cfg.Server.Timeout = 30 * time.Second
	}

	if cfg.Sources.GoogleNews.Lang == "" {
		cfg.Sources.GoogleNews.Lang = "ko"
	}
	if cfg.Sources.GoogleNews.Region == "" {
		cfg.Sources.GoogleNews.Region = "KR"
	}
	if cfg.Sources.NewsAPI.Lang == "" {
		cfg.Sources.NewsAPI.Lang = "ko"
	}
	if cfg.Sources.MaxPerFeed == 0 {
		cfg.Sources.MaxPerFeed = 20
	}
	if cfg.Sources.Timeout == 0 {
		cfg.Sources.Timeout = 12 * time.Second
	}

	if cfg.Pipeline.MaxResults == 0 {
		cfg.Pipeline.MaxResults = 50
	}
	if cfg.Pipeline.MergePolicy == "" {
		cfg.Pipeline.MergePolicy = "exact"
	}

	if cfg.Enrich.SummarySentences == 0 {
		cfg.Enrich.SummarySentences = 3
	}
	if cfg.Enrich.TopKeywords == 0 {
		cfg.Enrich.TopKeywords = 20
	}
	if cfg.Enrich.KeywordMode == "" {
		cfg.Enrich.KeywordMode = "segmenter"
	}
	if cfg.Enrich.Timeout == 0 {
		cfg.Enrich.Timeout = 12 * time.Second
	}

	if cfg.LLM.Temperature == 0 {
		cfg.LLM.Temperature = 0.3
	}
	if cfg.LLM.MaxTokens == 0 {
		cfg.LLM.MaxTokens = 500
	}
	if cfg.LLM.Timeout == 0 {
		cfg.LLM.Timeout = 30 * time.Second
	}
}

// validate checks configuration for correctness before any network call.
func validate(cfg *Config) error {
	if cfg.Pipeline.MergePolicy != "exact" && cfg.Pipeline.MergePolicy != "fuzzy" {
		return fmt.Errorf("pipeline.merge_policy must be exact or fuzzy, got %q", cfg.Pipeline.MergePolicy)
	}
	if cfg.Enrich.KeywordMode != "segmenter" && cfg.Enrich.KeywordMode != "frequency" {
		return fmt.Errorf("enrich.keyword_mode must be segmenter or frequency, got %q", cfg.Enrich.KeywordMode)
	}
	if cfg.Enrich.SummarySentences < 1 {
		return fmt.Errorf("enrich.summary_sentences must be at least 1")
	}

	start, err := parseDayBound(cfg.Pipeline.StartDay)
	if err != nil {
		return fmt.Errorf("pipeline.start_day: %w", err)
	}
	end, err := parseDayBound(cfg.Pipeline.EndDay)
	if err != nil {
		return fmt.Errorf("pipeline.end_day: %w", err)
	}
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return fmt.Errorf("pipeline.end_day %s is before pipeline.start_day %s", cfg.Pipeline.EndDay, cfg.Pipeline.StartDay)
	}

	if cfg.Sources.NewsAPI.Enabled && cfg.Sources.NewsAPI.APIKey == "" {
		return fmt.Errorf("sources.newsapi.api_key is required when newsapi is enabled")
	}

	if cfg.Schedule.Cron != "" {
		if _, err := cron.ParseStandard(cfg.Schedule.Cron); err != nil {
			return fmt.Errorf("schedule.cron %q: %w", cfg.Schedule.Cron, err)
		}
		if cfg.Schedule.Query == "" {
			return fmt.Errorf("schedule.query is required when schedule.cron is set")
		}
	}

	if cfg.Server.Timeout < time.Second {
		return fmt.Errorf("server timeout must be at least 1 second")
	}
	return nil
}

// parseDayBound validates a yymmdd bound; empty is allowed.
func parseDayBound(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	ts, err := time.Parse("060102", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("expected yymmdd, got %q", s)
	}
	return ts, nil
}

// GetServerConfig returns server configuration.
func (c *Config) GetServerConfig() (listen string, timeout time.Duration) {
	return c.Server.Listen, c.Server.Timeout
}

// GetEnrichConfig returns content enrichment configuration.
func (c *Config) GetEnrichConfig() EnrichConfig {
	return c.Enrich
}

// GetLLMConfig returns the LLM summarizer configuration.
func (c *Config) GetLLMConfig() LLMConfig {
	return c.LLM
}
