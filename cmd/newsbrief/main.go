package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/fatih/color"
	"github.com/go-pkgz/lgr"
	"github.com/jessevdk/go-flags"
	"github.com/robfig/cron/v3"

	"newsbrief/pkg/collector"
	"newsbrief/pkg/config"
	"newsbrief/pkg/content"
	"newsbrief/pkg/domain"
	"newsbrief/pkg/llm"
	"newsbrief/pkg/pipeline"
	"newsbrief/pkg/text"
	"newsbrief/server"
)

// Opts with all CLI options
type Opts struct {
	Config string `short:"f" long:"config" env:"CONFIG" description:"config file (yml)"`

	Query       string   `short:"q" long:"query" env:"QUERY" description:"search query"`
	Max         int      `short:"m" long:"max" description:"max articles across all sources"`
	From        string   `long:"from" description:"range start as yymmdd, KST"`
	To          string   `long:"to" description:"range end as yymmdd, KST"`
	MergePolicy string   `long:"merge-policy" choice:"exact" choice:"fuzzy" description:"duplicate detection policy"`
	Publishers  []string `short:"p" long:"publisher" description:"allowed publisher name or domain, repeatable"`

	FetchText   bool `long:"fetch-text" description:"fetch full article bodies"`
	Summarize   bool `short:"s" long:"summarize" description:"summarize articles (implies --fetch-text)"`
	Keywords    bool `short:"k" long:"keywords" description:"extract keywords (implies --fetch-text)"`
	Sentences   int  `long:"sentences" description:"sentences per summary"`
	TopKeywords int  `long:"top-keywords" description:"keywords per article"`

	KeywordMode string `long:"keyword-mode" choice:"segmenter" choice:"frequency" description:"keyword tokenization strategy"`

	Format string `long:"format" choice:"table" choice:"json" choice:"csv" choice:"xlsx" default:"table" description:"output format"`
	Output string `short:"o" long:"output" description:"write to file instead of stdout"`

	Server bool   `long:"server" env:"SERVER" description:"run as HTTP server"`
	Listen string `short:"l" long:"listen" env:"LISTEN" description:"listen address override"`

	Debug   bool `long:"dbg" env:"DEBUG" description:"debug mode"`
	Version bool `short:"V" long:"version" description:"show version info"`
	NoColor bool `long:"no-color" env:"NO_COLOR" description:"disable color output"`
}

var revision = "unknown"

func main() {
	var opts Opts
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	if opts.Version {
		fmt.Printf("Version: %s\nGolang: %s\n", revision, runtime.Version())
		os.Exit(0)
	}

	cfg, err := config.Load(opts.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}
	if err := applyOverrides(cfg, &opts); err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	setupLog(opts.Debug, opts.NoColor, secrets(cfg)...)

	ctx, cancel := context.WithCancel(context.Background())

	// handle termination signals
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
		<-sigChan
		log.Print("[INFO] termination signal received")
		cancel()
	}()

	pl := buildPipeline(cfg)

	if opts.Server {
		err = runServer(ctx, cfg, pl, opts.Debug)
	} else {
		err = runOnce(ctx, cfg, pl, &opts)
	}
	cancel()

	if err != nil {
		log.Printf("[ERROR] %v", err)
		os.Exit(1)
	}
}

// runServer starts the HTTP server and, when configured, the scheduled
// digest refresh.
func runServer(ctx context.Context, cfg *config.Config, pl *pipeline.Pipeline, dbg bool) error {
	log.Printf("[INFO] starting newsbrief server version %s", revision)

	srv := server.New(&configAdapter{cfg: cfg}, pl, revision, dbg)

	if cfg.Schedule.Cron != "" {
		c := cron.New()
		_, err := c.AddFunc(cfg.Schedule.Cron, func() {
			if err := srv.Refresh(ctx, cfg.Schedule.Query); err != nil {
				log.Printf("[WARN] scheduled digest failed: %v", err)
			}
		})
		if err != nil {
			return fmt.Errorf("schedule digest: %w", err)
		}
		c.Start()
		defer c.Stop()
		log.Printf("[INFO] digest scheduled %q for query %q", cfg.Schedule.Cron, cfg.Schedule.Query)

		// prime the cache so /digest works before the first tick
		go func() {
			if err := srv.Refresh(ctx, cfg.Schedule.Query); err != nil {
				log.Printf("[WARN] initial digest failed: %v", err)
			}
		}()
	}

	return srv.Run(ctx)
}

// runOnce executes a single pipeline run and writes results in the
// requested format.
func runOnce(ctx context.Context, cfg *config.Config, pl *pipeline.Pipeline, opts *Opts) error {
	if opts.Query == "" {
		return fmt.Errorf("query is required, use -q or --query")
	}
	if opts.Format == "xlsx" && opts.Output == "" {
		return fmt.Errorf("xlsx output requires -o")
	}

	items, err := pl.Run(ctx, opts.Query, pipelineOptions(cfg))
	if err != nil {
		return fmt.Errorf("pipeline run: %w", err)
	}
	log.Printf("[INFO] %d items for %q", len(items), opts.Query)

	out := io.Writer(os.Stdout)
	if opts.Output != "" {
		f, err := os.Create(opts.Output) //nolint:gosec // output path comes from CLI flag
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close() //nolint:errcheck // write errors surface below
		out = f
	}

	return writeResults(out, items, cfg, opts.Format)
}

// applyOverrides maps CLI flags onto the loaded configuration so the rest of
// the app only ever reads config. Flag values bypass config.Load validation,
// so the date bounds are re-checked here before anything touches the network.
func applyOverrides(cfg *config.Config, opts *Opts) error {
	if opts.Listen != "" {
		cfg.Server.Listen = opts.Listen
	}
	if opts.Max > 0 {
		cfg.Pipeline.MaxResults = opts.Max
	}
	if opts.MergePolicy != "" {
		cfg.Pipeline.MergePolicy = opts.MergePolicy
	}
	if opts.From != "" {
		cfg.Pipeline.StartDay = opts.From
	}
	if opts.To != "" {
		cfg.Pipeline.EndDay = opts.To
	}
	if len(opts.Publishers) > 0 {
		cfg.Pipeline.Publishers = opts.Publishers
	}

	if opts.FetchText {
		cfg.Enrich.FetchText = true
	}
	if opts.Summarize {
		cfg.Enrich.Summarize = true
		cfg.Enrich.FetchText = true
	}
	if opts.Keywords {
		cfg.Enrich.Keywords = true
		cfg.Enrich.FetchText = true
	}
	if opts.Sentences > 0 {
		cfg.Enrich.SummarySentences = opts.Sentences
	}
	if opts.TopKeywords > 0 {
		cfg.Enrich.TopKeywords = opts.TopKeywords
	}
	if opts.KeywordMode != "" {
		cfg.Enrich.KeywordMode = opts.KeywordMode
	}

	return pipeline.ValidateDayRange(cfg.Pipeline.StartDay, cfg.Pipeline.EndDay)
}

// buildPipeline assembles collectors and enrichment components from config.
func buildPipeline(cfg *config.Config) *pipeline.Pipeline {
	var collectors []pipeline.Collector

	if cfg.Sources.GoogleNews.Enabled {
		collectors = append(collectors,
			collector.NewGoogleNews(cfg.Sources.Timeout, cfg.Sources.GoogleNews.Lang, cfg.Sources.GoogleNews.Region))
	}
	if cfg.Sources.NewsAPI.Enabled {
		collectors = append(collectors,
			collector.NewNewsAPI(cfg.Sources.NewsAPI.APIKey, cfg.Sources.Timeout, cfg.Sources.NewsAPI.Lang))
	}
	if len(cfg.Sources.Feeds) > 0 {
		collectors = append(collectors,
			collector.NewRSS(cfg.Sources.Feeds, cfg.Sources.Timeout, cfg.Sources.MaxPerFeed))
	}
	if len(collectors) == 0 {
		log.Printf("[WARN] no sources enabled, runs will return nothing")
	}

	fetcher := content.NewFetcher(cfg.Enrich.Timeout, cfg.Enrich.UserAgent)
	keywords := text.NewKeywordStrategy(cfg.Enrich.KeywordMode, cfg.Enrich.Stopwords)

	var summarizer pipeline.AbstractiveSummarizer
	if cfg.LLM.Enabled() {
		summarizer = llm.NewSummarizer(cfg.GetLLMConfig())
		log.Printf("[INFO] llm summarizer enabled, model %s", cfg.LLM.Model)
	}

	return pipeline.New(collectors, fetcher, keywords, summarizer)
}

// pipelineOptions converts config defaults into run options.
func pipelineOptions(cfg *config.Config) pipeline.Options {
	return pipeline.Options{
		MaxResults:       cfg.Pipeline.MaxResults,
		MergePolicy:      domain.MergePolicy(cfg.Pipeline.MergePolicy),
		StartDay:         cfg.Pipeline.StartDay,
		EndDay:           cfg.Pipeline.EndDay,
		Publishers:       cfg.Pipeline.Publishers,
		FetchText:        cfg.Enrich.FetchText,
		Summarize:        cfg.Enrich.Summarize,
		SummarySentences: cfg.Enrich.SummarySentences,
		Keywords:         cfg.Enrich.Keywords,
		TopKeywords:      cfg.Enrich.TopKeywords,
	}
}

// secrets collects sensitive config values to mask in logs.
func secrets(cfg *config.Config) []string {
	var res []string
	if cfg.Sources.NewsAPI.APIKey != "" {
		res = append(res, cfg.Sources.NewsAPI.APIKey)
	}
	if cfg.LLM.APIKey != "" {
		res = append(res, cfg.LLM.APIKey)
	}
	return res
}

func setupLog(dbg, noColor bool, secs ...string) {
	logOpts := []lgr.Option{lgr.Out(os.Stderr), lgr.Err(os.Stderr), lgr.Msec, lgr.LevelBraces}
	if dbg {
		logOpts = append(logOpts, lgr.Debug, lgr.CallerFile, lgr.CallerFunc, lgr.StackTraceOnError)
	}

	if !noColor {
		colorizer := lgr.Mapper{
			ErrorFunc:  func(s string) string { return color.New(color.FgHiRed).Sprint(s) },
			WarnFunc:   func(s string) string { return color.New(color.FgRed).Sprint(s) },
			InfoFunc:   func(s string) string { return color.New(color.FgYellow).Sprint(s) },
			DebugFunc:  func(s string) string { return color.New(color.FgWhite).Sprint(s) },
			CallerFunc: func(s string) string { return color.New(color.FgBlue).Sprint(s) },
			TimeFunc:   func(s string) string { return color.New(color.FgCyan).Sprint(s) },
		}
		logOpts = append(logOpts, lgr.Map(colorizer))
	}

	if len(secs) > 0 {
		logOpts = append(logOpts, lgr.Secret(secs...))
	}
	lgr.SetupStdLogger(logOpts...)
	lgr.Setup(logOpts...)
}
