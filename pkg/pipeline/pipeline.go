// Package pipeline implements the aggregation core: URL normalization,
// record building, merge/dedupe, date and publisher filtering and content
// enrichment. A pipeline run is a pure transform from (query, options) to a
// list of items; nothing survives the invocation.
package pipeline

import (
	"context"
	"log"

	"newsbrief/pkg/domain"
	"newsbrief/pkg/text"
)

// Collector returns raw items for a query from one backend. Implementations
// live in pkg/collector; errors are absorbed here, a failed source simply
// contributes nothing to the run.
type Collector interface {
	Name() string
	Collect(ctx context.Context, query string, maxResults int) ([]domain.Item, error)
}

// Fetcher retrieves readable article text for a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// KeywordStrategy extracts the top-k terms from text.
type KeywordStrategy interface {
	Extract(text string, topK int) []string
}

// AbstractiveSummarizer is the optional LLM-backed summary generator; the
// extractive summarizer remains the fallback when it fails or is absent.
type AbstractiveSummarizer interface {
	Summarize(ctx context.Context, text string, maxSentences int) (string, error)
}

// Options configures one pipeline run. The enrichment toggles are
// independent: keywords without fetched text yields empty keyword lists,
// never an error.
type Options struct {
	MaxResults       int
	MergePolicy      domain.MergePolicy
	StartDay         string // yymmdd, KST
	EndDay           string // yymmdd, KST
	Publishers       []string
	FetchText        bool
	Summarize        bool
	SummarySentences int
	Keywords         bool
	TopKeywords      int
}

// Pipeline runs collection, merge, filtering and enrichment for one query.
type Pipeline struct {
	collectors []Collector
	fetcher    Fetcher
	keywords   KeywordStrategy
	llm        AbstractiveSummarizer
}

// New creates a pipeline over the given collectors. fetcher and keywords
// may be nil when enrichment is never requested; llm is optional and nil
// means extractive summaries only.
func New(collectors []Collector, fetcher Fetcher, keywords KeywordStrategy, llm AbstractiveSummarizer) *Pipeline {
	return &Pipeline{collectors: collectors, fetcher: fetcher, keywords: keywords, llm: llm}
}

// Run executes the full pipeline for query: collect from every source in
// order, merge and dedupe, apply date and publisher filters, then enrich
// the survivors. The only errors returned are configuration errors from the
// date bounds, rejected before any collector fires; source and enrichment
// failures degrade locally.
func (p *Pipeline) Run(ctx context.Context, query string, opts Options) ([]domain.Item, error) {
	if err := ValidateDayRange(opts.StartDay, opts.EndDay); err != nil {
		return nil, err
	}

	lists := p.collect(ctx, query, opts.MaxResults)

	items := Merge(lists, opts.MergePolicy)

	items, err := FilterByDateRange(items, opts.StartDay, opts.EndDay)
	if err != nil {
		return nil, err
	}
	items = FilterByPublishers(items, opts.Publishers)

	p.enrich(ctx, items, opts)
	return items, nil
}

// collect queries sources in order, sequentially, budgeting remaining
// capacity so later sources fill what earlier ones left.
func (p *Pipeline) collect(ctx context.Context, query string, maxResults int) [][]domain.Item {
	lists := make([][]domain.Item, 0, len(p.collectors))
	remain := maxResults
	for _, c := range p.collectors {
		if maxResults > 0 && remain <= 0 {
			break
		}
		items, err := c.Collect(ctx, query, remain)
		if err != nil {
			log.Printf("[WARN] collector %s failed: %v", c.Name(), err)
			continue
		}
		log.Printf("[INFO] collected %d items from %s", len(items), c.Name())
		lists = append(lists, items)
		if maxResults > 0 {
			if remain -= len(items); remain < 0 {
				remain = 0
			}
		}
	}
	return lists
}

// enrich runs the optional content steps sequentially, one item at a time.
// Every failure degrades to an empty field and the run continues.
func (p *Pipeline) enrich(ctx context.Context, items []domain.Item, opts Options) {
	if !opts.FetchText && !opts.Summarize && !opts.Keywords {
		return
	}

	for i := range items {
		it := &items[i]

		if opts.FetchText && p.fetcher != nil && it.Link != "" {
			body, err := p.fetcher.Fetch(ctx, it.Link)
			if err != nil {
				log.Printf("[WARN] fetch body for %s failed: %v", it.Link, err)
			}
			it.Content = body
		}

		if opts.Summarize {
			it.Summary = p.summaryFor(ctx, it.Content, opts.SummarySentences)
		}

		if opts.Keywords {
			it.Keywords = []string{}
			if it.Content != "" && p.keywords != nil {
				it.Keywords = p.keywords.Extract(it.Content, opts.TopKeywords)
			}
		}
	}
}

// summaryFor prefers the abstractive summarizer when configured, falling
// back to the extractive one on error or empty output.
func (p *Pipeline) summaryFor(ctx context.Context, content string, maxSentences int) string {
	if content == "" {
		return ""
	}
	if p.llm != nil {
		s, err := p.llm.Summarize(ctx, content, maxSentences)
		if err != nil {
			log.Printf("[WARN] llm summary failed, using extractive: %v", err)
		}
		if err == nil && s != "" {
			return s
		}
	}
	return text.Summarize(content, maxSentences)
}
