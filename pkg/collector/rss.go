package collector

import (
	"context"
	"fmt"
	"html"
	"log"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"

	"newsbrief/pkg/domain"
	"newsbrief/pkg/pipeline"
)

// defaultMaxPerFeed caps how many entries one feed may contribute.
const defaultMaxPerFeed = 20

// RSS collects from a user-supplied feed list, keeping entries that mention
// the query in their title or summary. Feed RSS addresses churn, so a
// broken feed is logged and skipped rather than failing the collector.
type RSS struct {
	parser     *gofeed.Parser
	sanitizer  *bluemonday.Policy
	timeout    time.Duration
	feeds      []string
	maxPerFeed int
}

// NewRSS creates a collector over the given feed URLs.
func NewRSS(feeds []string, timeout time.Duration, maxPerFeed int) *RSS {
	if maxPerFeed <= 0 {
		maxPerFeed = defaultMaxPerFeed
	}
	return &RSS{
		parser:     gofeed.NewParser(),
		sanitizer:  bluemonday.StrictPolicy(),
		timeout:    timeout,
		feeds:      feeds,
		maxPerFeed: maxPerFeed,
	}
}

// Name returns the collector tag stored on produced items.
func (r *RSS) Name() string { return "rss" }

// Collect walks the configured feeds in order and returns matching entries,
// capped at maxResults in total (0 means no cap).
func (r *RSS) Collect(ctx context.Context, query string, maxResults int) ([]domain.Item, error) {
	q := strings.ToLower(strings.TrimSpace(query))

	items := make([]domain.Item, 0)
	for _, feedURL := range r.feeds {
		if maxResults > 0 && len(items) >= maxResults {
			break
		}
		feedItems, err := r.collectFeed(ctx, feedURL, q)
		if err != nil {
			log.Printf("[WARN] rss feed %s failed: %v", feedURL, err)
			continue
		}
		items = append(items, feedItems...)
	}
	if maxResults > 0 && len(items) > maxResults {
		items = items[:maxResults]
	}
	return items, nil
}

func (r *RSS) collectFeed(ctx context.Context, feedURL, query string) ([]domain.Item, error) {
	fctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	feed, err := r.parser.ParseURLWithContext(feedURL, fctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	items := make([]domain.Item, 0, r.maxPerFeed)
	for _, entry := range feed.Items {
		if len(items) >= r.maxPerFeed {
			break
		}

		title := html.UnescapeString(entry.Title)
		snippet := html.UnescapeString(r.sanitizer.Sanitize(entry.Description))
		if query != "" && !strings.Contains(strings.ToLower(title+" "+snippet), query) {
			continue
		}

		it := pipeline.BuildItem(domain.RawHit{
			Title:     entry.Title,
			Link:      entry.Link,
			Published: entryPublished(entry),
			Source:    r.Name(),
			Snippet:   snippet,
		})
		if it.Publisher == "" {
			it.Publisher = strings.TrimSpace(feed.Title)
		}
		items = append(items, it)
	}
	return items, nil
}
