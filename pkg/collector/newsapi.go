package collector

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/go-pkgz/repeater/v2"

	"newsbrief/pkg/domain"
	"newsbrief/pkg/pipeline"
)

// newsAPIPageCap is the maximum pageSize the everything endpoint accepts.
const newsAPIPageCap = 100

// errTerminal marks newsapi failures retrying cannot fix: bad key, quota
// exhausted, malformed response.
var errTerminal = errors.New("terminal newsapi error")

// NewsAPI collects articles from newsapi.org. Free-plan quotas make the
// endpoint flaky, so requests retry with capped exponential backoff and
// jitter; client-side errors stop the retry loop immediately.
type NewsAPI struct {
	client  *http.Client
	apiKey  string
	lang    string
	baseURL string
}

// NewNewsAPI creates a NewsAPI collector. The key is required by the
// backend; validation happens at config load, not here.
func NewNewsAPI(apiKey string, timeout time.Duration, lang string) *NewsAPI {
	return &NewsAPI{
		client:  &http.Client{Timeout: timeout},
		apiKey:  apiKey,
		lang:    lang,
		baseURL: "https://newsapi.org/v2/everything",
	}
}

// Name returns the collector tag stored on produced items.
func (n *NewsAPI) Name() string { return "newsapi" }

type newsAPIResponse struct {
	Status   string `json:"status"`
	Articles []struct {
		Title       string `json:"title"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
		Source      struct {
			Name string `json:"name"`
		} `json:"source"`
	} `json:"articles"`
}

// Collect queries the everything endpoint sorted by publication date,
// capped at maxResults items (0 means the page cap).
func (n *NewsAPI) Collect(ctx context.Context, query string, maxResults int) ([]domain.Item, error) {
	pageSize := maxResults
	if pageSize <= 0 || pageSize > newsAPIPageCap {
		pageSize = newsAPIPageCap
	}

	reqURL := fmt.Sprintf("%s?q=%s&language=%s&pageSize=%d&sortBy=publishedAt",
		n.baseURL, url.QueryEscape(query), n.lang, pageSize)

	var decoded newsAPIResponse
	retrier := repeater.NewBackoff(3, 500*time.Millisecond,
		repeater.WithMaxDelay(5*time.Second), repeater.WithJitter(0.1))
	err := retrier.Do(ctx, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
		if err != nil {
			return fmt.Errorf("%w: create request: %v", errTerminal, err)
		}
		req.Header.Set("X-Api-Key", n.apiKey)

		resp, err := n.client.Do(req)
		if err != nil {
			return fmt.Errorf("newsapi request: %w", err) // transport errors retry
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 400 && resp.StatusCode < 500 {
			return fmt.Errorf("%w: status %d", errTerminal, resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("newsapi status %d", resp.StatusCode)
		}
		if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
			return fmt.Errorf("%w: decode response: %v", errTerminal, err)
		}
		return nil
	}, errTerminal)
	if err != nil {
		return nil, fmt.Errorf("newsapi collect: %w", err)
	}

	items := make([]domain.Item, 0, len(decoded.Articles))
	for _, a := range decoded.Articles {
		if maxResults > 0 && len(items) >= maxResults {
			break
		}
		items = append(items, pipeline.BuildItem(domain.RawHit{
			Title:     a.Title,
			Link:      a.URL,
			Published: a.PublishedAt,
			Publisher: a.Source.Name,
			Source:    n.Name(),
		}))
	}
	return items, nil
}
