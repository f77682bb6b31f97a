// Package content fetches article pages and extracts readable body text.
package content

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// maxBodyRunes caps the whole-page fallback so junk pages do not balloon
// downstream summarization.
const maxBodyRunes = 5000

// minMainTextRunes is the length below which a main-content selection is
// treated as a failed extraction.
const minMainTextRunes = 120

// maxFetchBytes guards against unbounded response bodies.
const maxFetchBytes = 10 << 20

// Fetcher retrieves a page once and runs an ordered chain of extraction
// strategies over the bytes: trafilatura first, then main-content
// selection, then a whole-page text walk. The first non-empty result wins.
type Fetcher struct {
	client    *http.Client
	userAgent string
}

// NewFetcher creates a content fetcher with the given per-request timeout.
func NewFetcher(timeout time.Duration, userAgent string) *Fetcher {
	if userAgent == "" {
		userAgent = "Mozilla/5.0 (compatible; newsbrief/1.0)"
	}
	return &Fetcher{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		userAgent: userAgent,
	}
}

// Fetch downloads the page at urlStr and returns its readable text. All
// failure modes return an error; the enricher converts that to an empty
// content field.
func (f *Fetcher) Fetch(ctx context.Context, urlStr string) (string, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return "", fmt.Errorf("parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return "", fmt.Errorf("invalid URL: %s", urlStr)
	}

	body, err := f.download(ctx, urlStr)
	if err != nil {
		return "", err
	}

	if text := extractTrafilatura(body, parsedURL); text != "" {
		return text, nil
	}
	if text := extractMainContent(body); text != "" {
		return text, nil
	}
	if text := extractPageText(body); text != "" {
		return text, nil
	}
	return "", fmt.Errorf("no text content extracted from %s", urlStr)
}

func (f *Fetcher) download(ctx context.Context, urlStr string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	addBrowserHeaders(req)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch URL %s: %w", urlStr, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d for URL %s", resp.StatusCode, urlStr)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// extractTrafilatura runs the primary readability extraction.
func extractTrafilatura(body []byte, pageURL *url.URL) string {
	opts := trafilatura.Options{
		EnableFallback:  true,
		ExcludeComments: true,
		ExcludeTables:   true,
		Deduplicate:     true,
		OriginalURL:     pageURL,
	}
	result, err := trafilatura.Extract(bytes.NewReader(body), opts)
	if err != nil || result == nil {
		return ""
	}
	return strings.TrimSpace(result.ContentText)
}

// extractMainContent selects likely article containers and keeps the result
// only when it is long enough to be a real body.
func extractMainContent(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	doc.Find("script, style, nav, header, footer, aside").Remove()

	for _, sel := range []string{"article", "main", "#content", ".article-body"} {
		text := strings.TrimSpace(doc.Find(sel).Text())
		if utf8.RuneCountInString(text) >= minMainTextRunes {
			return collapseLines(text)
		}
	}
	return ""
}

// extractPageText walks every text node of the page, the last resort when
// no structure can be recognized.
func extractPageText(body []byte) string {
	node, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return ""
	}

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				sb.WriteString(t)
				sb.WriteString("\n")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(node)

	text := strings.TrimSpace(sb.String())
	if runes := []rune(text); len(runes) > maxBodyRunes {
		text = string(runes[:maxBodyRunes])
	}
	return text
}

func collapseLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}
