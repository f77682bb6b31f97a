package pipeline

import (
	"crypto/sha1" //nolint:gosec // identity surrogate, not security-sensitive
	"encoding/hex"
	"html"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"newsbrief/pkg/domain"
)

// ItemID derives the stable identity of an item from its title and
// normalized link. Two hits whose links differ only by tracking noise and
// whose titles match hash to the same id.
func ItemID(title, link string) string {
	sum := sha1.Sum([]byte(title + "|" + NormalizeURL(link))) //nolint:gosec // collision avoidance only
	return hex.EncodeToString(sum[:])
}

// ParseDate parses a date string permissively, accepting RFC and most
// natural formats. Unparseable or empty input yields the zero time, never
// an error. Naive timestamps are taken as UTC.
func ParseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	ts, err := dateparse.ParseAny(s)
	if err != nil {
		return time.Time{}
	}
	return ts.UTC()
}

// BuildItem turns a raw collector hit into a canonical Item: entity-decoded
// title, normalized link, publisher falling back to the link's registered
// domain, publication time converted to UTC.
func BuildItem(hit domain.RawHit) domain.Item {
	title := html.UnescapeString(hit.Title)
	link := NormalizeURL(hit.Link)

	publisher := strings.TrimSpace(hit.Publisher)
	if publisher == "" {
		publisher = ExtractDomain(link)
	}

	return domain.Item{
		ID:        ItemID(title, hit.Link),
		Title:     title,
		Link:      link,
		Publisher: publisher,
		Published: ParseDate(hit.Published),
		Source:    hit.Source,
	}
}
