// Package domain holds the core types shared across the aggregation pipeline.
package domain

import (
	"encoding/json"
	"time"
)

// MergePolicy selects how duplicates are detected when merging collector results.
type MergePolicy string

const (
	// MergeExact dedupes on (normalized link, lower-cased trimmed title), first seen wins.
	MergeExact MergePolicy = "exact"
	// MergeFuzzy treats near-identical titles as duplicates and merges the
	// newer record forward. Costs O(n^2) comparisons over the candidate set.
	MergeFuzzy MergePolicy = "fuzzy"
)

// RawHit is a single raw record returned by a source collector, before
// normalization. Published is the raw date string as the backend gave it.
type RawHit struct {
	Title     string
	Link      string
	Published string
	Publisher string
	Source    string
	Snippet   string
}

// Item represents one collected article with normalized identity fields.
// A zero Published time means the publication date is unknown.
type Item struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Link      string    `json:"link"`
	Publisher string    `json:"publisher"`
	Published time.Time `json:"-"`
	Source    string    `json:"source"`
	Content   string    `json:"content,omitempty"`
	Summary   string    `json:"summary,omitempty"`
	Keywords  []string  `json:"keywords,omitempty"`
}

// PublishedISO renders the publication time as RFC3339 UTC, or "" when unknown.
func (i *Item) PublishedISO() string {
	if i.Published.IsZero() {
		return ""
	}
	return i.Published.UTC().Format(time.RFC3339)
}

// MarshalJSON emits published_at as an RFC3339 UTC string so wire output
// never carries naive or zone-local timestamps.
func (i Item) MarshalJSON() ([]byte, error) {
	type alias Item
	return json.Marshal(struct {
		alias
		PublishedAt string `json:"published_at,omitempty"`
	}{alias: alias(i), PublishedAt: i.PublishedISO()})
}
