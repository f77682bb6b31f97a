package pipeline

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"newsbrief/pkg/domain"
)

// fuzzyThreshold is the minimum normalized title similarity for two items
// with different links to be treated as the same document.
const fuzzyThreshold = 0.85

// Merge combines per-collector result lists into one deduplicated sequence
// sorted newest first. Undated items sort last, never first. Policy selects
// duplicate detection: exact key with first-seen-wins, or fuzzy title
// similarity with merge-forward semantics.
func Merge(lists [][]domain.Item, policy domain.MergePolicy) []domain.Item {
	var merged []domain.Item
	if policy == domain.MergeFuzzy {
		merged = mergeFuzzy(lists)
	} else {
		merged = mergeExact(lists)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Published.After(merged[j].Published)
	})
	return merged
}

// dedupeKey is (normalized link, lower-cased trimmed title); the id stands
// in when the source gave no link at all.
func dedupeKey(it domain.Item) string {
	key := NormalizeURL(it.Link)
	if key == "" {
		key = it.ID
	}
	return key + "::" + strings.ToLower(strings.TrimSpace(it.Title))
}

func mergeExact(lists [][]domain.Item) []domain.Item {
	seen := make(map[string]struct{})
	out := make([]domain.Item, 0)
	for _, list := range lists {
		for _, it := range list {
			key := dedupeKey(it)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, it)
		}
	}
	return out
}

// mergeFuzzy compares every candidate against all previously kept items,
// O(n^2) over the candidate set. A duplicate carrying a strictly newer
// publication time replaces the kept record entirely (merge-forward).
func mergeFuzzy(lists [][]domain.Item) []domain.Item {
	out := make([]domain.Item, 0)
	for _, list := range lists {
	candidates:
		for _, it := range list {
			for k := range out {
				if titleSimilarity(out[k].Title, it.Title) >= fuzzyThreshold {
					if !it.Published.IsZero() && it.Published.After(out[k].Published) {
						out[k] = it
					}
					continue candidates
				}
			}
			out = append(out, it)
		}
	}
	return out
}

// titleSimilarity is a normalized Levenshtein ratio over lower-cased,
// whitespace-collapsed titles: 1.0 identical, 0.0 disjoint.
func titleSimilarity(a, b string) float64 {
	a = collapseSpace(strings.ToLower(a))
	b = collapseSpace(strings.ToLower(b))
	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}

	dist := levenshtein.ComputeDistance(a, b)
	longest := len([]rune(a))
	if lb := len([]rune(b)); lb > longest {
		longest = lb
	}
	return 1.0 - float64(dist)/float64(longest)
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
