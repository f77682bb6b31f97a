package text

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/clipperhouse/uax29/v2/words"
)

// wordRE matches script-agnostic word runs of at least two characters.
var wordRE = regexp.MustCompile(`[\p{L}\p{N}][\p{L}\p{N}]+`)

// defaultStopwords is the built-in Korean function-word list; config can
// extend it but not shrink it.
var defaultStopwords = []string{
	"그리고", "그러나", "하지만", "또한", "또는", "그래서", "이런", "저런", "그냥",
	"매우", "너무", "상당히", "더욱", "더욱이", "바로", "이미",
	"이것", "그것", "저것", "여기", "저기", "우리", "여러분",
	"등의", "등", "등등", "변화", "대한", "관련", "관련해", "대해서", "경우", "통해", "대해",
}

// KeywordStrategy extracts the top-k terms from a body of text. Both
// implementations are deterministic: equal frequencies break toward the
// lexicographically smaller term.
type KeywordStrategy interface {
	Extract(text string, topK int) []string
}

// Extractor mode names, matching the config enum.
const (
	ModeSegmenter = "segmenter"
	ModeFrequency = "frequency"
)

// NewKeywordStrategy returns the extractor for mode: ModeFrequency for
// plain word-run counting, anything else the Unicode segmenter.
func NewKeywordStrategy(mode string, extraStopwords []string) KeywordStrategy {
	stop := stopwordSet(extraStopwords)
	if mode == ModeFrequency {
		return &FrequencyExtractor{stopwords: stop}
	}
	return &SegmenterExtractor{stopwords: stop}
}

// FrequencyExtractor counts word-character runs, the fallback strategy that
// needs nothing beyond a regular expression.
type FrequencyExtractor struct {
	stopwords map[string]struct{}
}

// Extract returns the topK most frequent terms of text.
func (e *FrequencyExtractor) Extract(text string, topK int) []string {
	if strings.TrimSpace(text) == "" {
		return []string{}
	}
	freq := make(map[string]int)
	for _, w := range wordRE.FindAllString(text, -1) {
		wl := strings.ToLower(w)
		if _, ok := e.stopwords[wl]; ok {
			continue
		}
		freq[wl]++
	}
	return topTerms(freq, topK)
}

// SegmenterExtractor tokenizes with Unicode word segmentation (UAX #29),
// which handles scripts without space-delimited words better than a word-run
// regex. It stands in for a morphological analyzer; tokens without letters
// or digits and single-rune tokens are discarded.
type SegmenterExtractor struct {
	stopwords map[string]struct{}
}

// Extract returns the topK most frequent segmented terms of text.
func (e *SegmenterExtractor) Extract(text string, topK int) []string {
	if strings.TrimSpace(text) == "" {
		return []string{}
	}
	freq := make(map[string]int)
	tokens := words.FromString(text)
	for tokens.Next() {
		tok := strings.ToLower(strings.TrimSpace(tokens.Value()))
		if utf8.RuneCountInString(tok) < 2 || !hasAlnum(tok) {
			continue
		}
		if _, ok := e.stopwords[tok]; ok {
			continue
		}
		freq[tok]++
	}
	return topTerms(freq, topK)
}

// topTerms orders by descending frequency with a lexicographic tie-break so
// equal-frequency output is reproducible across runs.
func topTerms(freq map[string]int, topK int) []string {
	terms := make([]string, 0, len(freq))
	for t := range freq {
		terms = append(terms, t)
	}
	sort.Slice(terms, func(i, j int) bool {
		if freq[terms[i]] != freq[terms[j]] {
			return freq[terms[i]] > freq[terms[j]]
		}
		return terms[i] < terms[j]
	})
	if topK > 0 && len(terms) > topK {
		terms = terms[:topK]
	}
	return terms
}

func stopwordSet(extra []string) map[string]struct{} {
	set := make(map[string]struct{}, len(defaultStopwords)+len(extra))
	for _, w := range defaultStopwords {
		set[w] = struct{}{}
	}
	for _, w := range extra {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			set[w] = struct{}{}
		}
	}
	return set
}

func hasAlnum(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			return true
		}
	}
	return false
}

// tokenize lower-cases and extracts word runs for sentence scoring.
func tokenize(s string) []string {
	raw := wordRE.FindAllString(s, -1)
	out := make([]string, 0, len(raw))
	for _, w := range raw {
		out = append(out, strings.ToLower(w))
	}
	return out
}
