package text

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"
)

// summaryFallbackRunes caps the verbatim prefix used when no sentences can
// be segmented out of the input.
const summaryFallbackRunes = 200

// defaultSummarySentences is used when the caller passes a non-positive count.
const defaultSummarySentences = 3

// Summarize produces an extractive summary of at most maxSentences
// sentences. Sentences are scored by the summed tf-idf weight of their
// tokens, treating the sentence set itself as the corpus, and the selection
// is re-ordered by original position so the summary reads in source order.
// Empty input gives an empty summary; unsegmentable input falls back to a
// truncated verbatim prefix, never an error.
func Summarize(text string, maxSentences int) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	if maxSentences <= 0 {
		maxSentences = defaultSummarySentences
	}

	sents := Sentences(text)
	if len(sents) == 0 {
		return prefixFallback(text)
	}
	if len(sents) <= maxSentences {
		return strings.Join(sents, " ")
	}

	scores := scoreSentences(sents)
	idx := make([]int, len(sents))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		if scores[idx[a]] == scores[idx[b]] {
			return idx[a] < idx[b] // tie goes to the earlier sentence
		}
		return scores[idx[a]] > scores[idx[b]]
	})

	picked := idx[:maxSentences]
	sort.Ints(picked) // restore source order

	out := make([]string, 0, len(picked))
	for _, i := range picked {
		out = append(out, sents[i])
	}
	return strings.Join(out, " ")
}

// scoreSentences computes per-sentence tf-idf sums over the sentence set.
func scoreSentences(sents []string) []float64 {
	n := len(sents)
	tokenized := make([][]string, n)
	df := make(map[string]int)
	for i, s := range sents {
		toks := tokenize(s)
		tokenized[i] = toks
		seen := make(map[string]struct{}, len(toks))
		for _, t := range toks {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			df[t]++
		}
	}

	scores := make([]float64, n)
	for i, toks := range tokenized {
		tf := make(map[string]int, len(toks))
		for _, t := range toks {
			tf[t]++
		}
		for t, c := range tf {
			idf := math.Log(float64(n+1)/float64(df[t]+1)) + 1
			scores[i] += float64(c) * idf
		}
	}
	return scores
}

func prefixFallback(text string) string {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) <= summaryFallbackRunes {
		return text
	}
	return string([]rune(text)[:summaryFallbackRunes]) + "..."
}
