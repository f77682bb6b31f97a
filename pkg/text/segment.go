// Package text implements the language processing used by enrichment:
// sentence segmentation, extractive summarization and keyword extraction.
package text

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// minSentenceRunes filters out fragments too short to be real sentences.
const minSentenceRunes = 10

// sentenceMark is inserted after sentence-final punctuation before
// splitting. Inserting a marker and splitting on it keeps multi-byte text
// intact where a lookahead-style split would not.
const sentenceMark = "§¶§"

var (
	spaceRE    = regexp.MustCompile(`\s+`)
	sentenceRE = regexp.MustCompile(`(다\.|[.!?])\s+`)
)

// Sentences splits raw body text into candidate sentences. Whitespace runs
// are collapsed to single spaces, the text is split after a sentence-final
// marker (".", "!", "?" or the Korean verb ending "다.") followed by
// whitespace, and fragments under 10 runes are discarded as noise.
func Sentences(text string) []string {
	text = strings.TrimSpace(spaceRE.ReplaceAllString(text, " "))
	if text == "" {
		return nil
	}

	marked := sentenceRE.ReplaceAllString(text, "${1}"+sentenceMark)
	parts := strings.Split(marked, sentenceMark)

	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if utf8.RuneCountInString(p) >= minSentenceRunes {
			out = append(out, p)
		}
	}
	return out
}
