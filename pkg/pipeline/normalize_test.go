package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "lowercases scheme and host",
			input:    "HTTP://Example.COM/News",
			expected: "http://example.com/News",
		},
		{
			name:     "strips trailing slash",
			input:    "https://example.com/news/",
			expected: "https://example.com/news",
		},
		{
			name:     "strips utm parameters",
			input:    "https://example.com/a?utm_source=tw&id=3&utm_medium=social",
			expected: "https://example.com/a?id=3",
		},
		{
			name:     "strips fbclid and gclid",
			input:    "https://example.com/a?fbclid=abc&gclid=def&page=2",
			expected: "https://example.com/a?page=2",
		},
		{
			name:     "drops fragment",
			input:    "https://example.com/a?id=1#comments",
			expected: "https://example.com/a?id=1",
		},
		{
			name:     "preserves query parameter order",
			input:    "https://example.com/a?z=1&a=2&m=3",
			expected: "https://example.com/a?z=1&a=2&m=3",
		},
		{
			name:     "all params tracking leaves bare url",
			input:    "https://example.com/a?utm_source=x&utm_campaign=y",
			expected: "https://example.com/a",
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeURL(tt.input))
		})
	}
}

func TestNormalizeURL_Idempotent(t *testing.T) {
	inputs := []string{
		"https://example.com/news/?utm_source=x&id=3",
		"HTTP://Example.COM/News/#frag",
		"https://example.com/s?q=%EB%89%B4%EC%8A%A4",
		"https://example.com/a?z=1&a=2",
	}
	for _, in := range inputs {
		once := NormalizeURL(in)
		assert.Equal(t, once, NormalizeURL(once), "normalization of %q must be stable", in)
	}
}

func TestExtractDomain(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "plain host", input: "https://example.com/news", expected: "example.com"},
		{name: "strips www", input: "https://www.example.com/news", expected: "example.com"},
		{name: "lowercases host", input: "https://News.Example.COM/a", expected: "news.example.com"},
		{name: "no host", input: "not a url", expected: ""},
		{name: "empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ExtractDomain(tt.input))
		})
	}
}
