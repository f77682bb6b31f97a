package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItem_PublishedISO(t *testing.T) {
	it := Item{Published: time.Date(2024, 1, 15, 18, 30, 0, 0, time.FixedZone("KST", 9*3600))}
	assert.Equal(t, "2024-01-15T09:30:00Z", it.PublishedISO(), "rendered in UTC")

	undated := Item{}
	assert.Equal(t, "", undated.PublishedISO())
}

func TestItem_MarshalJSON(t *testing.T) {
	it := Item{
		ID:        "abc",
		Title:     "금리 동결",
		Link:      "https://example.com/1",
		Publisher: "연합뉴스",
		Published: time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC),
		Source:    "rss",
	}

	data, err := json.Marshal(it)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "2024-01-15T09:30:00Z", decoded["published_at"])
	assert.Equal(t, "금리 동결", decoded["title"])
	assert.NotContains(t, decoded, "content", "empty optional fields omitted")

	t.Run("undated item omits published_at", func(t *testing.T) {
		data, err := json.Marshal(Item{ID: "x", Title: "t"})
		require.NoError(t, err)
		assert.NotContains(t, string(data), "published_at")
	})
}
