package export

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"newsbrief/pkg/domain"
)

func sampleItems() []domain.Item {
	return []domain.Item{
		{
			ID:        "1",
			Title:     "한국은행 기준금리 동결",
			Link:      "https://example.com/articles/1",
			Publisher: "연합뉴스",
			Published: time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC),
			Summary:   "금리가 동결됐다.",
			Keywords:  []string{"금리", "동결"},
		},
		{
			ID:        "2",
			Title:     "Chip exports rise",
			Link:      "https://example.com/articles/2",
			Publisher: "Example Daily",
		},
	}
}

func TestColumns(t *testing.T) {
	assert.Equal(t, []string{"title", "publisher", "published_at", "url"}, Columns(Options{}))
	assert.Equal(t,
		[]string{"title", "publisher", "published_at", "url", "summary", "keywords"},
		Columns(Options{Summary: true, Keywords: true}))
}

func TestRow(t *testing.T) {
	it := sampleItems()[0]

	row := Row(it, Options{Summary: true, Keywords: true})
	assert.Equal(t, []string{
		"한국은행 기준금리 동결", "연합뉴스", "2024-01-15T09:30:00Z",
		"https://example.com/articles/1", "금리가 동결됐다.", "금리, 동결",
	}, row)

	t.Run("undated item leaves date empty", func(t *testing.T) {
		row := Row(sampleItems()[1], Options{})
		assert.Equal(t, "", row[2])
	})
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, sampleItems(), Options{Summary: true})
	require.NoError(t, err)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3, "header plus two rows")
	assert.Equal(t, []string{"title", "publisher", "published_at", "url", "summary"}, records[0])
	assert.Equal(t, "한국은행 기준금리 동결", records[1][0])
	assert.Equal(t, "금리가 동결됐다.", records[1][4])
}

func TestWriteTable(t *testing.T) {
	var buf bytes.Buffer
	err := WriteTable(&buf, sampleItems(), Options{Summary: true, Keywords: true})
	require.NoError(t, err)
	out := buf.String()

	assert.Contains(t, out, "TITLE")
	assert.Contains(t, out, "한국은행 기준금리 동결")
	assert.Contains(t, out, "summary:  금리가 동결됐다.")
	assert.Contains(t, out, "keywords: 금리, 동결")

	t.Run("columns align on display width", func(t *testing.T) {
		// link column must start at the same display offset in every row
		// despite double-width korean runes in the title
		var offsets []int
		for _, line := range strings.Split(out, "\n") {
			if idx := strings.Index(line, "https://example.com/"); idx >= 0 {
				offsets = append(offsets, runewidth.StringWidth(line[:idx]))
			}
		}
		require.Len(t, offsets, 2)
		assert.Equal(t, offsets[0], offsets[1])
	})
}

func TestWriteTable_TruncatesLongTitles(t *testing.T) {
	items := []domain.Item{{
		Title: strings.Repeat("아주 긴 제목 ", 20),
		Link:  "https://example.com/1",
	}}

	var buf bytes.Buffer
	require.NoError(t, WriteTable(&buf, items, Options{}))
	assert.Contains(t, buf.String(), "…")
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleItems(), Options{Summary: true, Keywords: true}))

	f, e := excelize.OpenReader(&buf)
	require.NoError(t, e)
	defer f.Close() //nolint:errcheck // read-only workbook

	rows, e := f.GetRows(sheetName)
	require.NoError(t, e)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"title", "publisher", "published_at", "url", "summary", "keywords"}, rows[0])
	assert.Equal(t, "한국은행 기준금리 동결", rows[1][0])
	assert.Equal(t, "연합뉴스", rows[1][1])

	t.Run("title cell hyperlinked", func(t *testing.T) {
		ok, target, e := f.GetCellHyperLink(sheetName, "A2")
		require.NoError(t, e)
		assert.True(t, ok)
		assert.Equal(t, "https://example.com/articles/1", target)
	})

	t.Run("default sheet removed", func(t *testing.T) {
		assert.NotContains(t, f.GetSheetList(), "Sheet1")
	})
}
