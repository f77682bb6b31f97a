package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsbrief/pkg/domain"
)

func TestParseDay(t *testing.T) {
	t.Run("valid day in kst", func(t *testing.T) {
		ts, err := ParseDay("240115")
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, kst), ts)
	})

	t.Run("empty is zero without error", func(t *testing.T) {
		ts, err := ParseDay("")
		require.NoError(t, err)
		assert.True(t, ts.IsZero())
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := ParseDay("2024-01-15")
		assert.Error(t, err)
	})
}

func TestValidateDayRange(t *testing.T) {
	t.Run("ordered bounds", func(t *testing.T) {
		assert.NoError(t, ValidateDayRange("240101", "240131"))
	})

	t.Run("single day", func(t *testing.T) {
		assert.NoError(t, ValidateDayRange("240115", "240115"))
	})

	t.Run("open bounds", func(t *testing.T) {
		assert.NoError(t, ValidateDayRange("", ""))
		assert.NoError(t, ValidateDayRange("240101", ""))
		assert.NoError(t, ValidateDayRange("", "240131"))
	})

	t.Run("malformed start", func(t *testing.T) {
		assert.Error(t, ValidateDayRange("jan-01", "240131"))
	})

	t.Run("malformed end", func(t *testing.T) {
		assert.Error(t, ValidateDayRange("240101", "2024-01-31"))
	})

	t.Run("reversed", func(t *testing.T) {
		err := ValidateDayRange("240131", "240101")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "before start day")
	})
}

func TestFilterByDateRange(t *testing.T) {
	items := []domain.Item{
		// 2024-01-15 23:59:59 KST, the last second of the end day
		{ID: "end-edge", Published: time.Date(2024, 1, 15, 14, 59, 59, 0, time.UTC)},
		// 2024-01-16 00:00:00 KST, just past the end day
		{ID: "past-end", Published: time.Date(2024, 1, 15, 15, 0, 0, 0, time.UTC)},
		// 2024-01-15 00:00:00 KST, the first instant of the start day
		{ID: "start-edge", Published: time.Date(2024, 1, 14, 15, 0, 0, 0, time.UTC)},
		// 2024-01-14 23:59:59 KST, just before the start day
		{ID: "before-start", Published: time.Date(2024, 1, 14, 14, 59, 59, 0, time.UTC)},
		{ID: "undated"},
	}

	t.Run("inclusive kst boundaries", func(t *testing.T) {
		got, err := FilterByDateRange(items, "240115", "240115")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "end-edge", got[0].ID)
		assert.Equal(t, "start-edge", got[1].ID)
	})

	t.Run("open start", func(t *testing.T) {
		got, err := FilterByDateRange(items, "", "240114")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "before-start", got[0].ID)
	})

	t.Run("open end", func(t *testing.T) {
		got, err := FilterByDateRange(items, "240116", "")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "past-end", got[0].ID)
	})

	t.Run("undated dropped when range active", func(t *testing.T) {
		got, err := FilterByDateRange(items, "240101", "241231")
		require.NoError(t, err)
		for _, it := range got {
			assert.NotEqual(t, "undated", it.ID)
		}
	})

	t.Run("no bounds is identity", func(t *testing.T) {
		got, err := FilterByDateRange(items, "", "")
		require.NoError(t, err)
		assert.Equal(t, items, got)
	})

	t.Run("reversed bounds", func(t *testing.T) {
		_, err := FilterByDateRange(items, "240116", "240115")
		assert.Error(t, err)
	})

	t.Run("malformed bound", func(t *testing.T) {
		_, err := FilterByDateRange(items, "jan-15", "")
		assert.Error(t, err)
	})
}

func TestFilterByPublishers(t *testing.T) {
	items := []domain.Item{
		{ID: "1", Publisher: "연합뉴스", Link: "https://www.yna.co.kr/view/1"},
		{ID: "2", Publisher: "Example News", Link: "https://www.example.com/2"},
		{ID: "3", Publisher: "한겨레", Link: "https://www.hani.co.kr/3"},
	}

	t.Run("match by publisher name", func(t *testing.T) {
		got := FilterByPublishers(items, []string{"연합뉴스"})
		require.Len(t, got, 1)
		assert.Equal(t, "1", got[0].ID)
	})

	t.Run("match by domain", func(t *testing.T) {
		got := FilterByPublishers(items, []string{"hani.co.kr"})
		require.Len(t, got, 1)
		assert.Equal(t, "3", got[0].ID)
	})

	t.Run("case insensitive", func(t *testing.T) {
		got := FilterByPublishers(items, []string{"EXAMPLE NEWS"})
		require.Len(t, got, 1)
		assert.Equal(t, "2", got[0].ID)
	})

	t.Run("empty list is identity", func(t *testing.T) {
		assert.Equal(t, items, FilterByPublishers(items, nil))
		assert.Equal(t, items, FilterByPublishers(items, []string{"  "}))
	})
}
