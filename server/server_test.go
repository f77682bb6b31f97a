package server

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newsbrief/pkg/domain"
	"newsbrief/pkg/pipeline"
)

type mockRunner struct {
	items    []domain.Item
	err      error
	lastQ    string
	lastOpts pipeline.Options
}

func (m *mockRunner) Run(_ context.Context, query string, opts pipeline.Options) ([]domain.Item, error) {
	m.lastQ = query
	m.lastOpts = opts
	return m.items, m.err
}

type mockConfig struct{ defaults pipeline.Options }

func (m *mockConfig) GetServerConfig() (string, time.Duration) { return ":0", 5 * time.Second }
func (m *mockConfig) PipelineDefaults() pipeline.Options       { return m.defaults }

func newTestServer(t *testing.T, runner *mockRunner) (*Server, *httptest.Server) {
	t.Helper()
	srv := New(&mockConfig{defaults: pipeline.Options{MaxResults: 50, SummarySentences: 3, TopKeywords: 20}},
		runner, "test", false)
	ts := httptest.NewServer(srv.router)
	t.Cleanup(ts.Close)
	return srv, ts
}

func getBody(t *testing.T, url string) (int, []byte) {
	t.Helper()
	resp, err := http.Get(url) //nolint:gosec // test server URL
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

func TestServer_Ping(t *testing.T) {
	_, ts := newTestServer(t, &mockRunner{})
	code, body := getBody(t, ts.URL+"/ping")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "pong", string(body))
}

func TestServer_Status(t *testing.T) {
	_, ts := newTestServer(t, &mockRunner{})
	code, body := getBody(t, ts.URL+"/api/v1/status")
	assert.Equal(t, http.StatusOK, code)

	var status map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &status))
	assert.Equal(t, "ok", status["status"])
	assert.Equal(t, "test", status["version"])
}

func TestServer_Search(t *testing.T) {
	runner := &mockRunner{items: []domain.Item{
		{ID: "1", Title: "금리 동결", Link: "https://example.com/1",
			Published: time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)},
	}}
	_, ts := newTestServer(t, runner)

	code, body := getBody(t, ts.URL+"/api/v1/search?q=금리")
	require.Equal(t, http.StatusOK, code)

	var resp struct {
		Query string `json:"query"`
		Count int    `json:"count"`
		Items []struct {
			Title       string `json:"title"`
			PublishedAt string `json:"published_at"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(body, &resp))
	assert.Equal(t, "금리", resp.Query)
	assert.Equal(t, 1, resp.Count)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "금리 동결", resp.Items[0].Title)
	assert.Equal(t, "2024-01-15T09:30:00Z", resp.Items[0].PublishedAt)

	assert.Equal(t, "금리", runner.lastQ)
	assert.Equal(t, 50, runner.lastOpts.MaxResults, "config defaults applied")
}

func TestServer_SearchParamOverrides(t *testing.T) {
	runner := &mockRunner{}
	_, ts := newTestServer(t, runner)

	code, _ := getBody(t, ts.URL+
		"/api/v1/search?q=금리&max=5&policy=fuzzy&from=240101&to=240131&publishers=연합뉴스,한겨레&summarize=true&sentences=2")
	require.Equal(t, http.StatusOK, code)

	assert.Equal(t, 5, runner.lastOpts.MaxResults)
	assert.Equal(t, domain.MergeFuzzy, runner.lastOpts.MergePolicy)
	assert.Equal(t, "240101", runner.lastOpts.StartDay)
	assert.Equal(t, "240131", runner.lastOpts.EndDay)
	assert.Equal(t, []string{"연합뉴스", "한겨레"}, runner.lastOpts.Publishers)
	assert.True(t, runner.lastOpts.Summarize)
	assert.True(t, runner.lastOpts.FetchText, "summaries require fetched text")
	assert.Equal(t, 2, runner.lastOpts.SummarySentences)
}

func TestServer_SearchBadRequest(t *testing.T) {
	_, ts := newTestServer(t, &mockRunner{})

	tests := []struct {
		name string
		path string
	}{
		{name: "missing query", path: "/api/v1/search"},
		{name: "bad max", path: "/api/v1/search?q=q&max=zero"},
		{name: "bad policy", path: "/api/v1/search?q=q&policy=smart"},
		{name: "bad boolean", path: "/api/v1/search?q=q&summarize=maybe"},
		{name: "bad sentences", path: "/api/v1/search?q=q&sentences=-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, body := getBody(t, ts.URL+tt.path)
			assert.Equal(t, http.StatusBadRequest, code)
			assert.Contains(t, string(body), "error")
		})
	}
}

func TestServer_SearchBadDateBound(t *testing.T) {
	t.Run("malformed", func(t *testing.T) {
		runner := &mockRunner{}
		_, ts := newTestServer(t, runner)

		code, _ := getBody(t, ts.URL+"/api/v1/search?q=금리&from=bogus")
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Empty(t, runner.lastQ, "pipeline must not run on a bad bound")
	})

	t.Run("reversed", func(t *testing.T) {
		runner := &mockRunner{}
		_, ts := newTestServer(t, runner)

		code, body := getBody(t, ts.URL+"/api/v1/search?q=금리&from=240131&to=240101")
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Contains(t, string(body), "before start day")
		assert.Empty(t, runner.lastQ, "pipeline must not run on reversed bounds")
	})
}

func TestServer_SearchRunError(t *testing.T) {
	runner := &mockRunner{err: errors.New("end day 240101 is before start day 240131")}
	_, ts := newTestServer(t, runner)

	code, _ := getBody(t, ts.URL+"/api/v1/search?q=금리")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestServer_SearchCSV(t *testing.T) {
	runner := &mockRunner{items: []domain.Item{
		{ID: "1", Title: "금리 동결", Link: "https://example.com/1", Publisher: "연합뉴스"},
	}}
	_, ts := newTestServer(t, runner)

	resp, err := http.Get(ts.URL + "/api/v1/search.csv?q=금리")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/csv")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "filename*=UTF-8''%EA%B8%88%EB%A6%AC_results.csv")

	records, err := csv.NewReader(resp.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "금리 동결", records[1][0])
}

func TestServer_SearchXLSX(t *testing.T) {
	runner := &mockRunner{items: []domain.Item{{ID: "1", Title: "금리 동결", Link: "https://example.com/1"}}}
	_, ts := newTestServer(t, runner)

	resp, err := http.Get(ts.URL + "/api/v1/search.xlsx?q=금리")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "spreadsheetml")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), ".xlsx")
}

func TestAttachment(t *testing.T) {
	t.Run("ascii name stays plain", func(t *testing.T) {
		assert.Equal(t, `attachment; filename="economy_results.csv"`, attachment("economy", "csv"))
	})

	t.Run("spaces and quotes sanitized", func(t *testing.T) {
		assert.Equal(t, `attachment; filename="rate_hike_results.csv"`, attachment("rate hike", "csv"))
		assert.Equal(t, `attachment; filename="a_b_results.csv"`, attachment(`a"b`, "csv"))
	})

	t.Run("non-ascii uses extended parameter", func(t *testing.T) {
		got := attachment("금리", "xlsx")
		assert.Equal(t, `attachment; filename="results.xlsx"; filename*=UTF-8''%EA%B8%88%EB%A6%AC_results.xlsx`, got)
	})
}

func TestServer_Digest(t *testing.T) {
	runner := &mockRunner{items: []domain.Item{{ID: "1", Title: "금리 동결", Link: "https://example.com/1"}}}
	srv, ts := newTestServer(t, runner)

	t.Run("empty cache is 404", func(t *testing.T) {
		code, _ := getBody(t, ts.URL+"/api/v1/digest")
		assert.Equal(t, http.StatusNotFound, code)
	})

	t.Run("refresh populates cache", func(t *testing.T) {
		require.NoError(t, srv.Refresh(context.Background(), "금리"))

		code, body := getBody(t, ts.URL+"/api/v1/digest")
		require.Equal(t, http.StatusOK, code)

		var resp digestResponse
		require.NoError(t, json.Unmarshal(body, &resp))
		assert.Equal(t, "금리", resp.Query)
		assert.Equal(t, 1, resp.Count)
		assert.False(t, resp.RefreshedAt.IsZero())
	})

	t.Run("refresh failure keeps cache", func(t *testing.T) {
		runner.err = errors.New("source down")
		require.Error(t, srv.Refresh(context.Background(), "금리"))

		code, _ := getBody(t, ts.URL+"/api/v1/digest")
		assert.Equal(t, http.StatusOK, code, "stale digest still served")
	})
}
