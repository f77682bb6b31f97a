package server

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"newsbrief/pkg/domain"
	"newsbrief/pkg/export"
	"newsbrief/pkg/pipeline"
)

// searchResponse is the JSON envelope for search results.
type searchResponse struct {
	Query string        `json:"query"`
	Count int           `json:"count"`
	Items []domain.Item `json:"items"`
}

// searchHandler runs the pipeline for the query and returns items as JSON.
func (s *Server) searchHandler(w http.ResponseWriter, r *http.Request) {
	query, opts, err := s.searchOptions(r)
	if err != nil {
		RenderError(w, r, err, http.StatusBadRequest)
		return
	}

	items, err := s.runner.Run(r.Context(), query, opts)
	if err != nil {
		RenderError(w, r, err, http.StatusBadRequest)
		return
	}
	if items == nil {
		items = []domain.Item{}
	}

	RenderJSON(w, r, http.StatusOK, searchResponse{Query: query, Count: len(items), Items: items})
}

// searchCSVHandler runs the pipeline and streams results as a CSV download.
func (s *Server) searchCSVHandler(w http.ResponseWriter, r *http.Request) {
	query, opts, err := s.searchOptions(r)
	if err != nil {
		RenderError(w, r, err, http.StatusBadRequest)
		return
	}

	items, err := s.runner.Run(r.Context(), query, opts)
	if err != nil {
		RenderError(w, r, err, http.StatusBadRequest)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, items, exportOptions(opts)); err != nil {
		RenderError(w, r, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", attachment(query, "csv"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// searchXLSXHandler runs the pipeline and streams results as a workbook.
func (s *Server) searchXLSXHandler(w http.ResponseWriter, r *http.Request) {
	query, opts, err := s.searchOptions(r)
	if err != nil {
		RenderError(w, r, err, http.StatusBadRequest)
		return
	}

	items, err := s.runner.Run(r.Context(), query, opts)
	if err != nil {
		RenderError(w, r, err, http.StatusBadRequest)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, items, exportOptions(opts)); err != nil {
		RenderError(w, r, err, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", attachment(query, "xlsx"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// digestResponse is the JSON envelope for the cached scheduled digest.
type digestResponse struct {
	Query       string        `json:"query"`
	Count       int           `json:"count"`
	RefreshedAt time.Time     `json:"refreshed_at"`
	Items       []domain.Item `json:"items"`
}

// digestHandler returns the last scheduled digest run from the cache.
func (s *Server) digestHandler(w http.ResponseWriter, r *http.Request) {
	s.digestMu.RLock()
	defer s.digestMu.RUnlock()

	if s.digestAt.IsZero() {
		RenderError(w, r, fmt.Errorf("no digest available yet"), http.StatusNotFound)
		return
	}

	RenderJSON(w, r, http.StatusOK, digestResponse{
		Query:       s.digestQuery,
		Count:       len(s.digestItems),
		RefreshedAt: s.digestAt,
		Items:       s.digestItems,
	})
}

// searchOptions builds pipeline options for one request: configured defaults
// overridden by query parameters. The query itself is required.
func (s *Server) searchOptions(r *http.Request) (string, pipeline.Options, error) {
	opts := s.config.PipelineDefaults()

	q := r.URL.Query()
	query := strings.TrimSpace(q.Get("q"))
	if query == "" {
		return "", opts, fmt.Errorf("q parameter is required")
	}

	if v := q.Get("max"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return "", opts, fmt.Errorf("max must be a positive integer, got %q", v)
		}
		opts.MaxResults = n
	}

	if v := q.Get("policy"); v != "" {
		switch domain.MergePolicy(v) {
		case domain.MergeExact, domain.MergeFuzzy:
			opts.MergePolicy = domain.MergePolicy(v)
		default:
			return "", opts, fmt.Errorf("policy must be exact or fuzzy, got %q", v)
		}
	}

	if v := q.Get("from"); v != "" {
		opts.StartDay = v
	}
	if v := q.Get("to"); v != "" {
		opts.EndDay = v
	}
	// reject bad or reversed bounds here, before any collector fires
	if err := pipeline.ValidateDayRange(opts.StartDay, opts.EndDay); err != nil {
		return "", opts, err
	}

	if v := q.Get("publishers"); v != "" {
		var pubs []string
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				pubs = append(pubs, p)
			}
		}
		opts.Publishers = pubs
	}

	var err error
	if opts.FetchText, err = boolParam(q.Get("fetch_text"), opts.FetchText); err != nil {
		return "", opts, fmt.Errorf("fetch_text: %w", err)
	}
	if opts.Summarize, err = boolParam(q.Get("summarize"), opts.Summarize); err != nil {
		return "", opts, fmt.Errorf("summarize: %w", err)
	}
	if opts.Keywords, err = boolParam(q.Get("keywords"), opts.Keywords); err != nil {
		return "", opts, fmt.Errorf("keywords: %w", err)
	}

	// body text is a prerequisite for both derived fields
	if opts.Summarize || opts.Keywords {
		opts.FetchText = true
	}

	if v := q.Get("sentences"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return "", opts, fmt.Errorf("sentences must be a positive integer, got %q", v)
		}
		opts.SummarySentences = n
	}
	if v := q.Get("top_keywords"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return "", opts, fmt.Errorf("top_keywords must be a positive integer, got %q", v)
		}
		opts.TopKeywords = n
	}

	return query, opts, nil
}

// boolParam parses an optional boolean query parameter, keeping def when absent.
func boolParam(v string, def bool) (bool, error) {
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("expected boolean, got %q", v)
	}
	return b, nil
}

// exportOptions maps run options to export columns.
func exportOptions(opts pipeline.Options) export.Options {
	return export.Options{Summary: opts.Summarize, Keywords: opts.Keywords}
}

// attachment builds a Content-Disposition value with a query-derived
// filename. Non-ASCII names go into the filename* extended parameter per
// RFC 6266, with a plain ASCII fallback in filename.
func attachment(query, ext string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '/', '\\', '"':
			return '_'
		}
		return r
	}, query) + "_results." + ext

	if isASCII(name) {
		return fmt.Sprintf("attachment; filename=%q", name)
	}
	return fmt.Sprintf("attachment; filename=%q; filename*=UTF-8''%s", "results."+ext, encodeRFC5987(name))
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// encodeRFC5987 percent-encodes every byte outside the attr-char set.
func encodeRFC5987(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9',
			strings.IndexByte("!#$&+-.^_`|~", c) >= 0:
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, "%%%02X", c)
		}
	}
	return b.String()
}
