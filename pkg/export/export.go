// Package export renders pipeline results for the console and for file
// downloads. All writers share the same fixed column set: title, publisher,
// published_at, url, plus summary and keywords when enabled.
package export

import (
	"strings"

	"newsbrief/pkg/domain"
)

// Options selects the optional output columns.
type Options struct {
	Summary  bool
	Keywords bool
}

// Columns returns the export header row for the enabled optional fields.
func Columns(opts Options) []string {
	cols := []string{"title", "publisher", "published_at", "url"}
	if opts.Summary {
		cols = append(cols, "summary")
	}
	if opts.Keywords {
		cols = append(cols, "keywords")
	}
	return cols
}

// Row flattens one item into cells matching Columns(opts).
func Row(it domain.Item, opts Options) []string {
	row := []string{it.Title, it.Publisher, it.PublishedISO(), it.Link}
	if opts.Summary {
		row = append(row, it.Summary)
	}
	if opts.Keywords {
		row = append(row, strings.Join(it.Keywords, ", "))
	}
	return row
}
