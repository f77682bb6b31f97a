package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"

	"newsbrief/pkg/domain"
)

// console column widths in display cells. CJK titles take two cells per
// rune, hence display-width math instead of len().
const (
	titleWidth     = 42
	publisherWidth = 18
	dateWidth      = 20
)

// WriteTable renders items as an aligned console table. Summary and
// keyword lines follow each row indented when enabled.
func WriteTable(w io.Writer, items []domain.Item, opts Options) error {
	header := fmt.Sprintf("%3s  %s  %s  %s  %s", "#",
		runewidth.FillRight("TITLE", titleWidth),
		runewidth.FillRight("PUBLISHER", publisherWidth),
		runewidth.FillRight("PUBLISHED", dateWidth),
		"LINK")
	if _, err := fmt.Fprintln(w, header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if _, err := fmt.Fprintln(w, strings.Repeat("-", runewidth.StringWidth(header))); err != nil {
		return fmt.Errorf("write separator: %w", err)
	}

	for i, it := range items {
		row := fmt.Sprintf("%3d  %s  %s  %s  %s", i+1,
			runewidth.FillRight(runewidth.Truncate(it.Title, titleWidth, "…"), titleWidth),
			runewidth.FillRight(runewidth.Truncate(it.Publisher, publisherWidth, "…"), publisherWidth),
			runewidth.FillRight(it.PublishedISO(), dateWidth),
			it.Link)
		if _, err := fmt.Fprintln(w, row); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
		if opts.Summary && it.Summary != "" {
			if _, err := fmt.Fprintf(w, "     summary:  %s\n", it.Summary); err != nil {
				return fmt.Errorf("write summary: %w", err)
			}
		}
		if opts.Keywords && len(it.Keywords) > 0 {
			if _, err := fmt.Fprintf(w, "     keywords: %s\n", strings.Join(it.Keywords, ", ")); err != nil {
				return fmt.Errorf("write keywords: %w", err)
			}
		}
	}
	return nil
}
