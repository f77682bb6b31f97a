package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"newsbrief/pkg/domain"
)

// WriteCSV writes items as CSV with a header row.
func WriteCSV(w io.Writer, items []domain.Item, opts Options) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns(opts)); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, it := range items {
		if err := cw.Write(Row(it, opts)); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
