package main

import (
	"encoding/json"
	"fmt"
	"io"

	"newsbrief/pkg/config"
	"newsbrief/pkg/domain"
	"newsbrief/pkg/export"
)

// writeResults renders items in the requested format.
func writeResults(w io.Writer, items []domain.Item, cfg *config.Config, format string) error {
	opts := export.Options{Summary: cfg.Enrich.Summarize, Keywords: cfg.Enrich.Keywords}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(items); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	case "csv":
		return export.WriteCSV(w, items, opts)
	case "xlsx":
		return export.WriteXLSX(w, items, opts)
	default:
		return export.WriteTable(w, items, opts)
	}
}
