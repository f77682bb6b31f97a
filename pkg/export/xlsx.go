package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"newsbrief/pkg/domain"
)

const sheetName = "results"

// WriteXLSX writes items to a single-sheet workbook. Title cells are
// hyperlinked to the article URL; the URL column keeps the plain string.
func WriteXLSX(w io.Writer, items []domain.Item, opts Options) error {
	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck // in-memory workbook, nothing to release

	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("drop default sheet: %w", err)
	}

	for col, name := range Columns(opts) {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("header cell name: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, name); err != nil {
			return fmt.Errorf("set header cell: %w", err)
		}
	}

	linkStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Color: "0000EE", Underline: "single"},
	})
	if err != nil {
		return fmt.Errorf("create link style: %w", err)
	}

	for r, it := range items {
		for c, val := range Row(it, opts) {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return fmt.Errorf("cell name: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, val); err != nil {
				return fmt.Errorf("set cell: %w", err)
			}
		}

		if strings.HasPrefix(it.Link, "http") {
			cell, err := excelize.CoordinatesToCellName(1, r+2)
			if err != nil {
				return fmt.Errorf("title cell name: %w", err)
			}
			if err := f.SetCellHyperLink(sheetName, cell, it.Link, "External"); err != nil {
				return fmt.Errorf("set hyperlink: %w", err)
			}
			if err := f.SetCellStyle(sheetName, cell, cell, linkStyle); err != nil {
				return fmt.Errorf("set link style: %w", err)
			}
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
