// Package export renders the session detail table for download.
// The CSV shape is stable byte-for-byte for a given row set so
// downstream tooling can diff exports across runs.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/AyGoub/gramview/internal/analytics"
)

// hasThemes reports whether any row carries a theme. The theme
// column is omitted entirely for untagged populations, matching
// the dashboard table.
func hasThemes(rows []analytics.SessionRow) bool {
	for _, r := range rows {
		if r.Theme != "" {
			return true
		}
	}
	return false
}

func header(withTheme bool) []string {
	h := []string{"date", "start_time", "duration_min"}
	if withTheme {
		h = append(h, "theme")
	}
	return h
}

func record(r analytics.SessionRow, withTheme bool) []string {
	rec := []string{
		r.Date,
		r.StartTime,
		strconv.FormatFloat(r.DurationMinutes, 'f', 1, 64),
	}
	if withTheme {
		rec = append(rec, r.Theme)
	}
	return rec
}

// WriteCSV writes the session table as CSV, newest session first
// (the order analytics.SessionRows produces).
func WriteCSV(w io.Writer, rows []analytics.SessionRow) error {
	withTheme := hasThemes(rows)
	cw := csv.NewWriter(w)
	if err := cw.Write(header(withTheme)); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write(record(r, withTheme)); err != nil {
			return fmt.Errorf("writing csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

const sheetName = "Sessions"

// WriteXLSX writes the session table as a single-sheet workbook.
func WriteXLSX(w io.Writer, rows []analytics.SessionRow) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	withTheme := hasThemes(rows)
	for col, name := range header(withTheme) {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, name); err != nil {
			return fmt.Errorf("writing header cell: %w", err)
		}
	}

	for i, r := range rows {
		values := []any{r.Date, r.StartTime, r.DurationMinutes}
		if withTheme {
			values = append(values, r.Theme)
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return fmt.Errorf("writing row cell: %w", err)
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}
