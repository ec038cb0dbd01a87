package export

import (
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/cryptobalance/tracker/internal/insights"
)

// XLSXWriter implements ReportWriter by writing an .xlsx workbook to disk.
type XLSXWriter struct {
	path string
}

// NewXLSXWriter creates an XLSXWriter that saves the workbook at path.
func NewXLSXWriter(path string) *XLSXWriter {
	return &XLSXWriter{path: path}
}

// Write builds a workbook with a holdings sheet and a totals sheet and saves
// it, replacing any previous file at the same path.
func (w *XLSXWriter) Write(ctx context.Context, view insights.DetailedInsights) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", holdingsSheet); err != nil {
		return fmt.Errorf("naming holdings sheet: %w", err)
	}
	if err := writeSheet(f, holdingsSheet, buildHoldingRows(view)); err != nil {
		return err
	}

	if _, err := f.NewSheet(totalsSheet); err != nil {
		return fmt.Errorf("creating totals sheet: %w", err)
	}
	if err := writeSheet(f, totalsSheet, buildTotalRows(view)); err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}
	endCol, err := excelize.ColumnNumberToName(len(holdingsHeader))
	if err != nil {
		return fmt.Errorf("resolving header column: %w", err)
	}
	if err := f.SetCellStyle(holdingsSheet, "A1", endCol+"1", headerStyle); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}

	if err := f.SaveAs(w.path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("resolving cell on %s: %w", sheet, err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing row %d on %s: %w", i+1, sheet, err)
		}
	}
	return nil
}
