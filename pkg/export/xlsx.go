// Package export writes rendered reports to xlsx workbooks, one sheet per
// report: title row, year columns, then the rendered rows in layout order.
package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/finstmt/fsg/pkg/report"
)

// Layout constants: row 1 title, row 2 warning (when present), row 3 blank,
// row 4 column headers, data from row 5.
const (
	titleRow  = 1
	headerRow = 4
	labelCol  = 1
	firstYear = 2
)

// Writer accumulates rendered reports into one workbook
type Writer struct {
	file     *excelize.File
	sheets   int
	numberFm int
	boldFm   int
	titleFm  int
}

// NewWriter creates an empty workbook writer
func NewWriter() (*Writer, error) {
	f := excelize.NewFile()

	numberFmt := "#,##0.00;[Red]-#,##0.00"
	numberStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numberFmt})
	if err != nil {
		return nil, fmt.Errorf("failed to create number style: %w", err)
	}
	boldStyle, err := f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Bold: true},
		CustomNumFmt: &numberFmt,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create bold style: %w", err)
	}
	titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
	if err != nil {
		return nil, fmt.Errorf("failed to create title style: %w", err)
	}

	return &Writer{file: f, numberFm: numberStyle, boldFm: boldStyle, titleFm: titleStyle}, nil
}

// AddReport writes one rendered report to its own sheet
func (w *Writer) AddReport(rendered *report.Rendered) error {
	sheet := sheetName(rendered)

	if w.sheets == 0 {
		// Reuse the default sheet for the first report.
		if err := w.file.SetSheetName(w.file.GetSheetName(0), sheet); err != nil {
			return fmt.Errorf("failed to rename sheet: %w", err)
		}
	} else if _, err := w.file.NewSheet(sheet); err != nil {
		return fmt.Errorf("failed to add sheet %q: %w", sheet, err)
	}
	w.sheets++

	if err := w.writeSheet(sheet, rendered); err != nil {
		return err
	}

	return nil
}

func (w *Writer) writeSheet(sheet string, rendered *report.Rendered) error {
	set := func(row, col int, value any) error {
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return err
		}
		return w.file.SetCellValue(sheet, cell, value)
	}

	if err := set(titleRow, labelCol, rendered.Title); err != nil {
		return err
	}
	titleCell, _ := excelize.CoordinatesToCellName(labelCol, titleRow)
	if err := w.file.SetCellStyle(sheet, titleCell, titleCell, w.titleFm); err != nil {
		return err
	}

	if rendered.Warning != "" {
		if err := set(titleRow+1, labelCol, "Warning: "+rendered.Warning); err != nil {
			return err
		}
	}

	for i, year := range rendered.Years {
		if err := set(headerRow, firstYear+i, year); err != nil {
			return err
		}
	}

	for i := range rendered.Rows {
		if err := w.writeRow(sheet, headerRow+1+i, &rendered.Rows[i], rendered.Years, set); err != nil {
			return err
		}
	}

	return nil
}

func (w *Writer) writeRow(sheet string, excelRow int, row *report.RenderedRow, years []int, set func(int, int, any) error) error {
	if row.Kind == report.RowSpacer {
		return nil
	}

	if err := set(excelRow, labelCol, row.Label); err != nil {
		return err
	}

	if row.Values == nil {
		return nil
	}

	style := w.numberFm
	if row.Bold {
		style = w.boldFm
	}

	for i, year := range years {
		if err := set(excelRow, firstYear+i, row.Values[year]); err != nil {
			return err
		}
		cell, err := excelize.CoordinatesToCellName(firstYear+i, excelRow)
		if err != nil {
			return err
		}
		if err := w.file.SetCellStyle(sheet, cell, cell, style); err != nil {
			return err
		}
	}

	return nil
}

// Save writes the workbook to disk
func (w *Writer) Save(path string) error {
	if err := w.file.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return w.file.Close()
}

// sheetName derives a sheet name from the report id, respecting the xlsx
// 31-character sheet name limit.
func sheetName(rendered *report.Rendered) string {
	name := strings.TrimSpace(rendered.ReportID)
	if name == "" {
		name = "report"
	}
	if len(name) > 31 {
		name = name[:31]
	}
	return name
}
