package services

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// sheetLayout describes one worksheet: merged title rows, optional notes,
// a bordered header and data rows.
type sheetLayout struct {
	Name         string
	Titles       []string
	Subtitles    []string
	Notes        []string
	Headers      []string
	Widths       []float64
	Rows         [][]any
	EmptyMessage string
	Footer       []any
}

var thinBorder = []excelize.Border{
	{Type: "left", Color: "000000", Style: 1},
	{Type: "top", Color: "000000", Style: 1},
	{Type: "right", Color: "000000", Style: 1},
	{Type: "bottom", Color: "000000", Style: 1},
}

type workbookStyles struct {
	title, subtitle, header, cell, bold int
}

func newWorkbookStyles(f *excelize.File) (*workbookStyles, error) {
	var (
		s   workbookStyles
		err error
	)
	center := &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true}
	if s.title, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}, Alignment: center}); err != nil {
		return nil, err
	}
	if s.subtitle, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Size: 12}, Alignment: center}); err != nil {
		return nil, err
	}
	if s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
		Border:    thinBorder,
	}); err != nil {
		return nil, err
	}
	if s.cell, err = f.NewStyle(&excelize.Style{Border: thinBorder}); err != nil {
		return nil, err
	}
	if s.bold, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err != nil {
		return nil, err
	}
	return &s, nil
}

// buildWorkbook renders the sheets in order and returns the xlsx bytes.
func buildWorkbook(sheets []sheetLayout) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	styles, err := newWorkbookStyles(f)
	if err != nil {
		return nil, fmt.Errorf("create styles: %w", err)
	}

	for i, layout := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", layout.Name); err != nil {
				return nil, err
			}
		} else if _, err := f.NewSheet(layout.Name); err != nil {
			return nil, err
		}
		if err := writeSheet(f, styles, layout); err != nil {
			return nil, fmt.Errorf("sheet %s: %w", layout.Name, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return bytes.Clone(buf.Bytes()), nil
}

func writeSheet(f *excelize.File, styles *workbookStyles, layout sheetLayout) error {
	cols := len(layout.Headers)
	row := 1

	mergedRow := func(text string, style int) error {
		first, _ := excelize.CoordinatesToCellName(1, row)
		last, _ := excelize.CoordinatesToCellName(cols, row)
		if err := f.SetCellValue(layout.Name, first, text); err != nil {
			return err
		}
		if cols > 1 {
			if err := f.MergeCell(layout.Name, first, last); err != nil {
				return err
			}
		}
		if err := f.SetCellStyle(layout.Name, first, last, style); err != nil {
			return err
		}
		row++
		return nil
	}

	for _, t := range layout.Titles {
		if err := mergedRow(t, styles.title); err != nil {
			return err
		}
	}
	for _, t := range layout.Subtitles {
		if err := mergedRow(t, styles.subtitle); err != nil {
			return err
		}
	}
	row++
	for _, n := range layout.Notes {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetCellValue(layout.Name, cell, n); err != nil {
			return err
		}
		row += 2
	}

	if err := writeRow(f, layout.Name, row, toAny(layout.Headers)); err != nil {
		return err
	}
	if err := styleRow(f, layout.Name, row, cols, styles.header); err != nil {
		return err
	}
	row++

	if len(layout.Rows) == 0 && layout.EmptyMessage != "" {
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetCellValue(layout.Name, cell, layout.EmptyMessage); err != nil {
			return err
		}
		row++
	}
	for _, values := range layout.Rows {
		if err := writeRow(f, layout.Name, row, values); err != nil {
			return err
		}
		if err := styleRow(f, layout.Name, row, cols, styles.cell); err != nil {
			return err
		}
		row++
	}

	if len(layout.Footer) > 0 && len(layout.Rows) > 0 {
		row++
		if err := writeRow(f, layout.Name, row, layout.Footer); err != nil {
			return err
		}
		if err := styleRow(f, layout.Name, row, cols, styles.bold); err != nil {
			return err
		}
	}

	for i, w := range layout.Widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(layout.Name, col, col, w); err != nil {
			return err
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func styleRow(f *excelize.File, sheet string, row, cols, style int) error {
	first, _ := excelize.CoordinatesToCellName(1, row)
	last, _ := excelize.CoordinatesToCellName(cols, row)
	return f.SetCellStyle(sheet, first, last, style)
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
