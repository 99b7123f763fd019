package report

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"locoboard/internal/model"
)

const maxSheetName = 31

// Exporter renders summary tables to an Excel workbook.
type Exporter struct{}

// NewExporter creates an exporter.
func NewExporter() *Exporter {
	return &Exporter{}
}

// Export builds a workbook with one sheet per table: group, Apr…Mar, Total,
// and a closing grand-total row.
func (e *Exporter) Export(tables ...SummaryTable) (*excelize.File, error) {
	if len(tables) == 0 {
		return nil, fmt.Errorf("export: no tables")
	}
	f := excelize.NewFile()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("export: header style: %w", err)
	}
	totalStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("export: total style: %w", err)
	}

	used := make(map[string]int)
	for i, t := range tables {
		name := sheetName(t, i, used)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				return nil, fmt.Errorf("export: rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return nil, fmt.Errorf("export: new sheet %s: %w", name, err)
		}

		groupLabel := t.GroupBy
		if groupLabel == "" {
			groupLabel = "Group"
		}
		headers := append([]any{groupLabel}, monthHeaders()...)
		headers = append(headers, "Total")
		if err := f.SetSheetRow(name, "A1", &headers); err != nil {
			return nil, fmt.Errorf("export: header row: %w", err)
		}
		if err := f.SetRowStyle(name, 1, 1, headerStyle); err != nil {
			return nil, fmt.Errorf("export: header style: %w", err)
		}

		rowNo := 2
		for _, r := range append(append([]Row(nil), t.Rows...), t.GrandTotal) {
			vals := make([]any, 0, 14)
			vals = append(vals, r.Key)
			for m := range r.Months {
				vals = append(vals, r.Months[m].Count)
			}
			vals = append(vals, r.Total.Count)
			cell, err := excelize.CoordinatesToCellName(1, rowNo)
			if err != nil {
				return nil, fmt.Errorf("export: row %d: %w", rowNo, err)
			}
			if err := f.SetSheetRow(name, cell, &vals); err != nil {
				return nil, fmt.Errorf("export: row %d: %w", rowNo, err)
			}
			rowNo++
		}
		if err := f.SetRowStyle(name, rowNo-1, rowNo-1, totalStyle); err != nil {
			return nil, fmt.Errorf("export: total style: %w", err)
		}
		if err := f.SetColWidth(name, "A", "A", 28); err != nil {
			return nil, fmt.Errorf("export: column width: %w", err)
		}
	}
	return f, nil
}

// WriteXLSX exports tables and writes the workbook to w.
func WriteXLSX(w io.Writer, tables ...SummaryTable) error {
	f, err := NewExporter().Export(tables...)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("export: write workbook: %w", err)
	}
	return nil
}

func monthHeaders() []any {
	out := make([]any, len(model.FYMonthLabels))
	for i, m := range model.FYMonthLabels {
		out[i] = m
	}
	return out
}

func sheetName(t SummaryTable, idx int, used map[string]int) string {
	name := t.Name
	if name == "" {
		name = fmt.Sprintf("Summary %d", idx+1)
	}
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '-'
		}
		return r
	}, name)
	base := truncate(name, maxSheetName)
	name = base
	for n := 2; used[strings.ToLower(name)] > 0; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		name = truncate(base, maxSheetName-len(suffix)) + suffix
	}
	used[strings.ToLower(name)]++
	return name
}

// truncate keeps the first n runes of s.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
