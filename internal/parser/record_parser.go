package parser

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"locoboard/internal/model"
)

// gvizDate matches the raw value of gviz date/datetime cells. Months are 0-based.
var gvizDate = regexp.MustCompile(`^Date\((\d{1,4}),(\d{1,2}),(\d{1,2})`)

// ParseTable converts a wire table into records, one per row, in row order.
// With normalizeKeys the column labels are reduced by NormalizeKey; otherwise
// raw labels are used verbatim and duplicate labels overwrite left to right.
// Columns whose key is empty are skipped.
func ParseTable(t model.RawTable, normalizeKeys bool) []model.Record {
	keys := columnKeys(t.Labels, normalizeKeys)

	records := make([]model.Record, 0, len(t.Rows))
	for _, row := range t.Rows {
		rec := make(model.Record, len(keys))
		for idx, key := range keys {
			if key == "" {
				continue
			}
			var cell model.RawCell
			if idx < len(row) {
				cell = row[idx]
			}
			rec[key] = CellString(cell)
		}
		records = append(records, rec)
	}
	return records
}

// ParseSheet is ParseTable plus the ordered, de-duplicated column keys.
func ParseSheet(sheet string, kind model.TableKind, t model.RawTable, normalizeKeys bool) model.Table {
	keys := columnKeys(t.Labels, normalizeKeys)
	seen := make(map[string]struct{}, len(keys))
	columns := make([]string, 0, len(keys))
	for _, k := range keys {
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		columns = append(columns, k)
	}
	return model.Table{
		Sheet:   sheet,
		Kind:    kind,
		Columns: columns,
		Records: ParseTable(t, normalizeKeys),
	}
}

func columnKeys(labels []string, normalizeKeys bool) []string {
	keys := make([]string, len(labels))
	for i, label := range labels {
		if normalizeKeys {
			keys[i] = NormalizeKey(label)
			continue
		}
		if isBlank(label) {
			continue
		}
		keys[i] = label
	}
	return keys
}

// CellString resolves a cell to its string value: the formatted value when
// present and non-empty, else the raw value, else "".
func CellString(c model.RawCell) string {
	if c.Formatted != nil && *c.Formatted != "" {
		return *c.Formatted
	}
	return rawString(c.Value)
}

func rawString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		if s, ok := gvizDateString(x); ok {
			return s
		}
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return strconv.FormatInt(i, 10)
		}
		if f, err := x.Float64(); err == nil {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

func gvizDateString(s string) (string, bool) {
	m := gvizDate.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	y, _ := strconv.Atoi(m[1])
	mo, _ := strconv.Atoi(m[2])
	d, _ := strconv.Atoi(m[3])
	return FormatDate(time.Date(y, time.Month(mo+1), d, 0, 0, 0, 0, time.UTC)), true
}
