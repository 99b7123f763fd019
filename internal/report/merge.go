package report

import (
	"fmt"
	"sort"
	"strings"

	"locoboard/internal/model"
)

// Merge adds two tables of the same financial year and grouping cell by cell.
// Counts add, members concatenate; the result does not depend on argument
// order.
func Merge(a, b SummaryTable) (SummaryTable, error) {
	if a.FY != b.FY {
		return SummaryTable{}, fmt.Errorf("merge %q with %q: financial years differ (%s vs %s)", a.Name, b.Name, a.FY, b.FY)
	}
	if a.GroupBy != b.GroupBy {
		return SummaryTable{}, fmt.Errorf("merge %q with %q: grouping differs (%s vs %s)", a.Name, b.Name, a.GroupBy, b.GroupBy)
	}

	byKey := make(map[string]*Row, len(a.Rows)+len(b.Rows))
	for _, t := range []SummaryTable{a, b} {
		for _, r := range t.Rows {
			dst, ok := byKey[r.Key]
			if !ok {
				dst = &Row{Key: r.Key}
				byKey[r.Key] = dst
			}
			for m := range r.Months {
				dst.Months[m].Members = append(dst.Months[m].Members, r.Months[m].Members...)
			}
		}
	}

	rows := make([]Row, 0, len(byKey))
	for _, r := range byKey {
		rows = append(rows, *r)
	}
	return finalize(SummaryTable{
		Name:    mergedName(a.Name, b.Name),
		FY:      a.FY,
		GroupBy: a.GroupBy,
		Rows:    rows,
	}), nil
}

// MergeAll folds Merge over tables. It needs at least one table.
func MergeAll(tables ...SummaryTable) (SummaryTable, error) {
	if len(tables) == 0 {
		return SummaryTable{}, fmt.Errorf("merge: no tables")
	}
	acc := tables[0]
	if len(tables) == 1 {
		// Normalize member order and totals like a real merge would.
		acc.Rows = append([]Row(nil), acc.Rows...)
		return finalize(acc), nil
	}
	for _, t := range tables[1:] {
		var err error
		if acc, err = Merge(acc, t); err != nil {
			return SummaryTable{}, err
		}
	}
	return acc, nil
}

// Combined summarizes the views and appends their merged totals as a view
// named "All".
func Combined(records []model.FailureRecord, fy model.FinancialYear, views []View) ([]SummaryTable, error) {
	tables := SummarizeViews(records, fy, views)
	if len(tables) == 0 {
		return nil, nil
	}
	all, err := MergeAll(tables...)
	if err != nil {
		return nil, err
	}
	all.Name = "All"
	return append(tables, all), nil
}

func mergedName(a, b string) string {
	var parts []string
	for _, n := range []string{a, b} {
		for _, p := range strings.Split(n, " + ") {
			if p != "" {
				parts = append(parts, p)
			}
		}
	}
	sort.Strings(parts)
	return strings.Join(parts, " + ")
}
