package report

import (
	"sort"
	"strings"
	"time"

	"locoboard/internal/model"
	"locoboard/internal/parser"
)

// Summarize groups records of fy by a canonical field. Grouping by
// "subsystem" uses the built-in classification; callers with their own
// table set View.Classifier and use SummarizeViews.
func Summarize(records []model.FailureRecord, fy model.FinancialYear, groupByField string, include Predicate) SummaryTable {
	t := SummarizeBy(records, fy, FieldKey(groupByField, nil), include)
	t.GroupBy = groupByField
	return t
}

// SummarizeBy groups the records of fy selected by include using key.
// Records whose date does not parse are left out without error; they remain
// available to non-dated views.
func SummarizeBy(records []model.FailureRecord, fy model.FinancialYear, key KeyFunc, include Predicate) SummaryTable {
	if include == nil {
		include = All
	}
	groups := make(map[string]*Row)
	for _, f := range records {
		if !include(f) {
			continue
		}
		d, err := parser.ParseDate(f.DateFailed)
		if err != nil || !fy.Contains(d) {
			continue
		}
		k := strings.TrimSpace(key(f))
		if k == "" {
			k = Uncategorized
		}
		row, ok := groups[k]
		if !ok {
			row = &Row{Key: k}
			groups[k] = row
		}
		row.Months[model.FYSlot(d.Month())].Add(f)
	}

	rows := make([]Row, 0, len(groups))
	for _, r := range groups {
		rows = append(rows, *r)
	}
	return finalize(SummaryTable{FY: fy, Rows: rows})
}

// SummarizeViews computes each view independently over the same records.
func SummarizeViews(records []model.FailureRecord, fy model.FinancialYear, views []View) []SummaryTable {
	out := make([]SummaryTable, 0, len(views))
	for _, v := range views {
		key := v.Key
		if key == nil {
			key = FieldKey(v.GroupBy, v.Classifier)
		}
		t := SummarizeBy(records, fy, key, v.Include)
		t.Name = v.Name
		t.GroupBy = v.GroupBy
		out = append(out, t)
	}
	return out
}

// AccountViews splits failures into the shed's own account ("Loco Account",
// responsibility in codes) and everything else ("Others").
func AccountViews(codes []string, groupBy string) []View {
	own := Responsibility(codes...)
	return []View{
		{Name: "Loco Account", GroupBy: groupBy, Include: own},
		{Name: "Others", GroupBy: groupBy, Include: Not(own)},
	}
}

// FieldKey groups by a canonical field. "subsystem" is classified with c,
// or with DefaultClassifier when c is nil.
func FieldKey(field string, c *Classifier) KeyFunc {
	if field == model.FieldSubsystem {
		if c == nil {
			c = DefaultClassifier()
		}
		return c.Key
	}
	return func(f model.FailureRecord) string { return f.Field(field) }
}

// FiscalYears lists the financial years present in records, newest first.
func FiscalYears(records []model.FailureRecord) []model.FinancialYear {
	seen := make(map[model.FinancialYear]struct{})
	for _, f := range records {
		d, err := parser.ParseDate(f.DateFailed)
		if err != nil {
			continue
		}
		seen[model.FinancialYearOf(d)] = struct{}{}
	}
	out := make([]model.FinancialYear, 0, len(seen))
	for fy := range seen {
		out = append(out, fy)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] > out[j] })
	return out
}

// MonthlyTotals counts the selected failures of fy per FY month.
func MonthlyTotals(records []model.FailureRecord, fy model.FinancialYear, include Predicate) [12]int {
	t := SummarizeBy(records, fy, func(model.FailureRecord) string { return "all" }, include)
	var out [12]int
	for i := range out {
		out[i] = t.GrandTotal.Months[i].Count
	}
	return out
}

// finalize sorts rows and members and recomputes row and grand totals.
func finalize(t SummaryTable) SummaryTable {
	sort.Slice(t.Rows, func(i, j int) bool { return t.Rows[i].Key < t.Rows[j].Key })

	grand := Row{Key: "Total"}
	for i := range t.Rows {
		r := &t.Rows[i]
		r.Total = Cell{}
		for m := range r.Months {
			sortMembers(r.Months[m].Members)
			r.Months[m].Count = len(r.Months[m].Members)
			r.Total.Members = append(r.Total.Members, r.Months[m].Members...)
			grand.Months[m].Members = append(grand.Months[m].Members, r.Months[m].Members...)
		}
		sortMembers(r.Total.Members)
		r.Total.Count = len(r.Total.Members)
	}
	for m := range grand.Months {
		sortMembers(grand.Months[m].Members)
		grand.Months[m].Count = len(grand.Months[m].Members)
		grand.Total.Members = append(grand.Total.Members, grand.Months[m].Members...)
	}
	sortMembers(grand.Total.Members)
	grand.Total.Count = len(grand.Total.Members)
	t.GrandTotal = grand
	return t
}

// sortMembers orders records by failure date, then sheet, row and loco so
// that merged cells do not depend on operand order.
func sortMembers(ms []model.FailureRecord) {
	if len(ms) < 2 {
		return
	}
	dates := make([]time.Time, len(ms))
	idx := make([]int, len(ms))
	for i := range ms {
		idx[i] = i
		dates[i], _ = parser.ParseDate(ms[i].DateFailed)
	}
	sort.SliceStable(idx, func(a, b int) bool {
		x, y := ms[idx[a]], ms[idx[b]]
		if dx, dy := dates[idx[a]], dates[idx[b]]; !dx.Equal(dy) {
			return dx.Before(dy)
		}
		if x.Sheet != y.Sheet {
			return x.Sheet < y.Sheet
		}
		if x.Row != y.Row {
			return x.Row < y.Row
		}
		if x.LocoNo != y.LocoNo {
			return x.LocoNo < y.LocoNo
		}
		if x.Fleet != y.Fleet {
			return x.Fleet < y.Fleet
		}
		if x.Equipment != y.Equipment {
			return x.Equipment < y.Equipment
		}
		return x.Responsibility < y.Responsibility
	})
	sorted := make([]model.FailureRecord, len(ms))
	for i, j := range idx {
		sorted[i] = ms[j]
	}
	copy(ms, sorted)
}
