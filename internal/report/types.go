// Package report builds financial-year summary tables over canonical failure
// records: group × month count grids whose cells keep their member records
// for drill-down.
package report

import (
	"locoboard/internal/model"
)

// Uncategorized is the row key used when the grouping field is blank.
const Uncategorized = "Uncategorized"

// Cell is a count plus the records behind it. Count always equals len(Members).
type Cell struct {
	Count   int                   `json:"count"`
	Members []model.FailureRecord `json:"members,omitempty"`
}

// Add appends a record and keeps Count in step.
func (c *Cell) Add(f model.FailureRecord) {
	c.Members = append(c.Members, f)
	c.Count = len(c.Members)
}

// Row is one group of a summary: twelve FY months (April first) and a total.
type Row struct {
	Key    string   `json:"key"`
	Months [12]Cell `json:"months"`
	Total  Cell     `json:"total"`
}

// SummaryTable is a grouped month grid for one financial year.
type SummaryTable struct {
	Name       string              `json:"name"`
	FY         model.FinancialYear `json:"fy"`
	GroupBy    string              `json:"groupBy"`
	Rows       []Row               `json:"rows"`
	GrandTotal Row                 `json:"grandTotal"`
}

// Row returns the row for key.
func (t SummaryTable) Row(key string) (Row, bool) {
	for _, r := range t.Rows {
		if r.Key == key {
			return r, true
		}
	}
	return Row{}, false
}

// Predicate selects records for a view.
type Predicate func(model.FailureRecord) bool

// KeyFunc yields the grouping key of a record.
type KeyFunc func(model.FailureRecord) string

// View is one named aggregation over a shared record set.
type View struct {
	Name       string
	GroupBy    string      // canonical field, used when Key is nil
	Key        KeyFunc     // optional custom grouping
	Classifier *Classifier // subsystem table for GroupBy "subsystem"; nil uses the default
	Include    Predicate   // nil selects everything
}

// CountRow is the count-only projection of a Row.
type CountRow struct {
	Key    string  `json:"key"`
	Months [12]int `json:"months"`
	Total  int     `json:"total"`
}

// CountTable is the count-only projection of a SummaryTable, used by list
// views that fetch members lazily through drill-down.
type CountTable struct {
	Name       string              `json:"name"`
	FY         model.FinancialYear `json:"fy"`
	GroupBy    string              `json:"groupBy"`
	Months     [12]string          `json:"months"`
	Rows       []CountRow          `json:"rows"`
	GrandTotal CountRow            `json:"grandTotal"`
}

// Counts drops member lists.
func (t SummaryTable) Counts() CountTable {
	out := CountTable{
		Name:       t.Name,
		FY:         t.FY,
		GroupBy:    t.GroupBy,
		Months:     model.FYMonthLabels,
		Rows:       make([]CountRow, 0, len(t.Rows)),
		GrandTotal: countRow(t.GrandTotal),
	}
	for _, r := range t.Rows {
		out.Rows = append(out.Rows, countRow(r))
	}
	return out
}

func countRow(r Row) CountRow {
	cr := CountRow{Key: r.Key, Total: r.Total.Count}
	for i := range r.Months {
		cr.Months[i] = r.Months[i].Count
	}
	return cr
}
