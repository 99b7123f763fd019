package report

import (
	"testing"

	"locoboard/internal/model"
)

func failure(date, loco, equipment, resp string) model.FailureRecord {
	return model.FailureRecord{
		Fleet:          "WAG-9",
		Sheet:          "WAG9",
		DateFailed:     date,
		LocoNo:         loco,
		Equipment:      equipment,
		Responsibility: resp,
	}
}

// Each row total equals the sum of its months.
func TestSummarizeRowTotals(t *testing.T) {
	t.Parallel()

	records := []model.FailureRecord{
		failure("03/04/2024", "31001", "TM", "ELS"),
		failure("15/06/2024", "31002", "TM", "ELS"),
		failure("16/06/2024", "31003", "VCB", "ELS"),
		failure("20/02/2025", "31004", "TM", "ELS"),
		failure("20/04/2025", "31005", "TM", "ELS"), // next FY
	}
	tbl := Summarize(records, "2024-25", model.FieldEquipment, nil)

	if tbl.GroupBy != model.FieldEquipment {
		t.Fatalf("GroupBy = %q", tbl.GroupBy)
	}
	if len(tbl.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(tbl.Rows))
	}
	for _, r := range tbl.Rows {
		sum := 0
		for _, c := range r.Months {
			if c.Count != len(c.Members) {
				t.Fatalf("%s: count %d != members %d", r.Key, c.Count, len(c.Members))
			}
			sum += c.Count
		}
		if sum != r.Total.Count {
			t.Fatalf("%s: month sum %d != total %d", r.Key, sum, r.Total.Count)
		}
	}

	tm, ok := tbl.Row("TM")
	if !ok {
		t.Fatal("missing TM row")
	}
	if tm.Months[0].Count != 1 || tm.Months[2].Count != 1 || tm.Months[10].Count != 1 {
		t.Fatalf("TM months = %+v", tbl.Counts().Rows[0].Months)
	}
	if tbl.GrandTotal.Key != "Total" || tbl.GrandTotal.Total.Count != 4 {
		t.Fatalf("grand total = %s/%d, want Total/4", tbl.GrandTotal.Key, tbl.GrandTotal.Total.Count)
	}
	if tbl.GrandTotal.Months[2].Count != 2 {
		t.Fatalf("June total = %d, want 2", tbl.GrandTotal.Months[2].Count)
	}
}

func TestSummarizeBlankKeyIsUncategorized(t *testing.T) {
	t.Parallel()

	records := []model.FailureRecord{
		failure("01/05/2024", "31001", "  ", "ELS"),
		failure("02/05/2024", "31002", "", "ELS"),
	}
	tbl := Summarize(records, "2024-25", model.FieldEquipment, nil)
	r, ok := tbl.Row(Uncategorized)
	if !ok {
		t.Fatalf("rows = %+v, want %s", tbl.Counts().Rows, Uncategorized)
	}
	if r.Months[1].Count != 2 {
		t.Fatalf("May count = %d, want 2", r.Months[1].Count)
	}
}

func TestSummarizeSkipsInvalidDates(t *testing.T) {
	t.Parallel()

	records := []model.FailureRecord{
		failure("31/02/2024", "31001", "TM", "ELS"),
		failure("", "31002", "TM", "ELS"),
		failure("yesterday", "31003", "TM", "ELS"),
		failure("10/10/2024", "31004", "TM", "ELS"),
	}
	tbl := Summarize(records, "2024-25", model.FieldEquipment, nil)
	if tbl.GrandTotal.Total.Count != 1 {
		t.Fatalf("total = %d, want 1", tbl.GrandTotal.Total.Count)
	}
}

func TestSummarizeRowsSorted(t *testing.T) {
	t.Parallel()

	records := []model.FailureRecord{
		failure("01/05/2024", "1", "VCB", ""),
		failure("01/05/2024", "2", "Axle", ""),
		failure("01/05/2024", "3", "MCP", ""),
	}
	tbl := Summarize(records, "2024-25", model.FieldEquipment, nil)
	want := []string{"Axle", "MCP", "VCB"}
	for i, r := range tbl.Rows {
		if r.Key != want[i] {
			t.Fatalf("row %d = %s, want %s", i, r.Key, want[i])
		}
	}
}

func TestAccountViews(t *testing.T) {
	t.Parallel()

	records := []model.FailureRecord{
		failure("01/05/2024", "1", "TM", "ELS"),
		failure("02/05/2024", "2", "TM", "els "),
		failure("03/05/2024", "3", "TM", "OEM"),
		failure("04/05/2024", "4", "TM", ""),
	}
	tables := SummarizeViews(records, "2024-25", AccountViews([]string{"ELS"}, model.FieldEquipment))
	if len(tables) != 2 {
		t.Fatalf("tables = %d", len(tables))
	}
	if tables[0].Name != "Loco Account" || tables[0].GrandTotal.Total.Count != 2 {
		t.Fatalf("loco account = %s/%d", tables[0].Name, tables[0].GrandTotal.Total.Count)
	}
	if tables[1].Name != "Others" || tables[1].GrandTotal.Total.Count != 2 {
		t.Fatalf("others = %s/%d", tables[1].Name, tables[1].GrandTotal.Total.Count)
	}
}

func TestFiscalYearsNewestFirst(t *testing.T) {
	t.Parallel()

	records := []model.FailureRecord{
		failure("01/05/2023", "1", "TM", ""),
		failure("01/02/2025", "2", "TM", ""),
		failure("01/05/2024", "3", "TM", ""),
		failure("bad", "4", "TM", ""),
	}
	got := FiscalYears(records)
	want := []model.FinancialYear{"2024-25", "2023-24"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}

func TestMonthlyTotalsWithPredicate(t *testing.T) {
	t.Parallel()

	a := failure("01/04/2024", "1", "TM", "")
	a.ICMS = true
	b := failure("02/04/2024", "2", "TM", "")
	c := failure("01/03/2025", "3", "TM", "")
	c.ICMS = true

	got := MonthlyTotals([]model.FailureRecord{a, b, c}, "2024-25", ICMSOnly)
	if got[0] != 1 || got[11] != 1 {
		t.Fatalf("totals = %v", got)
	}
}

func TestSubsystemGrouping(t *testing.T) {
	t.Parallel()

	records := []model.FailureRecord{
		failure("01/05/2024", "1", "TM", ""),
		failure("01/05/2024", "2", "Air Brake", ""),
		failure("01/05/2024", "3", "Mystery Box", ""),
	}
	tbl := Summarize(records, "2024-25", model.FieldSubsystem, nil)
	for _, key := range []string{SubsystemTraction, SubsystemBrake, SubsystemOthers} {
		if _, ok := tbl.Row(key); !ok {
			t.Errorf("missing row %s", key)
		}
	}
}

func TestSubsystemGroupingWithViewClassifier(t *testing.T) {
	t.Parallel()

	records := []model.FailureRecord{
		failure("01/05/2024", "1", "Mystery Box", ""),
		failure("02/05/2024", "2", "TM", ""),
	}
	custom := NewClassifier(map[string]map[string][]string{
		AnyFleet: {"Special": {"Mystery Box"}},
	})
	tables := SummarizeViews(records, "2024-25", []View{
		{Name: "custom", GroupBy: model.FieldSubsystem, Classifier: custom},
		{Name: "default", GroupBy: model.FieldSubsystem},
	})
	if r, ok := tables[0].Row("Special"); !ok || r.Total.Count != 1 {
		t.Fatalf("custom table rows = %+v", tables[0].Rows)
	}
	if _, ok := tables[1].Row("Special"); ok {
		t.Fatal("default classifier knows a custom category")
	}
	if r, ok := tables[1].Row(SubsystemOthers); !ok || r.Total.Count != 1 {
		t.Fatalf("default table rows = %+v", tables[1].Rows)
	}
}
