package report

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"locoboard/internal/model"
)

func TestWriteXLSX(t *testing.T) {
	t.Parallel()

	records := append(juneFailures(5, "ELS", 1), juneFailures(2, "OEM", 10)...)
	tables, err := Combined(records, "2024-25", AccountViews([]string{"ELS"}, model.FieldEquipment))
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := WriteXLSX(&buf, tables...); err != nil {
		t.Fatalf("WriteXLSX: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 3 || sheets[0] != "Loco Account" || sheets[2] != "All" {
		t.Fatalf("sheets = %v", sheets)
	}

	if v, _ := f.GetCellValue("All", "A1"); v != model.FieldEquipment {
		t.Errorf("A1 = %q", v)
	}
	if v, _ := f.GetCellValue("All", "B1"); v != "Apr" {
		t.Errorf("B1 = %q", v)
	}
	if v, _ := f.GetCellValue("All", "A2"); v != "TM" {
		t.Errorf("A2 = %q", v)
	}
	// June is the third month column.
	if v, _ := f.GetCellValue("All", "D2"); v != "7" {
		t.Errorf("D2 = %q, want 7", v)
	}
	if v, _ := f.GetCellValue("All", "A3"); v != "Total" {
		t.Errorf("A3 = %q", v)
	}
	if v, _ := f.GetCellValue("All", "N3"); v != "7" {
		t.Errorf("N3 = %q, want 7", v)
	}
}

func TestWriteXLSXNoTables(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := WriteXLSX(&buf); err == nil {
		t.Fatal("expected error")
	}
}

func TestSheetNameSanitized(t *testing.T) {
	t.Parallel()

	used := map[string]int{}
	a := sheetName(SummaryTable{Name: "Loco/Account: [WAG-9] and a very long suffix"}, 0, used)
	if len(a) > maxSheetName {
		t.Fatalf("name too long: %q", a)
	}
	for _, r := range `[]:*?/\` {
		for _, c := range a {
			if c == r {
				t.Fatalf("name %q still has %q", a, r)
			}
		}
	}
	b := sheetName(SummaryTable{Name: "Loco/Account: [WAG-9] and a very long suffix"}, 1, used)
	if a == b {
		t.Fatalf("duplicate sheet name %q", b)
	}
	if c := sheetName(SummaryTable{}, 2, used); c != "Summary 3" {
		t.Fatalf("blank name = %q", c)
	}
}

func TestSheetNameTruncatesByRune(t *testing.T) {
	t.Parallel()

	used := map[string]int{}
	long := strings.Repeat("é", 40)
	a := sheetName(SummaryTable{Name: long}, 0, used)
	if !utf8.ValidString(a) || utf8.RuneCountInString(a) != maxSheetName {
		t.Fatalf("name = %q (%d runes)", a, utf8.RuneCountInString(a))
	}
	b := sheetName(SummaryTable{Name: long}, 1, used)
	if !utf8.ValidString(b) || utf8.RuneCountInString(b) > maxSheetName || !strings.HasSuffix(b, " (2)") {
		t.Fatalf("second name = %q", b)
	}

	var buf bytes.Buffer
	if err := WriteXLSX(&buf, SummaryTable{Name: long, FY: "2024-25"}, SummaryTable{Name: long, FY: "2024-25"}); err != nil {
		t.Fatalf("WriteXLSX: %v", err)
	}
}
