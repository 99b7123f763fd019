package parser

import (
	"encoding/json"
	"reflect"
	"testing"

	"locoboard/internal/model"
)

func strp(s string) *string { return &s }

func TestParseTable_NormalizedKeys(t *testing.T) {
	t.Parallel()

	tbl := model.RawTable{
		Labels: []string{"LOCO No.", "Cause of Failure"},
		Rows: [][]model.RawCell{
			{{Value: float64(22003)}, {Formatted: strp("Traction motor fault")}},
		},
	}
	got := ParseTable(tbl, true)
	want := []model.Record{{"locono": "22003", "causeoffailure": "Traction motor fault"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ParseTable = %#v, want %#v", got, want)
	}
}

func TestParseTable_CellPriorityAndNulls(t *testing.T) {
	t.Parallel()

	tbl := model.RawTable{
		Labels: []string{"A", "B", "C", "D", "E", "F"},
		Rows: [][]model.RawCell{{
			{Value: float64(1.5), Formatted: strp("1.50")}, // formatted wins
			{Value: "raw", Formatted: strp("")},            // empty formatted falls back
			{},                                             // null cell
			{Value: true},
			{Value: "Date(2024,3,15)"},
			// F missing entirely: short row
		}},
	}
	got := ParseTable(tbl, true)[0]
	want := model.Record{"a": "1.50", "b": "raw", "c": "", "d": "true", "e": "15/04/2024", "f": ""}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("record = %#v, want %#v", got, want)
	}
}

func TestParseTable_SkipsEmptyKeys(t *testing.T) {
	t.Parallel()

	tbl := model.RawTable{
		Labels: []string{"", "..", "Loco"},
		Rows:   [][]model.RawCell{{{Value: "x"}, {Value: "y"}, {Value: "31001"}}},
	}
	got := ParseTable(tbl, true)[0]
	if len(got) != 1 || got["loco"] != "31001" {
		t.Fatalf("unexpected record %#v", got)
	}
	if _, ok := got[""]; ok {
		t.Fatalf("value assigned under empty key")
	}
}

func TestParseTable_RawLabelsDuplicatesOverwrite(t *testing.T) {
	t.Parallel()

	tbl := model.RawTable{
		Labels: []string{"Item", "Status", "Item", "  "},
		Rows: [][]model.RawCell{
			{{Value: "first"}, {Value: "Done"}, {Value: "second"}, {Value: "ignored"}},
			{{Value: "r2"}, {}, {}, {}},
		},
	}
	got := ParseTable(tbl, false)
	if len(got) != 2 {
		t.Fatalf("want 2 records, got %d", len(got))
	}
	if got[0]["Item"] != "second" || got[0]["Status"] != "Done" {
		t.Fatalf("unexpected first record %#v", got[0])
	}
	if len(got[0]) != 2 {
		t.Fatalf("blank label should be skipped: %#v", got[0])
	}
	if got[1]["Item"] != "" {
		t.Fatalf("row order/overwrite mismatch: %#v", got[1])
	}
}

func TestParseSheet_Columns(t *testing.T) {
	t.Parallel()

	tbl := model.RawTable{
		Labels: []string{"Loco No", "", "Mod A", "Mod A", "Mod B"},
		Rows:   [][]model.RawCell{{{Value: "30201"}}},
	}
	got := ParseSheet("Modifications", model.TableModifications, tbl, false)
	want := []string{"Loco No", "Mod A", "Mod B"}
	if !reflect.DeepEqual(got.Columns, want) {
		t.Fatalf("columns = %v, want %v", got.Columns, want)
	}
	if got.Kind != model.TableModifications || len(got.Records) != 1 {
		t.Fatalf("unexpected table %#v", got)
	}
}

func TestCellString_Numbers(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   any
		want string
	}{
		{float64(22003), "22003"},
		{float64(0.25), "0.25"},
		{int64(7), "7"},
		{json.Number("22003.0"), "22003"},
		{json.Number("31001"), "31001"},
		{json.Number("0.50"), "0.5"},
		{nil, ""},
		{"Date(2023,11,31,10,15,0)", "31/12/2023"},
	}
	for _, tc := range cases {
		if got := CellString(model.RawCell{Value: tc.in}); got != tc.want {
			t.Fatalf("CellString(%v) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
