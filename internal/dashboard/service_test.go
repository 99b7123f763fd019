package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"locoboard/internal/config"
	"locoboard/internal/model"
	"locoboard/internal/report"
)

// fakeSource serves fixed tables. Sheets listed in block wait for the
// context to end; sheets in fail return their error.
type fakeSource struct {
	mu     sync.Mutex
	tables map[string]model.RawTable
	fail   map[string]error
	block  map[string]bool
	calls  map[string]int
	ctxErr map[string]error
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		tables: map[string]model.RawTable{},
		fail:   map[string]error{},
		block:  map[string]bool{},
		calls:  map[string]int{},
		ctxErr: map[string]error{},
	}
}

func (f *fakeSource) Fetch(ctx context.Context, sheet string) (model.RawTable, error) {
	f.mu.Lock()
	f.calls[sheet]++
	t, ok := f.tables[sheet]
	err := f.fail[sheet]
	block := f.block[sheet]
	f.mu.Unlock()

	if block {
		select {
		case <-ctx.Done():
			f.mu.Lock()
			f.ctxErr[sheet] = ctx.Err()
			f.mu.Unlock()
			return model.RawTable{}, ctx.Err()
		case <-time.After(5 * time.Second):
			return model.RawTable{}, errors.New("blocked fetch was not abandoned")
		}
	}
	if err != nil {
		return model.RawTable{}, err
	}
	if !ok {
		return model.RawTable{}, fmt.Errorf("no sheet %q", sheet)
	}
	return t, nil
}

func (f *fakeSource) count(sheet string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[sheet]
}

func raw(labels []string, rows ...[]string) model.RawTable {
	t := model.RawTable{Labels: labels}
	for _, r := range rows {
		cells := make([]model.RawCell, len(r))
		for i, v := range r {
			if v != "" {
				cells[i] = model.RawCell{Value: v}
			}
		}
		t.Rows = append(t.Rows, cells)
	}
	return t
}

func testService(src *fakeSource) *Service {
	src.tables["Loco Details"] = raw([]string{"LOCO No.", "Make", "Shed"},
		[]string{"31001", "CLW", "BSL"},
		[]string{"31002", "BLW", "BSL"},
		[]string{"41001", "CLW", "AJJ"},
	)
	src.tables["Schedules"] = raw([]string{"Loco No", "Schedule", "Due"},
		[]string{"31001", "IA", "01/05/2024"},
		[]string{"31002", "IB", "01/07/2024"},
	)
	src.tables["Modifications"] = raw([]string{"Loco", "Mod 12"},
		[]string{"31001", "Done"},
	)
	// Variant A: five Loco Account failures in June.
	src.tables["WAG9 Failures"] = raw(
		[]string{"Date Failed", "Loco No.", "ICMS/Message", "Cause of Failure", "Equipment", "Component", "Responsibility"},
		[]string{"01/06/2024", "31001", "ICMS", "Flashover", "TM", "Winding", "ELS"},
		[]string{"02/06/2024", "31002", "Message", "Trip", "VCB", "Coil", "ELS"},
		[]string{"03/06/2024", "31001", "ICMS", "Leak", "Air Brake", "Pipe", "ELS"},
		[]string{"04/06/2024", "31002", "", "Trip", "TM", "Brush", "ELS"},
		[]string{"05/06/2024", "31001", "ICMS", "Trip", "TM", "Brush", "ELS"},
		[]string{"31/06/2024", "31001", "ICMS", "Bad date", "TM", "Brush", "ELS"},
	)
	// Variant B: two Others failures in June.
	src.tables["WAP7 Shed Investigation"] = raw(
		[]string{"Date of Failure", "Loco No", "ICMS No", "Shed Investigation", "System", "Component Failed", "Shed Section"},
		[]string{"10/06/2024", "41001", "IC-1", "Flashover", "TM", "Winding", "OEM"},
		[]string{"11/06/2024", "41001", "", "Trip", "VCB", "Coil", "Traffic"},
	)

	cfg := config.DefaultConfig()
	return NewService(src, OptionsFromConfig(cfg, config.DefaultLabels()))
}

func TestLoadReconcilesBothVariants(t *testing.T) {
	t.Parallel()

	src := newFakeSource()
	svc := testService(src)

	ds, err := svc.Load(context.Background(), model.TableFailures)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(ds.Failures) != 8 {
		t.Fatalf("failures = %d, want 8", len(ds.Failures))
	}
	if len(ds.FailureSheets) != 2 || ds.FailureSheets[1].Variant != model.VariantB {
		t.Fatalf("sheets = %+v", ds.FailureSheets)
	}

	var a, b model.FailureRecord
	for _, f := range ds.Failures {
		if f.Sheet == "WAG9 Failures" && f.Row == 1 {
			a = f
		}
		if f.Sheet == "WAP7 Shed Investigation" && f.Row == 1 {
			b = f
		}
	}
	if a.CauseOfFailure != "Flashover" || b.CauseOfFailure != "Flashover" {
		t.Fatalf("cause: A=%q B=%q", a.CauseOfFailure, b.CauseOfFailure)
	}
	if a.Fleet != "WAG-9" || b.Fleet != "WAP-7" {
		t.Fatalf("fleet: A=%q B=%q", a.Fleet, b.Fleet)
	}
	if !a.ICMS || !b.ICMS {
		t.Fatal("ICMS flags not derived")
	}
	// Only the requested kind was fetched.
	if src.count("Loco Details") != 0 {
		t.Fatal("details fetched for a failures query")
	}
}

func TestLoadAutoVariant(t *testing.T) {
	t.Parallel()

	src := newFakeSource()
	svc := testService(src)
	svc.opts.Failures = []config.FailureSource{{Sheet: "WAP7 Shed Investigation", Fleet: "WAP-7", Variant: "auto"}}

	ds, err := svc.Load(context.Background(), model.TableFailures)
	if err != nil {
		t.Fatal(err)
	}
	info := ds.FailureSheets[0]
	if info.Variant != model.VariantB || info.Recognition == nil {
		t.Fatalf("info = %+v", info)
	}
	if ds.Failures[0].Equipment != "TM" || ds.Failures[0].Responsibility != "OEM" {
		t.Fatalf("record = %+v", ds.Failures[0])
	}
}

func TestLoadFailsFast(t *testing.T) {
	t.Parallel()

	src := newFakeSource()
	svc := testService(src)
	boom := errors.New("source unavailable")
	src.fail["Schedules"] = boom
	src.block["Loco Details"] = true

	start := time.Now()
	_, err := svc.Load(context.Background(), model.TableDetails, model.TableSchedules, model.TableModifications, model.TableFailures)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if time.Since(start) > 3*time.Second {
		t.Fatal("Load waited for the blocked fetch")
	}
	src.mu.Lock()
	abandoned := src.ctxErr["Loco Details"]
	src.mu.Unlock()
	if !errors.Is(abandoned, context.Canceled) {
		t.Fatalf("blocked fetch ctx err = %v, want canceled", abandoned)
	}
	if n := src.count("Schedules"); n != 1 {
		t.Fatalf("failed sheet fetched %d times, want 1", n)
	}
}

func TestSummaryAndCombined(t *testing.T) {
	t.Parallel()

	svc := testService(newFakeSource())
	ctx := context.Background()

	own, err := svc.Summary(ctx, SummaryQuery{FY: "2024-25", View: ViewLocoAccount})
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	june := model.FYSlot(time.June)
	if own.Name != "Loco Account" || own.GrandTotal.Months[june].Count != 5 {
		t.Fatalf("loco account June = %d", own.GrandTotal.Months[june].Count)
	}

	tables, err := svc.Combined(ctx, SummaryQuery{FY: "2024-25"})
	if err != nil {
		t.Fatalf("Combined: %v", err)
	}
	if len(tables) != 3 {
		t.Fatalf("tables = %d", len(tables))
	}
	if got := tables[1].GrandTotal.Months[june].Count; got != 2 {
		t.Fatalf("others June = %d, want 2", got)
	}
	all := tables[2].GrandTotal.Months[june]
	if all.Count != 7 || len(all.Members) != 7 {
		t.Fatalf("combined June = %d/%d, want 7/7", all.Count, len(all.Members))
	}

	fleet, err := svc.Summary(ctx, SummaryQuery{FY: "2024-25", Fleet: "wap-7"})
	if err != nil {
		t.Fatal(err)
	}
	if fleet.GrandTotal.Total.Count != 2 {
		t.Fatalf("fleet total = %d", fleet.GrandTotal.Total.Count)
	}
}

func TestSubsystemsAndCell(t *testing.T) {
	t.Parallel()

	svc := testService(newFakeSource())
	ctx := context.Background()

	sub, err := svc.Subsystems(ctx, "2024-25", "WAG-9")
	if err != nil {
		t.Fatal(err)
	}
	traction, ok := sub.Row(report.SubsystemTraction)
	// TM and VCB are both traction equipment.
	if !ok || traction.Total.Count != 4 {
		t.Fatalf("traction row = %+v (ok=%v)", traction.Total.Count, ok)
	}
	if brake, ok := sub.Row(report.SubsystemBrake); !ok || brake.Total.Count != 1 {
		t.Fatalf("brake row = %+v (ok=%v)", brake.Total.Count, ok)
	}

	cell, err := svc.Cell(ctx, SummaryQuery{FY: "2024-25"}, CellRef{Key: "TM", Month: "Jun"})
	if err != nil {
		t.Fatal(err)
	}
	if cell.Count != 4 || len(cell.Members) != 4 {
		t.Fatalf("TM June = %d", cell.Count)
	}
	total, err := svc.Cell(ctx, SummaryQuery{FY: "2024-25"}, CellRef{Grand: true, Month: "6"})
	if err != nil {
		t.Fatal(err)
	}
	if total.Count != 7 {
		t.Fatalf("grand June = %d", total.Count)
	}
	missing, err := svc.Cell(ctx, SummaryQuery{FY: "2024-25"}, CellRef{Key: "Nope", Month: "total"})
	if err != nil || missing.Count != 0 || missing.Members == nil {
		t.Fatalf("missing row = %+v, %v", missing, err)
	}
}

func TestQueryErrors(t *testing.T) {
	t.Parallel()

	svc := testService(newFakeSource())
	ctx := context.Background()

	tests := []struct {
		q     SummaryQuery
		param string
	}{
		{SummaryQuery{FY: "2024"}, "fy"},
		{SummaryQuery{FY: "2024-26"}, "fy"},
		{SummaryQuery{FY: "2024-25", GroupBy: "colour"}, "groupBy"},
		{SummaryQuery{FY: "2024-25", View: "weekly"}, "view"},
	}
	for _, tt := range tests {
		_, err := svc.Summary(ctx, tt.q)
		var qe *QueryError
		if !errors.As(err, &qe) || qe.Param != tt.param {
			t.Errorf("Summary(%+v) err = %v, want QueryError on %s", tt.q, err, tt.param)
		}
	}
	if _, err := svc.Cell(ctx, SummaryQuery{FY: "2024-25"}, CellRef{Key: "TM", Month: "13"}); err == nil {
		t.Error("month 13 accepted")
	}
}

func TestParseMonth(t *testing.T) {
	t.Parallel()

	tests := map[string]int{"": -1, "total": -1, "Apr": 0, "jun": 2, "4": 0, "3": 11, "12": 8}
	for in, want := range tests {
		got, err := ParseMonth(in)
		if err != nil || got != want {
			t.Errorf("ParseMonth(%q) = %d, %v; want %d", in, got, err, want)
		}
	}
	for _, in := range []string{"0", "Juneteenth", "-1"} {
		if _, err := ParseMonth(in); err == nil {
			t.Errorf("ParseMonth(%q) accepted", in)
		}
	}
}

func TestListFailures(t *testing.T) {
	t.Parallel()

	svc := testService(newFakeSource())
	got, err := svc.ListFailures(context.Background(), FailureFilter{FY: "2024-25", Query: "trip"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 4 {
		t.Fatalf("trip failures = %d, want 4", len(got))
	}
	// The record with an invalid date stays in unfiltered listings.
	all, err := svc.ListFailures(context.Background(), FailureFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 8 {
		t.Fatalf("all failures = %d, want 8", len(all))
	}
}

func TestLocoData(t *testing.T) {
	t.Parallel()

	svc := testService(newFakeSource())
	ctx := context.Background()

	data, ok, err := svc.LocoData(ctx, "31001")
	if err != nil || !ok {
		t.Fatalf("LocoData: ok=%v err=%v", ok, err)
	}
	if data.Detail["Make"] != "CLW" || len(data.Schedules) != 1 || len(data.Modifications) != 1 || len(data.Failures) != 4 {
		t.Fatalf("data = %+v", data)
	}

	if _, ok, err := svc.LocoData(ctx, "99999"); err != nil || ok {
		t.Fatalf("missing loco: ok=%v err=%v", ok, err)
	}
}

func TestLocoIDsLoadedOnce(t *testing.T) {
	t.Parallel()

	src := newFakeSource()
	svc := testService(src)
	ctx := context.Background()

	if svc.LoadedIDs() != -1 {
		t.Fatal("ids loaded before first use")
	}
	for i := 0; i < 3; i++ {
		got, err := svc.Search(ctx, "310", 0)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 2 {
			t.Fatalf("Search = %v", got)
		}
	}
	if n := src.count("Loco Details"); n != 1 {
		t.Fatalf("details fetched %d times, want 1", n)
	}
	if svc.LoadedIDs() != 3 {
		t.Fatalf("LoadedIDs = %d", svc.LoadedIDs())
	}
}

func TestLocoIDsRetryAfterFailure(t *testing.T) {
	t.Parallel()

	src := newFakeSource()
	svc := testService(src)
	src.fail["Loco Details"] = errors.New("down")

	if _, err := svc.LocoIDs(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	src.mu.Lock()
	delete(src.fail, "Loco Details")
	src.mu.Unlock()

	idx, err := svc.LocoIDs(context.Background())
	if err != nil || idx.Len() != 3 {
		t.Fatalf("retry: %v", err)
	}
}

func TestWorkbookLoadsFailuresOnce(t *testing.T) {
	t.Parallel()

	src := newFakeSource()
	svc := testService(src)

	tables, err := svc.Workbook(context.Background(), WorkbookQuery{
		FY:         "2024-25",
		Views:      []string{ViewICMS, ViewMessage},
		Subsystems: true,
	})
	if err != nil {
		t.Fatalf("Workbook: %v", err)
	}
	if len(tables) != 3 {
		t.Fatalf("tables = %d, want 3", len(tables))
	}
	if tables[0].Name != "ICMS" || tables[1].Name != "Message" || tables[2].Name != "Subsystems" {
		t.Fatalf("names = %s, %s, %s", tables[0].Name, tables[1].Name, tables[2].Name)
	}
	if got := tables[0].GrandTotal.Total.Count + tables[1].GrandTotal.Total.Count; got != 7 {
		t.Fatalf("icms + message = %d, want 7", got)
	}
	for _, sheet := range []string{"WAG9 Failures", "WAP7 Shed Investigation"} {
		if n := src.count(sheet); n != 1 {
			t.Fatalf("%s fetched %d times, want 1", sheet, n)
		}
	}

	combined, err := svc.Workbook(context.Background(), WorkbookQuery{FY: "2024-25", Fleet: "WAG-9"})
	if err != nil {
		t.Fatal(err)
	}
	if len(combined) != 3 || combined[2].GrandTotal.Total.Count != 5 {
		t.Fatalf("combined = %d tables", len(combined))
	}

	if _, err := svc.Workbook(context.Background(), WorkbookQuery{FY: "2024-25", Views: []string{"weekly"}}); err == nil {
		t.Fatal("unknown view accepted")
	}
	if n := src.count("WAG9 Failures"); n != 2 {
		t.Fatalf("invalid query fetched; count = %d", n)
	}
}

func TestInvestigationViews(t *testing.T) {
	t.Parallel()

	src := newFakeSource()
	svc := testService(src)
	src.tables["WAP7 Shed Investigation"] = raw(
		[]string{"Date of Failure", "Loco No", "ICMS No", "Shed Investigation", "System", "Shed Section", "Investigation Status"},
		[]string{"10/06/2024", "41001", "IC-1", "Flashover", "TM", "OEM", "Closed"},
		[]string{"11/06/2024", "41001", "", "Trip", "VCB", "Traffic", "Under Investigation"},
	)
	ctx := context.Background()

	pending, err := svc.Summary(ctx, SummaryQuery{FY: "2024-25", View: ViewPending})
	if err != nil {
		t.Fatal(err)
	}
	if pending.GrandTotal.Total.Count != 6 {
		t.Fatalf("pending = %d, want 6", pending.GrandTotal.Total.Count)
	}
	done, err := svc.Summary(ctx, SummaryQuery{FY: "2024-25", View: ViewInvestigated})
	if err != nil {
		t.Fatal(err)
	}
	if done.GrandTotal.Total.Count != 1 {
		t.Fatalf("investigated = %d, want 1", done.GrandTotal.Total.Count)
	}
	closed, err := svc.Summary(ctx, SummaryQuery{FY: "2024-25", Status: " closed , reopened"})
	if err != nil {
		t.Fatal(err)
	}
	if closed.GrandTotal.Total.Count != 1 {
		t.Fatalf("closed = %d, want 1", closed.GrandTotal.Total.Count)
	}
}

func TestTrend(t *testing.T) {
	t.Parallel()

	svc := testService(newFakeSource())
	tr, err := svc.Trend(context.Background(), SummaryQuery{FY: "2024-25", View: ViewOthers})
	if err != nil {
		t.Fatal(err)
	}
	if tr.Total != 2 || tr.Points[2].Count != 2 || tr.Points[2].Month != 6 {
		t.Fatalf("trend = %+v", tr)
	}
	if first := tr.Points[0]; first.Label != "Apr" || first.Year != 2024 || first.Month != 4 {
		t.Fatalf("first point = %+v", first)
	}
	if last := tr.Points[11]; last.Year != 2025 || last.Month != 3 {
		t.Fatalf("last point = %+v", last)
	}
}

func TestCellGroupNamedTotal(t *testing.T) {
	t.Parallel()

	src := newFakeSource()
	svc := testService(src)
	src.tables["WAP7 Shed Investigation"] = raw(
		[]string{"Date of Failure", "Loco No", "ICMS No", "Shed Investigation", "System", "Shed Section"},
		[]string{"10/06/2024", "41001", "IC-1", "Flashover", "TM", "Total"},
	)
	q := SummaryQuery{FY: "2024-25", GroupBy: model.FieldResponsibility}

	row, err := svc.Cell(context.Background(), q, CellRef{Key: "Total", Month: "Jun"})
	if err != nil {
		t.Fatal(err)
	}
	if row.Count != 1 {
		t.Fatalf("Total group = %d, want 1", row.Count)
	}
	grand, err := svc.Cell(context.Background(), q, CellRef{Key: "Total", Grand: true, Month: "Jun"})
	if err != nil {
		t.Fatal(err)
	}
	if grand.Count != 6 {
		t.Fatalf("grand = %d, want 6", grand.Count)
	}
}
