package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"locoboard/internal/config"
	"locoboard/internal/dashboard"
)

// gviz renders a table the way the visualization endpoint wraps it.
func gviz(t *testing.T, labels []string, rows ...[]string) []byte {
	t.Helper()
	type cell struct {
		V any `json:"v"`
	}
	type col struct {
		Label string `json:"label"`
	}
	var table struct {
		Cols []col `json:"cols"`
		Rows []struct {
			C []*cell `json:"c"`
		} `json:"rows"`
	}
	for _, l := range labels {
		table.Cols = append(table.Cols, col{Label: l})
	}
	for _, r := range rows {
		var cells []*cell
		for _, v := range r {
			if v == "" {
				cells = append(cells, nil)
				continue
			}
			cells = append(cells, &cell{V: v})
		}
		table.Rows = append(table.Rows, struct {
			C []*cell `json:"c"`
		}{C: cells})
	}
	body, err := json.Marshal(map[string]any{"status": "ok", "table": table})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return append(append([]byte("/*O_o*/\ngoogle.visualization.Query.setResponse("), body...), ");"...)
}

func TestNewWiresSourceToOperationalLog(t *testing.T) {
	payloads := map[string][]byte{
		"WAG9 Failures": gviz(t,
			[]string{"Date Failed", "Loco No.", "ICMS/Message", "Equipment", "Responsibility"},
			[]string{"01/06/2024", "31001", "ICMS", "TM", "ELS"},
			[]string{"02/07/2024", "31002", "", "VCB", "OEM"},
		),
		"WAP7 Shed Investigation": gviz(t,
			[]string{"Date of Failure", "Loco No", "ICMS No", "System", "Shed Section"},
			[]string{"10/06/2024", "41001", "IC-1", "TM", "ELS"},
		),
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := payloads[r.URL.Query().Get("sheet")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Source.BaseURL = srv.URL
	cfg.Source.SpreadsheetID = "sheet-id"
	cfg.Metrics.Enabled = true

	a, err := New(cfg, filepath.Join(dir, config.FileName), nil, Options{WithStore: true, WithMetrics: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })

	if a.Store == nil || a.Metrics == nil {
		t.Fatal("store or metrics not wired")
	}

	combined, err := a.Service.Combined(context.Background(), dashboard.SummaryQuery{FY: "2024-25"})
	if err != nil {
		t.Fatalf("Combined: %v", err)
	}
	if got := combined[2].GrandTotal.Total.Count; got != 3 {
		t.Fatalf("merged total = %d, want 3", got)
	}
	if got := combined[0].GrandTotal.Months[2].Count; got != 2 {
		t.Fatalf("loco account June = %d, want 2", got)
	}

	logs, err := a.Store.RecentFetchLogs(context.Background(), "", 10)
	if err != nil {
		t.Fatalf("RecentFetchLogs: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("fetch logs = %d, want 2", len(logs))
	}
	for _, l := range logs {
		if l.Status != "ok" || l.Hash == "" || l.Rows == 0 {
			t.Fatalf("fetch log = %+v", l)
		}
	}
}

func TestNewWithoutStore(t *testing.T) {
	cfg := config.DefaultConfig()
	a, err := New(cfg, filepath.Join(t.TempDir(), config.FileName), nil, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Close()

	if a.Store != nil || a.Metrics != nil {
		t.Fatal("optional components wired")
	}
	if a.Editor.Enabled() {
		t.Fatal("editor enabled without a URL")
	}
	if a.Labels == nil || a.Service == nil {
		t.Fatal("service not wired")
	}
}
