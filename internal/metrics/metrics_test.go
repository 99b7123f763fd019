package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"
)

type call struct {
	name   string
	value  float64
	labels Labels
}

type fakeBackend struct {
	mu       sync.Mutex
	counters []call
	hists    []call
}

func (f *fakeBackend) IncCounter(name string, delta float64, labels Labels) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counters = append(f.counters, call{name, delta, labels})
}

func (f *fakeBackend) ObserveHistogram(name string, value float64, labels Labels) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hists = append(f.hists, call{name, value, labels})
}

// Tests in this file swap the global backend and must not run in parallel.

func TestRecordFetch(t *testing.T) {
	fb := &fakeBackend{}
	SetBackend(fb)
	defer SetBackend(nil)

	RecordFetch("WAG9", nil, 250*time.Millisecond, 1024)
	RecordFetch("WAG9", errors.New("boom"), time.Second, 0)

	if len(fb.counters) != 2 {
		t.Fatalf("counters = %+v", fb.counters)
	}
	if fb.counters[0].labels["status"] != "ok" || fb.counters[1].labels["status"] != "error" {
		t.Fatalf("statuses = %+v", fb.counters)
	}
	// Duration twice, bytes once.
	if len(fb.hists) != 3 {
		t.Fatalf("histograms = %+v", fb.hists)
	}
	if fb.hists[0].name != SourceFetchDuration || fb.hists[0].value != 0.25 {
		t.Fatalf("duration = %+v", fb.hists[0])
	}
}

func TestRecordEditAndQuery(t *testing.T) {
	fb := &fakeBackend{}
	SetBackend(fb)
	defer SetBackend(nil)

	RecordEdit("partial")
	RecordQuery("summary", nil)

	if len(fb.counters) != 2 || fb.counters[0].name != EditRequestsTotal || fb.counters[1].labels["query"] != "summary" {
		t.Fatalf("counters = %+v", fb.counters)
	}
}

func TestNopBackendByDefault(t *testing.T) {
	SetBackend(nil)
	RecordFetch("x", nil, time.Millisecond, 1)
	RecordEdit("success")
}
