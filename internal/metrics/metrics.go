// Package metrics records operational metrics behind a small Backend
// interface. The default backend discards everything, so callers never need
// to check whether metrics are enabled.
package metrics

import (
	"sync"
	"time"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Metric names.
const (
	SourceFetchTotal    = "locoboard_source_fetch_total"
	SourceFetchDuration = "locoboard_source_fetch_duration_seconds"
	SourceFetchBytes    = "locoboard_source_fetch_bytes"
	QueryTotal          = "locoboard_query_total"
	EditRequestsTotal   = "locoboard_edit_requests_total"
)

// Backend is implemented by concrete metric systems.
type Backend interface {
	IncCounter(name string, delta float64, labels Labels)
	ObserveHistogram(name string, value float64, labels Labels)
}

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}

var (
	mu      sync.RWMutex
	backend Backend = nopBackend{}
)

// SetBackend installs b. Passing nil restores the no-op backend.
func SetBackend(b Backend) {
	mu.Lock()
	defer mu.Unlock()
	if b == nil {
		b = nopBackend{}
	}
	backend = b
}

func current() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// RecordFetch counts one sheet retrieval and its duration and size.
func RecordFetch(sheet string, err error, d time.Duration, bytes int) {
	b := current()
	lbls := Labels{"sheet": sheet, "status": status(err)}
	b.IncCounter(SourceFetchTotal, 1, lbls)
	b.ObserveHistogram(SourceFetchDuration, d.Seconds(), Labels{"sheet": sheet})
	if bytes > 0 {
		b.ObserveHistogram(SourceFetchBytes, float64(bytes), Labels{"sheet": sheet})
	}
}

// RecordQuery counts one dashboard query by name.
func RecordQuery(name string, err error) {
	current().IncCounter(QueryTotal, 1, Labels{"query": name, "status": status(err)})
}

// RecordEdit counts one edit request by outcome (success, partial, error, invalid).
func RecordEdit(outcome string) {
	current().IncCounter(EditRequestsTotal, 1, Labels{"status": outcome})
}
