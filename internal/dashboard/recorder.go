package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"locoboard/internal/metrics"
	"locoboard/internal/model"
	"locoboard/internal/sheets"
)

// FetchLogWriter persists fetch logs.
type FetchLogWriter interface {
	InsertFetchLog(ctx context.Context, l model.FetchLog) (int64, error)
}

// Recorder logs every sheet fetch, counts it in metrics and writes it to the
// operational log when a writer is set.
type Recorder struct {
	logs   FetchLogWriter
	logger *slog.Logger
}

// NewRecorder creates a recorder. logs may be nil.
func NewRecorder(logs FetchLogWriter, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{logs: logs, logger: logger}
}

// RecordFetch implements sheets.Recorder.
func (r *Recorder) RecordFetch(ctx context.Context, s sheets.FetchStat) {
	metrics.RecordFetch(s.Sheet, s.Err, s.Duration, s.Bytes)

	entry := model.FetchLog{
		Sheet:      s.Sheet,
		Status:     "ok",
		Rows:       s.Rows,
		Bytes:      int64(s.Bytes),
		DurationMs: s.Duration.Milliseconds(),
		FetchedAt:  time.Now(),
	}
	if s.Hash != 0 {
		entry.Hash = fmt.Sprintf("%016x", s.Hash)
	}
	if s.Err != nil {
		entry.Status = "error"
		entry.Error = s.Err.Error()
		r.logger.Warn("sheet fetch failed", "sheet", s.Sheet, "duration", s.Duration, "err", s.Err)
	} else {
		r.logger.Debug("sheet fetched", "sheet", s.Sheet, "rows", s.Rows, "bytes", s.Bytes, "hash", entry.Hash, "duration", s.Duration)
	}

	if r.logs == nil {
		return
	}
	// Abandoned fetches are still logged.
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if _, err := r.logs.InsertFetchLog(wctx, entry); err != nil {
		r.logger.Error("write fetch log", "sheet", s.Sheet, "err", err)
	}
}

var _ sheets.Recorder = (*Recorder)(nil)
