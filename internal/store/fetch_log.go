package store

import (
	"context"
	"fmt"
	"time"

	"locoboard/internal/model"
)

// InsertFetchLog records one sheet retrieval and returns its id.
func (s *Store) InsertFetchLog(ctx context.Context, l model.FetchLog) (int64, error) {
	if l.FetchedAt.IsZero() {
		l.FetchedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO fetch_logs (sheet, status, rows, bytes, hash, duration_ms, error, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, l.Sheet, l.Status, l.Rows, l.Bytes, l.Hash, l.DurationMs, l.Error, l.FetchedAt.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to insert fetch log: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get fetch log id: %w", err)
	}
	return id, nil
}

// RecentFetchLogs returns up to limit fetch logs, newest first. A non-empty
// sheet restricts the result to that sheet.
func (s *Store) RecentFetchLogs(ctx context.Context, sheet string, limit int) ([]model.FetchLog, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT id, sheet, status, rows, bytes, hash, duration_ms, error, fetched_at FROM fetch_logs`
	args := []any{}
	if sheet != "" {
		query += ` WHERE sheet = ?`
		args = append(args, sheet)
	}
	query += ` ORDER BY fetched_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query fetch logs: %w", err)
	}
	defer rows.Close()

	out := make([]model.FetchLog, 0)
	for rows.Next() {
		var l model.FetchLog
		if err := rows.Scan(&l.ID, &l.Sheet, &l.Status, &l.Rows, &l.Bytes, &l.Hash, &l.DurationMs, &l.Error, &l.FetchedAt); err != nil {
			return nil, fmt.Errorf("failed to scan fetch log: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// PruneFetchLogs deletes fetch logs older than before and reports how many
// were removed.
func (s *Store) PruneFetchLogs(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM fetch_logs WHERE fetched_at < ?`, before.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to prune fetch logs: %w", err)
	}
	return res.RowsAffected()
}
