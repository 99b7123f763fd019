package store

import (
	"context"
	"fmt"
	"time"

	"locoboard/internal/model"
)

// InsertEditLog records one forwarded amendment.
func (s *Store) InsertEditLog(ctx context.Context, l model.EditLog) (int64, error) {
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO edit_logs (request_id, loco_no, date_failed, new_value, variant, status, code, message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, l.RequestID, l.LocoNo, l.DateFailed, l.NewValue, string(l.Variant), l.Status, l.Code, l.Message, l.CreatedAt.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to insert edit log: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get edit log id: %w", err)
	}
	return id, nil
}

// RecentEditLogs returns up to limit edit logs, newest first, optionally for
// one locomotive.
func (s *Store) RecentEditLogs(ctx context.Context, locoNo string, limit int) ([]model.EditLog, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `SELECT id, request_id, loco_no, date_failed, new_value, variant, status, code, message, created_at FROM edit_logs`
	args := []any{}
	if locoNo != "" {
		query += ` WHERE loco_no = ?`
		args = append(args, locoNo)
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query edit logs: %w", err)
	}
	defer rows.Close()

	out := make([]model.EditLog, 0)
	for rows.Next() {
		var (
			l       model.EditLog
			variant string
		)
		if err := rows.Scan(&l.ID, &l.RequestID, &l.LocoNo, &l.DateFailed, &l.NewValue, &variant, &l.Status, &l.Code, &l.Message, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan edit log: %w", err)
		}
		l.Variant = model.Variant(variant)
		out = append(out, l)
	}
	return out, rows.Err()
}
