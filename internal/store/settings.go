package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Setting keys.
const (
	SettingLastStartedAt = "last_started_at"
	SettingLastPrunedAt  = "last_pruned_at"
)

// GetSetting returns a setting and whether it exists.
func (s *Store) GetSetting(key string) (string, bool, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return value, true, nil
}

// SetSetting stores a setting.
func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = ?, updated_at = CURRENT_TIMESTAMP
	`, key, value, value)
	if err != nil {
		return fmt.Errorf("failed to set setting %s: %w", key, err)
	}
	return nil
}

// SetTime stores t as RFC 3339.
func (s *Store) SetTime(key string, t time.Time) error {
	return s.SetSetting(key, t.UTC().Format(time.RFC3339))
}

// GetTime returns a time stored with SetTime; zero when absent.
func (s *Store) GetTime(key string) (time.Time, error) {
	v, ok, err := s.GetSetting(key)
	if err != nil || !ok {
		return time.Time{}, err
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("setting %s: %w", key, err)
	}
	return t, nil
}
