package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"locoboard/internal/model"
)

// ErrNotADate is returned for tokens that do not form a real calendar date.
var ErrNotADate = errors.New("not a date")

// ParseDate parses a day-month-year string separated by '-' or '/'.
// Two-digit years are read as 2000+yy. Dates that do not exist (31-04-24)
// are rejected rather than normalized. The result is midnight UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(strings.ReplaceAll(s, "/", "-"), "-")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("%q: %w", s, ErrNotADate)
	}

	var nums [3]int
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if !isDigits(p) {
			return time.Time{}, fmt.Errorf("%q: %w", s, ErrNotADate)
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return time.Time{}, fmt.Errorf("%q: %w", s, ErrNotADate)
		}
		nums[i] = n
	}

	day, month, year := nums[0], nums[1], nums[2]
	if year < 100 {
		year += 2000
	}
	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, fmt.Errorf("%q: %w", s, ErrNotADate)
	}

	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, fmt.Errorf("%q: %w", s, ErrNotADate)
	}
	return t, nil
}

// FinancialYearOfString parses s and returns its financial year.
func FinancialYearOfString(s string) (model.FinancialYear, error) {
	t, err := ParseDate(s)
	if err != nil {
		return "", err
	}
	return model.FinancialYearOf(t), nil
}

// FormatDate renders t the way the sheets display dates (DD/MM/YYYY).
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%02d/%02d/%04d", t.Day(), int(t.Month()), t.Year())
}
