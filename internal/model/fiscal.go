package model

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// FinancialYear is an April–March year labelled "YYYY-YY".
type FinancialYear string

// FYMonthLabels are the column labels of a financial year, April first.
var FYMonthLabels = [12]string{"Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec", "Jan", "Feb", "Mar"}

// FinancialYearOf returns the financial year containing t.
func FinancialYearOf(t time.Time) FinancialYear {
	y := t.Year()
	if t.Month() >= time.April {
		return FinancialYear(fmt.Sprintf("%d-%02d", y, (y+1)%100))
	}
	return FinancialYear(fmt.Sprintf("%d-%02d", y-1, y%100))
}

// ParseFinancialYear validates a "YYYY-YY" label.
func ParseFinancialYear(s string) (FinancialYear, error) {
	s = strings.TrimSpace(s)
	start, end, ok := strings.Cut(s, "-")
	if !ok || len(start) != 4 || len(end) != 2 {
		return "", fmt.Errorf("invalid financial year %q: want YYYY-YY", s)
	}
	y, err := strconv.Atoi(start)
	if err != nil {
		return "", fmt.Errorf("invalid financial year %q: %w", s, err)
	}
	e, err := strconv.Atoi(end)
	if err != nil {
		return "", fmt.Errorf("invalid financial year %q: %w", s, err)
	}
	if e != (y+1)%100 {
		return "", fmt.Errorf("invalid financial year %q: years are not consecutive", s)
	}
	return FinancialYear(s), nil
}

// StartYear returns the calendar year in which the financial year begins.
func (fy FinancialYear) StartYear() int {
	y, _ := strconv.Atoi(string(fy)[:min(4, len(fy))])
	return y
}

// Contains reports whether t falls inside the financial year.
func (fy FinancialYear) Contains(t time.Time) bool {
	return FinancialYearOf(t) == fy
}

// FYSlot maps a calendar month to its column in a financial year (April=0, March=11).
func FYSlot(m time.Month) int {
	return (int(m) + 8) % 12
}

// SlotMonth is the inverse of FYSlot.
func SlotMonth(slot int) time.Month {
	return time.Month((slot+3)%12 + 1)
}
