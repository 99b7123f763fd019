package parser

import (
	"strings"
	"unicode"
)

// NormalizeKey reduces a column label to lowercase ASCII letters and digits.
// "LOCO No." -> "locono", "Cause of Failure" -> "causeoffailure".
// The result may be empty; callers skip such columns.
func NormalizeKey(label string) string {
	label = strings.ToLower(label)
	var b strings.Builder
	b.Grow(len(label))
	for _, r := range label {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeKeys applies NormalizeKey to every label.
func NormalizeKeys(labels []string) []string {
	out := make([]string, len(labels))
	for i, l := range labels {
		out[i] = NormalizeKey(l)
	}
	return out
}

// isBlank reports whether s has no visible characters.
func isBlank(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool { return !unicode.IsSpace(r) }) < 0
}

// isDigits reports whether s is a non-empty run of ASCII digits.
func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// ContainsAny reports whether text contains any of the keywords.
func ContainsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}
