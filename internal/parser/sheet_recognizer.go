package parser

import (
	"strings"

	"locoboard/internal/model"
)

// Key fields that identify each failure-sheet vocabulary.
var (
	variantAKeyFields = []string{"datefailed", "causeoffailure", "equipment", "component", "responsibility", "icmsmessage"}
	variantBKeyFields = []string{"dateoffailure", "shedinvestigation", "system", "componentfailed", "shedsection", "icmsno"}
)

// minVariantConfidence is the share of key fields a sheet must carry.
const minVariantConfidence = 0.5

// SheetRecognizer guesses the vocabulary of a failure sheet from its headers.
type SheetRecognizer struct{}

// NewSheetRecognizer creates a recognizer.
func NewSheetRecognizer() *SheetRecognizer {
	return &SheetRecognizer{}
}

// Recognize scores the headers against both variants and returns the better
// one, or an empty Variant when neither reaches the threshold.
func (r *SheetRecognizer) Recognize(sheetName string, columnNames []string) VariantRecognition {
	normalized := NormalizeKeys(columnNames)

	a, missingA := score(normalized, variantAKeyFields)
	b, missingB := score(normalized, variantBKeyFields)

	// Sheet names like "WAG9 failures (new format)" help break ties.
	lower := strings.ToLower(sheetName)
	if ContainsAny(lower, []string{"shed investigation", "new format"}) {
		b += 0.1
	}

	switch {
	case a >= minVariantConfidence && a >= b:
		return VariantRecognition{SheetName: sheetName, Variant: model.VariantA, Confidence: min(a, 1), Missing: missingA}
	case b >= minVariantConfidence:
		return VariantRecognition{SheetName: sheetName, Variant: model.VariantB, Confidence: min(b, 1), Missing: missingB}
	}
	return VariantRecognition{SheetName: sheetName, Confidence: max(a, b)}
}

func score(columns, keyFields []string) (float64, []string) {
	present := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		present[c] = struct{}{}
	}
	matched := 0
	var missing []string
	for _, f := range keyFields {
		if _, ok := present[f]; ok {
			matched++
			continue
		}
		missing = append(missing, f)
	}
	return float64(matched) / float64(len(keyFields)), missing
}
