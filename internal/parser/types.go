package parser

import "locoboard/internal/model"

// VariantRecognition is the outcome of guessing a failure sheet's vocabulary.
type VariantRecognition struct {
	SheetName  string        `json:"sheetName"`
	Variant    model.Variant `json:"variant"`    // "" when unrecognized
	Confidence float64       `json:"confidence"` // 0-1
	Missing    []string      `json:"missing,omitempty"`
}

// FieldMapping records which source column fed a canonical field.
type FieldMapping struct {
	Canonical string `json:"canonical"`
	Source    string `json:"source"` // normalized source key, "" when absent
}
