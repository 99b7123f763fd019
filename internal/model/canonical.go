package model

import "strings"

// Variant is the raw column vocabulary of a failure sheet.
type Variant string

const (
	VariantA    Variant = "A"
	VariantB    Variant = "B"
	VariantAuto Variant = "auto"
)

// ParseVariant accepts "A", "B" or "auto" in any case.
func ParseVariant(s string) (Variant, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "a":
		return VariantA, true
	case "b":
		return VariantB, true
	case "auto", "":
		return VariantAuto, true
	}
	return "", false
}

// Canonical failure field keys. Every FailureRecord exposes all of them
// regardless of source variant.
const (
	FieldDateFailed          = "datefailed"
	FieldLocoNo              = "locono"
	FieldMUWith              = "muwith"
	FieldICMS                = "icms"
	FieldDivision            = "division"
	FieldRailway             = "railway"
	FieldBriefMessage        = "briefmessage"
	FieldCauseOfFailure      = "causeoffailure"
	FieldEquipment           = "equipment"
	FieldComponent           = "component"
	FieldResponsibility      = "responsibility"
	FieldInvestigationStatus = "investigationstatus"
	FieldReportLink          = "reportlink"
	FieldMediaLink           = "medialink"

	// FieldSubsystem is derived from equipment via the classification table.
	FieldSubsystem = "subsystem"
	FieldFleet     = "fleet"
)

// CanonicalFields lists the canonical failure fields in display order.
var CanonicalFields = []string{
	FieldDateFailed,
	FieldLocoNo,
	FieldMUWith,
	FieldICMS,
	FieldDivision,
	FieldRailway,
	FieldBriefMessage,
	FieldCauseOfFailure,
	FieldEquipment,
	FieldComponent,
	FieldResponsibility,
	FieldInvestigationStatus,
	FieldReportLink,
	FieldMediaLink,
}

// ICMS flag values.
const (
	ICMSFailure    = "ICMS"
	MessageFailure = "Message"
)

// FailureRecord is a failure incident in canonical shape.
type FailureRecord struct {
	Fleet   string  `json:"fleet"`
	Variant Variant `json:"variant"`
	Sheet   string  `json:"sheet"`
	Row     int     `json:"row"` // 1-based data row within the sheet

	DateFailed          string `json:"dateFailed"`
	LocoNo              string `json:"locoNo"`
	MUWith              string `json:"muWith"`
	ICMS                bool   `json:"icms"`
	Division            string `json:"division"`
	Railway             string `json:"railway"`
	BriefMessage        string `json:"briefMessage"`
	CauseOfFailure      string `json:"causeOfFailure"`
	Equipment           string `json:"equipment"`
	Component           string `json:"component"`
	Responsibility      string `json:"responsibility"`
	InvestigationStatus string `json:"investigationStatus"`
	ReportLink          string `json:"reportLink,omitempty"`
	MediaLink           string `json:"mediaLink,omitempty"`
}

// ICMSLabel returns "ICMS" or "Message".
func (f FailureRecord) ICMSLabel() string {
	if f.ICMS {
		return ICMSFailure
	}
	return MessageFailure
}

// Field returns the value of a canonical field, "" for unknown keys.
func (f FailureRecord) Field(key string) string {
	switch key {
	case FieldDateFailed:
		return f.DateFailed
	case FieldLocoNo:
		return f.LocoNo
	case FieldMUWith:
		return f.MUWith
	case FieldICMS:
		return f.ICMSLabel()
	case FieldDivision:
		return f.Division
	case FieldRailway:
		return f.Railway
	case FieldBriefMessage:
		return f.BriefMessage
	case FieldCauseOfFailure:
		return f.CauseOfFailure
	case FieldEquipment:
		return f.Equipment
	case FieldComponent:
		return f.Component
	case FieldResponsibility:
		return f.Responsibility
	case FieldInvestigationStatus:
		return f.InvestigationStatus
	case FieldReportLink:
		return f.ReportLink
	case FieldMediaLink:
		return f.MediaLink
	case FieldFleet:
		return f.Fleet
	}
	return ""
}

// IsCanonicalField reports whether key names a groupable failure field.
func IsCanonicalField(key string) bool {
	if key == FieldFleet || key == FieldSubsystem {
		return true
	}
	for _, k := range CanonicalFields {
		if k == key {
			return true
		}
	}
	return false
}
