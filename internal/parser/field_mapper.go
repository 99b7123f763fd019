package parser

import (
	"strings"

	"locoboard/internal/model"
)

// LocoAliases are the normalized keys tried, in order, for the vehicle id.
var LocoAliases = []string{"locono", "loco", "loconumber"}

// variantBRenames maps variant B source keys onto canonical fields.
var variantBRenames = map[string]string{
	model.FieldDateFailed:     "dateoffailure",
	model.FieldCauseOfFailure: "shedinvestigation",
	model.FieldEquipment:      "system",
	model.FieldComponent:      "componentfailed",
	model.FieldResponsibility: "shedsection",
}

// Source columns of the ICMS/message classification.
const (
	variantAICMSKey = "icmsmessage"
	variantBICMSKey = "icmsno"
)

// linkAliases are accepted by both variants; sheets label links loosely.
var linkAliases = map[string][]string{
	model.FieldReportLink: {"reportlink", "documentlink", "report"},
	model.FieldMediaLink:  {"medialink", "photolink", "videolink", "photo"},
}

// FieldMapper maps one variant's normalized columns onto canonical fields.
type FieldMapper struct {
	variant model.Variant
}

// NewFieldMapper creates a mapper for a concrete variant (A or B).
func NewFieldMapper(v model.Variant) *FieldMapper {
	return &FieldMapper{variant: v}
}

// SourceKey returns the normalized source key for a canonical field.
func (m *FieldMapper) SourceKey(canonical string) string {
	if m.variant == model.VariantB {
		if src, ok := variantBRenames[canonical]; ok {
			return src
		}
	}
	if canonical == model.FieldICMS {
		if m.variant == model.VariantB {
			return variantBICMSKey
		}
		return variantAICMSKey
	}
	return canonical
}

// Mappings lists source columns for every canonical field given the sheet's
// normalized headers; Source is empty where the sheet lacks the column.
func (m *FieldMapper) Mappings(headers []string) []FieldMapping {
	present := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		present[h] = struct{}{}
	}
	out := make([]FieldMapping, 0, len(model.CanonicalFields))
	for _, c := range model.CanonicalFields {
		fm := FieldMapping{Canonical: c}
		candidates := []string{m.SourceKey(c)}
		if c == model.FieldLocoNo {
			candidates = LocoAliases
		}
		if aliases, ok := linkAliases[c]; ok {
			candidates = aliases
		}
		for _, k := range candidates {
			if _, ok := present[k]; ok {
				fm.Source = k
				break
			}
		}
		out = append(out, fm)
	}
	return out
}

// Reconcile maps a normalized-key record of the given variant onto the
// canonical failure shape. VariantAuto is treated as A.
func Reconcile(v model.Variant, rec model.Record) model.FailureRecord {
	if v != model.VariantB {
		v = model.VariantA
	}
	m := NewFieldMapper(v)
	get := func(canonical string) string {
		return strings.TrimSpace(rec[m.SourceKey(canonical)])
	}

	loco, _ := LocoID(rec)
	f := model.FailureRecord{
		Variant:             v,
		DateFailed:          get(model.FieldDateFailed),
		LocoNo:              loco,
		MUWith:              get(model.FieldMUWith),
		Division:            get(model.FieldDivision),
		Railway:             get(model.FieldRailway),
		BriefMessage:        get(model.FieldBriefMessage),
		CauseOfFailure:      get(model.FieldCauseOfFailure),
		Equipment:           get(model.FieldEquipment),
		Component:           get(model.FieldComponent),
		Responsibility:      get(model.FieldResponsibility),
		InvestigationStatus: get(model.FieldInvestigationStatus),
		ReportLink:          firstOf(rec, linkAliases[model.FieldReportLink]),
		MediaLink:           firstOf(rec, linkAliases[model.FieldMediaLink]),
	}

	icms := get(model.FieldICMS)
	if v == model.VariantB {
		// A blank ICMS number means the failure was reported by message.
		f.ICMS = icms != ""
	} else {
		f.ICMS = strings.Contains(strings.ToLower(icms), "icms")
	}
	return f
}

// LocoID returns the vehicle id of a normalized-key record using the first
// alias present. A missing alias or blank value reports false.
func LocoID(rec model.Record) (string, bool) {
	for _, k := range LocoAliases {
		if v, ok := rec[k]; ok {
			v = strings.TrimSpace(v)
			return v, v != ""
		}
	}
	return "", false
}

func firstOf(rec model.Record, keys []string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(rec[k]); v != "" {
			return v
		}
	}
	return ""
}
