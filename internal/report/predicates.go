package report

import (
	"strings"

	"locoboard/internal/model"
)

// All selects every record.
func All(model.FailureRecord) bool { return true }

// Fleet selects records of one fleet, ignoring case.
func Fleet(name string) Predicate {
	name = strings.TrimSpace(name)
	return func(f model.FailureRecord) bool {
		return strings.EqualFold(strings.TrimSpace(f.Fleet), name)
	}
}

// FieldIn selects records whose field equals one of values (trimmed, any case).
func FieldIn(field string, values ...string) Predicate {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[strings.ToLower(strings.TrimSpace(v))] = struct{}{}
	}
	return func(f model.FailureRecord) bool {
		_, ok := set[strings.ToLower(strings.TrimSpace(f.Field(field)))]
		return ok
	}
}

// Responsibility selects records charged to one of the given codes.
func Responsibility(codes ...string) Predicate {
	return FieldIn(model.FieldResponsibility, codes...)
}

// InvestigationStatus selects records in one of the given statuses.
func InvestigationStatus(statuses ...string) Predicate {
	return FieldIn(model.FieldInvestigationStatus, statuses...)
}

// ICMSOnly selects failures registered in ICMS.
func ICMSOnly(f model.FailureRecord) bool { return f.ICMS }

// MessageOnly selects failures reported by message only.
func MessageOnly(f model.FailureRecord) bool { return !f.ICMS }

// And selects records matching every predicate.
func And(ps ...Predicate) Predicate {
	return func(f model.FailureRecord) bool {
		for _, p := range ps {
			if p != nil && !p(f) {
				return false
			}
		}
		return true
	}
}

// Or selects records matching any predicate.
func Or(ps ...Predicate) Predicate {
	return func(f model.FailureRecord) bool {
		for _, p := range ps {
			if p != nil && p(f) {
				return true
			}
		}
		return false
	}
}

// Not inverts p.
func Not(p Predicate) Predicate {
	return func(f model.FailureRecord) bool { return !p(f) }
}

// Filter returns the records selected by p, in order. The input is not modified.
func Filter(records []model.FailureRecord, p Predicate) []model.FailureRecord {
	if p == nil {
		p = All
	}
	out := make([]model.FailureRecord, 0, len(records))
	for _, f := range records {
		if p(f) {
			out = append(out, f)
		}
	}
	return out
}
