// Package lookup answers point queries for one locomotive across the
// inventory, schedule, failure and modification tables.
package lookup

import (
	"sort"
	"strings"

	"locoboard/internal/model"
	"locoboard/internal/parser"
)

// FindKeyColumn returns the key under which the first record stores the
// locomotive id. Only the first record is inspected; tables are assumed to be
// uniform. Aliases are tried in priority order and the record's own key is
// returned, so raw-label tables yield their raw label.
func FindKeyColumn(records []model.Record) (string, bool) {
	if len(records) == 0 {
		return "", false
	}
	keys := make([]string, 0, len(records[0]))
	for k := range records[0] {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, alias := range parser.LocoAliases {
		for _, k := range keys {
			if parser.NormalizeKey(k) == alias {
				return k, true
			}
		}
	}
	return "", false
}

// FilterByKey returns the records whose key column equals value, ignoring case
// and surrounding whitespace. The input slice is not modified.
func FilterByKey(records []model.Record, key, value string) []model.Record {
	value = strings.TrimSpace(value)
	out := make([]model.Record, 0)
	if value == "" {
		return out
	}
	for _, rec := range records {
		if strings.EqualFold(strings.TrimSpace(rec[key]), value) {
			out = append(out, rec)
		}
	}
	return out
}

// Tables are the record sets a lookup joins against.
type Tables struct {
	Details       []model.Record
	Schedules     []model.Record
	Modifications []model.Record
	Failures      []model.FailureRecord
}

// LocoData is everything known about one locomotive.
type LocoData struct {
	ID            string                `json:"id"`
	Detail        model.Record          `json:"detail"`
	Schedules     []model.Record        `json:"schedules"`
	Failures      []model.FailureRecord `json:"failures"`
	Modifications []model.Record        `json:"modifications"`
}

// Resolve joins every table on id. When the detail table has no matching
// record nothing else is consulted and ok is false.
func Resolve(id string, t Tables) (LocoData, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		return LocoData{}, false
	}
	key, ok := FindKeyColumn(t.Details)
	if !ok {
		return LocoData{}, false
	}
	details := FilterByKey(t.Details, key, id)
	if len(details) == 0 {
		return LocoData{}, false
	}

	return LocoData{
		ID:            id,
		Detail:        details[0],
		Schedules:     join(t.Schedules, id),
		Failures:      FailuresOf(t.Failures, id),
		Modifications: join(t.Modifications, id),
	}, true
}

// FailuresOf returns the failures of one locomotive in input order. The
// failure id was already taken from the sheet's own alias column during
// reconciliation.
func FailuresOf(failures []model.FailureRecord, id string) []model.FailureRecord {
	id = strings.TrimSpace(id)
	out := make([]model.FailureRecord, 0)
	for _, f := range failures {
		if f.LocoNo != "" && strings.EqualFold(f.LocoNo, id) {
			out = append(out, f)
		}
	}
	return out
}

func join(records []model.Record, id string) []model.Record {
	key, ok := FindKeyColumn(records)
	if !ok {
		return []model.Record{}
	}
	return FilterByKey(records, key, id)
}
