package lookup

import (
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"

	"locoboard/internal/model"
)

// Index is the read-only list of valid locomotive ids used by the search box.
type Index struct {
	ids    []string
	folded []string
}

// NewIndex builds an index from the detail table. Blank and duplicate ids
// are dropped; ids keep their first spelling.
func NewIndex(details []model.Record) *Index {
	idx := &Index{}
	key, ok := FindKeyColumn(details)
	if !ok {
		return idx
	}
	seen := make(map[string]struct{}, len(details))
	for _, rec := range details {
		id := strings.TrimSpace(rec[key])
		if id == "" {
			continue
		}
		f := fold(id)
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		idx.ids = append(idx.ids, id)
	}
	sort.Strings(idx.ids)
	idx.folded = make([]string, len(idx.ids))
	for i, id := range idx.ids {
		idx.folded[i] = fold(id)
	}
	return idx
}

// Len returns the number of ids.
func (x *Index) Len() int {
	return len(x.ids)
}

// IDs returns a copy of the ids in sorted order.
func (x *Index) IDs() []string {
	return append([]string(nil), x.ids...)
}

// Search returns up to limit ids matching q: prefix matches first, then
// substring matches, each in sorted order. limit <= 0 means no limit.
func (x *Index) Search(q string, limit int) []string {
	q = fold(q)
	if q == "" {
		return []string{}
	}
	var prefix, inner []string
	for i, f := range x.folded {
		switch {
		case strings.HasPrefix(f, q):
			prefix = append(prefix, x.ids[i])
		case strings.Contains(f, q):
			inner = append(inner, x.ids[i])
		}
	}
	out := append(prefix, inner...)
	if out == nil {
		out = []string{}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// fold lower-cases s, narrows full-width forms and drops combining marks.
func fold(s string) string {
	t := transform.Chain(width.Fold, norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strings.TrimSpace(s))
	if err != nil {
		out = strings.TrimSpace(s)
	}
	return strings.ToLower(out)
}
