package grid

import (
	"sort"

	"isolateledger/pkg/domain"
)

// Selection is the set of selected row keys.
type Selection map[string]struct{}

// NewSelection returns an empty selection.
func NewSelection() Selection { return make(Selection) }

// Toggle flips one row's membership.
func (s Selection) Toggle(key string) {
	if _, ok := s[key]; ok {
		delete(s, key)
		return
	}
	s[key] = struct{}{}
}

// Has reports whether the row is selected.
func (s Selection) Has(key string) bool {
	_, ok := s[key]
	return ok
}

// SelectAll selects exactly the given rows, which are the currently
// filtered ones, not the whole dataset.
func (s Selection) SelectAll(rows []domain.Record) {
	for key := range s {
		delete(s, key)
	}
	for _, rec := range rows {
		s[rec.Key] = struct{}{}
	}
}

// Clear empties the selection.
func (s Selection) Clear() {
	for key := range s {
		delete(s, key)
	}
}

// Keys returns the selected keys sorted ascending.
func (s Selection) Keys() []string {
	out := make([]string, 0, len(s))
	for key := range s {
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}
