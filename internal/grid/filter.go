package grid

import (
	"sort"
	"strings"

	"isolateledger/pkg/domain"
)

// Filters combines per-column multi-select filters with a single global
// substring query. Column filters accept a row when its cell value is a
// member of the accepted set; an empty set means the column does not
// filter. All active filters compose by AND.
type Filters struct {
	columns map[string]map[string]struct{}
	global  string
}

// NewFilters returns an empty filter set that accepts every row.
func NewFilters() *Filters {
	return &Filters{columns: make(map[string]map[string]struct{})}
}

// SetColumn replaces the accepted value set of one column. An empty slice
// clears the column's filter.
func (f *Filters) SetColumn(name string, accepted []string) {
	if len(accepted) == 0 {
		delete(f.columns, name)
		return
	}
	set := make(map[string]struct{}, len(accepted))
	for _, v := range accepted {
		set[v] = struct{}{}
	}
	f.columns[name] = set
}

// ToggleValue adds or removes one accepted value of a column's filter.
func (f *Filters) ToggleValue(name, value string) {
	set, ok := f.columns[name]
	if !ok {
		f.columns[name] = map[string]struct{}{value: {}}
		return
	}
	if _, on := set[value]; on {
		delete(set, value)
		if len(set) == 0 {
			delete(f.columns, name)
		}
		return
	}
	set[value] = struct{}{}
}

// SetGlobal replaces the free-text query. Matching is a case-insensitive
// substring test against every cell of the row.
func (f *Filters) SetGlobal(query string) {
	f.global = strings.ToLower(strings.TrimSpace(query))
}

// Clear drops all column filters and the global query.
func (f *Filters) Clear() {
	f.columns = make(map[string]map[string]struct{})
	f.global = ""
}

// Match reports whether a row passes every active filter.
func (f *Filters) Match(rec domain.Record, cols []Column) bool {
	for name, accepted := range f.columns {
		col, ok := findColumn(cols, name)
		if !ok {
			continue
		}
		if _, keep := accepted[CellValue(rec, col)]; !keep {
			return false
		}
	}
	if f.global == "" {
		return true
	}
	for _, col := range cols {
		if strings.Contains(strings.ToLower(CellValue(rec, col)), f.global) {
			return true
		}
	}
	return false
}

// Apply returns the rows passing the filters, original order preserved.
func (f *Filters) Apply(records []domain.Record, cols []Column) []domain.Record {
	out := make([]domain.Record, 0, len(records))
	for _, rec := range records {
		if f.Match(rec, cols) {
			out = append(out, rec)
		}
	}
	return out
}

// Options returns the distinct values of one column across the records,
// sorted, for building a multi-select filter widget.
func Options(records []domain.Record, col Column) []string {
	seen := make(map[string]struct{})
	for _, rec := range records {
		seen[CellValue(rec, col)] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func findColumn(cols []Column, name string) (Column, bool) {
	for _, col := range cols {
		if col.Name == name {
			return col, true
		}
	}
	return Column{}, false
}
