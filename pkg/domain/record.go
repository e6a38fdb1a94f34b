// Package domain defines the keyed record model, the curated field schema,
// and the record-store contract used by isolateledger.
package domain

import (
	"sort"
	"strconv"
	"strings"
)

// Collection names of the watched record collections.
const (
	// CollectionExtractions holds the DNA extraction ledger rows.
	CollectionExtractions = "extractions"
	// CollectionStorage holds the storage-box catalog.
	CollectionStorage = "storage"
	// CollectionPrimers holds the primer registry.
	CollectionPrimers = "primers"
)

// Record is one keyed row of a collection: a stable store-assigned key plus
// a flat field map. Values are strings, float64 (concentrations) or
// []string (the group field only).
type Record struct {
	Key    string
	Fields map[string]any
}

// Clone returns a deep copy of the record.
func (r Record) Clone() Record {
	cp := Record{Key: r.Key}
	if r.Fields != nil {
		cp.Fields = make(map[string]any, len(r.Fields))
		for k, v := range r.Fields {
			if list, ok := v.([]string); ok {
				cp.Fields[k] = append([]string(nil), list...)
				continue
			}
			cp.Fields[k] = v
		}
	}
	return cp
}

// Has reports whether the record carries the field at all, including with
// an empty value.
func (r Record) Has(field string) bool {
	_, ok := r.Fields[field]
	return ok
}

// String returns the stringified value of a field, or "" when absent.
// Numeric values render without trailing zeros; list values join with ", ".
func (r Record) String(field string) string {
	return Stringify(r.Fields[field])
}

// Group returns the normalized isolate-code group list. Legacy records may
// store the group as a bare string or as an untyped list; both decode to an
// ordered, de-duplicated []string. An empty value decodes to nil.
func (r Record) Group() []string {
	return NormalizeGroup(r.Fields[FieldIsolateCodeGroup])
}

// FieldNames returns the record's field names sorted ascending.
func (r Record) FieldNames() []string {
	names := make([]string, 0, len(r.Fields))
	for name := range r.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FieldPatch is a set of field/value pairs applied to one record by key.
// Unmentioned fields are left untouched by the store.
type FieldPatch map[string]any

// Clone returns a copy of the patch.
func (p FieldPatch) Clone() FieldPatch {
	if p == nil {
		return nil
	}
	out := make(FieldPatch, len(p))
	for k, v := range p {
		if list, ok := v.([]string); ok {
			out[k] = append([]string(nil), list...)
			continue
		}
		out[k] = v
	}
	return out
}

// Merge folds other into the patch, later values winning.
func (p FieldPatch) Merge(other FieldPatch) {
	for k, v := range other {
		p[k] = v
	}
}

// Stringify renders a field value for display and filtering.
func Stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case bool:
		return strconv.FormatBool(val)
	case []string:
		return strings.Join(val, ", ")
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			parts = append(parts, Stringify(item))
		}
		return strings.Join(parts, ", ")
	default:
		return ""
	}
}

// NormalizeGroup decodes any stored representation of the group field into
// an ordered, de-duplicated code list. The original store used "" as the
// no-group sentinel and occasionally a bare code string; both are accepted.
func NormalizeGroup(v any) []string {
	var raw []string
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		if val == "" {
			return nil
		}
		raw = []string{val}
	case []string:
		raw = val
	case []any:
		for _, item := range val {
			if s, ok := item.(string); ok {
				raw = append(raw, s)
			}
		}
	default:
		return nil
	}
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, code := range raw {
		if code == "" {
			continue
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
