package ledger

import (
	"fmt"
	"sort"

	"isolateledger/pkg/domain"
)

// Eligible reports whether cand may join source's isolate group. Candidates
// must be a different record, not already grouped with source, must differ
// from source in at least one locality-identifying field, and must match it
// on every descriptive field. Two records equal on all of these look like
// duplicates of the same collection event and are never offered.
func Eligible(source, cand domain.Record) bool {
	if cand.Key == source.Key {
		return false
	}
	srcCode := source.String(domain.FieldIsolateCode)
	candCode := cand.String(domain.FieldIsolateCode)
	if candCode == "" || candCode == srcCode {
		return false
	}
	if containsCode(source.Group(), candCode) || containsCode(cand.Group(), srcCode) {
		return false
	}
	differs := false
	for _, field := range domain.GroupIdentifyingFields {
		if source.String(field) != cand.String(field) {
			differs = true
			break
		}
	}
	if !differs {
		return false
	}
	for _, field := range domain.GroupDescriptiveFields {
		if source.String(field) != cand.String(field) {
			return false
		}
	}
	return true
}

// Candidates filters the dataset down to records eligible to join source's
// group. Ineligible records are omitted silently.
func Candidates(source domain.Record, all []domain.Record) []domain.Record {
	var out []domain.Record
	for _, rec := range all {
		if Eligible(source, rec) {
			out = append(out, rec)
		}
	}
	return out
}

// UnifiedGroup returns the de-duplicated union of both records' isolate
// codes and both pre-existing group lists, sorted for a stable wire shape.
// Every member stores this full set, its own code included.
func UnifiedGroup(a, b domain.Record) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(code string) {
		if code == "" {
			return
		}
		if _, dup := seen[code]; dup {
			return
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}
	add(a.String(domain.FieldIsolateCode))
	add(b.String(domain.FieldIsolateCode))
	for _, code := range a.Group() {
		add(code)
	}
	for _, code := range b.Group() {
		add(code)
	}
	sort.Strings(out)
	return out
}

// AddToGroup merges source's and target's groups. The returned patch set,
// keyed by record key, writes the unified list to every record whose
// isolate code appears in it. Applying the same addition twice yields the
// same patches.
func AddToGroup(source, target domain.Record, all []domain.Record) (map[string]domain.FieldPatch, error) {
	if target.Key == source.Key {
		return nil, fmt.Errorf("group %s with itself: %w", source.String(domain.FieldIsolateCode), domain.ErrIneligibleCandidate)
	}
	if !Eligible(source, target) && !groupedTogether(source, target) {
		return nil, fmt.Errorf("group %s with %s: %w",
			source.String(domain.FieldIsolateCode), target.String(domain.FieldIsolateCode), domain.ErrIneligibleCandidate)
	}
	unified := UnifiedGroup(source, target)
	members := make(map[string]struct{}, len(unified))
	for _, code := range unified {
		members[code] = struct{}{}
	}
	patches := make(map[string]domain.FieldPatch)
	for _, rec := range all {
		if _, ok := members[rec.String(domain.FieldIsolateCode)]; ok {
			patches[rec.Key] = domain.FieldPatch{
				domain.FieldIsolateCodeGroup: append([]string(nil), unified...),
			}
		}
	}
	return patches, nil
}

// RemoveFromGroup dissolves one membership: the given code is filtered from
// every group list that contains it, and the record owning the code has its
// own list cleared.
func RemoveFromGroup(code string, all []domain.Record) map[string]domain.FieldPatch {
	patches := make(map[string]domain.FieldPatch)
	if code == "" {
		return patches
	}
	for _, rec := range all {
		if rec.String(domain.FieldIsolateCode) == code {
			patches[rec.Key] = domain.FieldPatch{domain.FieldIsolateCodeGroup: []string{}}
			continue
		}
		group := rec.Group()
		if !containsCode(group, code) {
			continue
		}
		kept := make([]string, 0, len(group)-1)
		for _, member := range group {
			if member != code {
				kept = append(kept, member)
			}
		}
		patches[rec.Key] = domain.FieldPatch{domain.FieldIsolateCodeGroup: kept}
	}
	return patches
}

// Members resolves rec's same-isolate family: every record whose isolate
// code appears in rec's group list, rec itself excluded. A linear scan per
// call is fine at lab-dataset scale.
func Members(rec domain.Record, all []domain.Record) []domain.Record {
	group := rec.Group()
	if len(group) == 0 {
		return nil
	}
	self := rec.String(domain.FieldIsolateCode)
	var out []domain.Record
	for _, other := range all {
		code := other.String(domain.FieldIsolateCode)
		if code == self || other.Key == rec.Key {
			continue
		}
		if containsCode(group, code) {
			out = append(out, other)
		}
	}
	return out
}

// Others returns rec's group list with its own code filtered out, which is
// what the grid renders in the trailing group column.
func Others(rec domain.Record) []string {
	self := rec.String(domain.FieldIsolateCode)
	var out []string
	for _, code := range rec.Group() {
		if code != self {
			out = append(out, code)
		}
	}
	return out
}

func groupedTogether(a, b domain.Record) bool {
	return containsCode(a.Group(), b.String(domain.FieldIsolateCode)) &&
		containsCode(b.Group(), a.String(domain.FieldIsolateCode))
}

func containsCode(group []string, code string) bool {
	for _, member := range group {
		if member == code {
			return true
		}
	}
	return false
}
