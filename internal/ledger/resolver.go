// Package ledger implements the editable-grid engine for the extraction
// ledger: denormalization of locality and storage-box references, cell
// editing with a single revert slot, the symmetric isolate-code grouping
// relation, and new-sample intake. All mutations are expressed as field
// patches for a domain.RecordStore; the package itself holds no
// authoritative state.
package ledger

import (
	"fmt"

	"isolateledger/pkg/domain"
)

// LocalityOption is one selectable locality: a code plus the payload copied
// onto a record when the option is chosen.
type LocalityOption struct {
	Code           string
	Country        string
	State          string
	LocalityName   string
	Latitude       string
	Longitude      string
	Altitude       string
	Habitat        string
	DateCollection string
	Collector      string
}

// Patch returns the field patch a locality selection writes: the nine
// dependent fields plus the locality code itself. The resulting record is
// locked.
func (o LocalityOption) Patch() domain.FieldPatch {
	return domain.FieldPatch{
		domain.FieldLocalityCode:   o.Code,
		domain.FieldCountry:        o.Country,
		domain.FieldState:          o.State,
		domain.FieldLocalityName:   o.LocalityName,
		domain.FieldLatitude:       o.Latitude,
		domain.FieldLongitude:      o.Longitude,
		domain.FieldAltitude:       o.Altitude,
		domain.FieldHabitat:        o.Habitat,
		domain.FieldDateCollection: o.DateCollection,
		domain.FieldCollector:      o.Collector,
	}
}

// BoxOption is one selectable storage box.
type BoxOption struct {
	Key   string
	Label string
	Site  string
}

// Patch returns the denormalized payload of a box selection. The box key
// itself is written by the select editor alongside this patch; choosing a
// box never locks anything.
func (o BoxOption) Patch() domain.FieldPatch {
	return domain.FieldPatch{domain.FieldStorageSite: o.Site}
}

// Locked reports whether rec's locality-dependent fields are frozen, which
// is the case exactly while it carries a non-empty locality code.
func Locked(rec domain.Record) bool {
	return rec.String(domain.FieldLocalityCode) != ""
}

// DependentFieldPatch builds the patch for a direct edit of one of the nine
// locality-dependent fields. While the record is locked the edit is refused.
// When unlocked, the edit also detaches the record from catalog provenance:
// the locality code is cleared and the isolate group is dissolved on this
// record, since membership was established through shared locality.
func DependentFieldPatch(rec domain.Record, field string, value any) (domain.FieldPatch, error) {
	if !domain.IsLocalityDependent(field) {
		return nil, fmt.Errorf("field %s is not locality-dependent", field)
	}
	if Locked(rec) {
		return nil, fmt.Errorf("edit %s on %s: %w", field, rec.String(domain.FieldIsolateCode), domain.ErrFieldLocked)
	}
	return domain.FieldPatch{
		field:                        value,
		domain.FieldLocalityCode:     "",
		domain.FieldIsolateCodeGroup: []string{},
	}, nil
}

// ClearLocalityPatch unlocks a record without erasing the previously copied
// dependent values.
func ClearLocalityPatch() domain.FieldPatch {
	return domain.FieldPatch{domain.FieldLocalityCode: ""}
}
