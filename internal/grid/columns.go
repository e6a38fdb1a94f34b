// Package grid derives the tabular presentation of a collection snapshot:
// the column set (curated plus inferred), categorical and global filters,
// stable single-column sorting, row selection and the flat projection the
// exporter serializes.
package grid

import (
	"strings"

	"isolateledger/pkg/domain"
)

// Column is one grid column. Synthetic marks the trailing group column,
// which has no backing field of its own; Hidden columns carry data but are
// excluded from projection.
type Column struct {
	Name      string
	Label     string
	Kind      domain.FieldKind
	Hidden    bool
	Inferred  bool
	Synthetic bool
}

// GroupColumnName names the synthesized trailing column rendering group
// membership. The underlying field never appears as a column itself.
const GroupColumnName = "group"

// LedgerColumns builds the full ledger view: the curated extraction schema
// in declared order, then the columns inferred from the records sorted by
// name, then the synthesized group column.
func LedgerColumns(records []domain.Record) []Column {
	var cols []Column
	for _, spec := range domain.ExtractionSchema() {
		cols = append(cols, Column{Name: spec.Name, Label: spec.Label, Kind: spec.Kind})
	}
	for _, name := range domain.InferredFields(records) {
		cols = append(cols, Column{Name: name, Label: name, Kind: domain.KindText, Inferred: true})
	}
	return append(cols, groupColumn())
}

// lociFields is the marker-status subset shown on the PCR/genomic loci view.
var lociFields = []string{
	domain.FieldIsolateCode,
	domain.FieldSpeciesOrig,
	domain.FieldSpeciesUpdated,
	domain.FieldProject,
	domain.FieldCytB,
	domain.Field16S,
	domain.FieldCOI,
	domain.FieldCOII,
	domain.FieldITS1,
	domain.FieldITS2,
	domain.FieldELAV,
	domain.FieldNotePCR,
	domain.FieldNoteSequencing,
	domain.FieldStatus,
}

// LociColumns builds the PCR/genomic loci view: the marker subset plus a
// hidden locality-code column that participates in filtering but is never
// projected, plus the group column.
func LociColumns() []Column {
	var cols []Column
	for _, name := range lociFields {
		spec, _ := domain.LookupField(name)
		cols = append(cols, Column{Name: name, Label: spec.Label, Kind: spec.Kind})
	}
	cols = append(cols, Column{
		Name:   domain.FieldLocalityCode,
		Label:  "Locality code",
		Kind:   domain.KindReference,
		Hidden: true,
	})
	return append(cols, groupColumn())
}

// PrimerColumns builds the fixed primer registry view.
func PrimerColumns() []Column {
	var cols []Column
	for _, spec := range domain.PrimerSchema() {
		cols = append(cols, Column{Name: spec.Name, Label: spec.Label, Kind: spec.Kind})
	}
	return cols
}

func groupColumn() Column {
	return Column{
		Name:      GroupColumnName,
		Label:     "Same isolate",
		Kind:      domain.KindDerived,
		Synthetic: true,
	}
}

// CellValue renders one cell. The synthetic group column shows the other
// members of the record's group, self filtered out; singleton lists render
// empty.
func CellValue(rec domain.Record, col Column) string {
	if !col.Synthetic {
		return rec.String(col.Name)
	}
	self := rec.String(domain.FieldIsolateCode)
	var others []string
	for _, code := range rec.Group() {
		if code != self {
			others = append(others, code)
		}
	}
	return strings.Join(others, ", ")
}

// Visible filters out hidden columns, preserving order.
func Visible(cols []Column) []Column {
	out := make([]Column, 0, len(cols))
	for _, col := range cols {
		if !col.Hidden {
			out = append(out, col)
		}
	}
	return out
}
