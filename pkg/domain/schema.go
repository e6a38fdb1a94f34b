package domain

import "sort"

// Wire names of the curated extraction fields. These match the stored
// documents exactly and never change spelling.
const (
	FieldIsolateCode      = "isolateCode"
	FieldSpeciesOrig      = "speciesOrig"
	FieldSpeciesUpdated   = "speciesUpdated"
	FieldProject          = "project"
	FieldDateIsolation    = "dateIsolation"
	FieldKit              = "kit"
	FieldNgul             = "ngul"
	FieldBox              = "box"
	FieldStorageSite      = "storageSite"
	FieldLocalityCode     = "localityCode"
	FieldCountry          = "country"
	FieldState            = "state"
	FieldLocalityName     = "localityName"
	FieldLatitude         = "latitude"
	FieldLongitude        = "longitude"
	FieldAltitude         = "altitude"
	FieldHabitat          = "habitat"
	FieldDateCollection   = "dateCollection"
	FieldCollector        = "collector"
	FieldCytB             = "cytB"
	Field16S              = "16S"
	FieldCOI              = "COI"
	FieldCOII             = "COII"
	FieldITS1             = "ITS1"
	FieldITS2             = "ITS2"
	FieldELAV             = "ELAV"
	FieldNotePCR          = "notePCR"
	FieldNoteSequencing   = "noteSequencing"
	FieldNoteGeneral      = "noteGeneral"
	FieldStatus           = "status"
	FieldIsolateCodeGroup = "isolateCodeGroup"
)

// Primer registry field names.
const (
	FieldPrimerName      = "name"
	FieldPrimerSequence  = "sequence"
	FieldPrimerLocus     = "locus"
	FieldPrimerDirection = "direction"
	FieldPrimerTm        = "tm"
	FieldPrimerSource    = "source"
	FieldPrimerNote      = "note"
	FieldPrimerDateAdded = "dateAdded"
	FieldPrimerAddedBy   = "addedBy"
)

// Storage-box catalog field names.
const (
	FieldBoxLabel = "box"
	FieldBoxSite  = "storageSite"
)

// FieldKind classifies a curated field for editor and column selection.
type FieldKind string

const (
	// KindText fields take free-form string edits.
	KindText FieldKind = "text"
	// KindNumber fields store float64 and parse on commit.
	KindNumber FieldKind = "number"
	// KindDate fields normalize to ISO yyyy-mm-dd on commit.
	KindDate FieldKind = "date"
	// KindReference fields are chosen from a catalog, not typed.
	KindReference FieldKind = "reference"
	// KindDerived fields are written only by the resolver.
	KindDerived FieldKind = "derived"
	// KindFlag fields are short marker values committed without confirmation.
	KindFlag FieldKind = "flag"
)

// FieldSpec describes one curated field.
type FieldSpec struct {
	Name  string
	Kind  FieldKind
	Label string
	// Dependent marks the field as locality-dependent: editable only while
	// the record is unlocked, and cleared of its locality code on edit.
	Dependent bool
}

// LocalityDependentFields are the nine fields overwritten by a locality
// selection and frozen while the record carries a locality code.
var LocalityDependentFields = []string{
	FieldCountry,
	FieldState,
	FieldLocalityName,
	FieldLatitude,
	FieldLongitude,
	FieldAltitude,
	FieldHabitat,
	FieldDateCollection,
	FieldCollector,
}

// GroupIdentifyingFields are the fields of which at least one must differ
// between two records for them to represent distinct collection events.
var GroupIdentifyingFields = []string{
	FieldCountry,
	FieldLatitude,
	FieldLongitude,
	FieldState,
	FieldLocalityName,
	FieldDateCollection,
	FieldCollector,
}

// GroupDescriptiveFields must all match between two records before they can
// be grouped as the same organism.
var GroupDescriptiveFields = []string{
	FieldSpeciesOrig,
	FieldHabitat,
	FieldAltitude,
}

// extractionSchema is the curated registry in ledger-view column order.
var extractionSchema = []FieldSpec{
	{Name: FieldIsolateCode, Kind: KindText, Label: "Isolate code"},
	{Name: FieldSpeciesOrig, Kind: KindText, Label: "Species (orig.)"},
	{Name: FieldSpeciesUpdated, Kind: KindText, Label: "Species (updated)"},
	{Name: FieldProject, Kind: KindText, Label: "Project"},
	{Name: FieldDateIsolation, Kind: KindDate, Label: "Date of isolation"},
	{Name: FieldKit, Kind: KindText, Label: "Kit"},
	{Name: FieldNgul, Kind: KindNumber, Label: "ng/ul"},
	{Name: FieldBox, Kind: KindReference, Label: "Box"},
	{Name: FieldStorageSite, Kind: KindDerived, Label: "Storage site"},
	{Name: FieldLocalityCode, Kind: KindReference, Label: "Locality code"},
	{Name: FieldCountry, Kind: KindText, Label: "Country", Dependent: true},
	{Name: FieldState, Kind: KindText, Label: "State/Province", Dependent: true},
	{Name: FieldLocalityName, Kind: KindText, Label: "Locality name", Dependent: true},
	{Name: FieldLatitude, Kind: KindText, Label: "Latitude", Dependent: true},
	{Name: FieldLongitude, Kind: KindText, Label: "Longitude", Dependent: true},
	{Name: FieldAltitude, Kind: KindText, Label: "Altitude", Dependent: true},
	{Name: FieldHabitat, Kind: KindText, Label: "Habitat", Dependent: true},
	{Name: FieldDateCollection, Kind: KindDate, Label: "Date of collection", Dependent: true},
	{Name: FieldCollector, Kind: KindText, Label: "Collector", Dependent: true},
	{Name: FieldCytB, Kind: KindFlag, Label: "cytB"},
	{Name: Field16S, Kind: KindFlag, Label: "16S"},
	{Name: FieldCOI, Kind: KindFlag, Label: "COI"},
	{Name: FieldCOII, Kind: KindFlag, Label: "COII"},
	{Name: FieldITS1, Kind: KindFlag, Label: "ITS1"},
	{Name: FieldITS2, Kind: KindFlag, Label: "ITS2"},
	{Name: FieldELAV, Kind: KindFlag, Label: "ELAV"},
	{Name: FieldNotePCR, Kind: KindText, Label: "Note PCR"},
	{Name: FieldNoteSequencing, Kind: KindText, Label: "Note sequencing"},
	{Name: FieldNoteGeneral, Kind: KindText, Label: "Note general"},
	{Name: FieldStatus, Kind: KindText, Label: "Status"},
}

// primerSchema is the fixed primer registry column set.
var primerSchema = []FieldSpec{
	{Name: FieldPrimerName, Kind: KindText, Label: "Name"},
	{Name: FieldPrimerSequence, Kind: KindText, Label: "Sequence 5'-3'"},
	{Name: FieldPrimerLocus, Kind: KindText, Label: "Locus"},
	{Name: FieldPrimerDirection, Kind: KindText, Label: "Direction"},
	{Name: FieldPrimerTm, Kind: KindNumber, Label: "Tm"},
	{Name: FieldPrimerSource, Kind: KindText, Label: "Source"},
	{Name: FieldPrimerNote, Kind: KindText, Label: "Note"},
	{Name: FieldPrimerDateAdded, Kind: KindDate, Label: "Date added"},
	{Name: FieldPrimerAddedBy, Kind: KindText, Label: "Added by"},
}

// ExtractionSchema returns the curated extraction field registry in ledger
// column order.
func ExtractionSchema() []FieldSpec {
	return append([]FieldSpec(nil), extractionSchema...)
}

// PrimerSchema returns the fixed primer registry column set.
func PrimerSchema() []FieldSpec {
	return append([]FieldSpec(nil), primerSchema...)
}

// LookupField returns the curated spec for a field name, or false when the
// field is not part of the curated extraction registry.
func LookupField(name string) (FieldSpec, bool) {
	spec, ok := extractionIndex[name]
	return spec, ok
}

// IsCurated reports whether the field belongs to the curated extraction
// registry.
func IsCurated(name string) bool {
	_, ok := extractionIndex[name]
	return ok
}

// IsLocalityDependent reports whether the field is overwritten by locality
// selection.
func IsLocalityDependent(name string) bool {
	_, ok := dependentIndex[name]
	return ok
}

// InferredFields returns the field names present on any of the records that
// are neither curated nor reserved, sorted ascending. The record key and the
// group field never infer a column.
func InferredFields(records []Record) []string {
	seen := make(map[string]struct{})
	for _, rec := range records {
		for name := range rec.Fields {
			if name == FieldIsolateCodeGroup || IsCurated(name) {
				continue
			}
			seen[name] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

var (
	extractionIndex = make(map[string]FieldSpec, len(extractionSchema))
	dependentIndex  = make(map[string]struct{}, len(LocalityDependentFields))
)

func init() {
	for _, spec := range extractionSchema {
		extractionIndex[spec.Name] = spec
	}
	for _, name := range LocalityDependentFields {
		dependentIndex[name] = struct{}{}
	}
}
