package domain

// Extraction is a typed view over an extraction record. It does not copy
// the underlying field map; mutations still go through the store as patches.
type Extraction struct {
	Record
}

// AsExtraction wraps a record from the extractions collection.
func AsExtraction(rec Record) Extraction { return Extraction{Record: rec} }

// IsolateCode returns the record's isolate code.
func (e Extraction) IsolateCode() string { return e.String(FieldIsolateCode) }

// LocalityCode returns the assigned locality code, or "" when the record is
// not bound to a catalog locality.
func (e Extraction) LocalityCode() string { return e.String(FieldLocalityCode) }

// Locked reports whether the record is bound to a catalog locality, which
// freezes its nine locality-dependent fields.
func (e Extraction) Locked() bool { return e.LocalityCode() != "" }

// Box returns the storage-box reference key, or "".
func (e Extraction) Box() string { return e.String(FieldBox) }

// StorageBox is a typed view over a storage-catalog record.
type StorageBox struct {
	Record
}

// AsStorageBox wraps a record from the storage collection.
func AsStorageBox(rec Record) StorageBox { return StorageBox{Record: rec} }

// Label returns the box label shown in select options.
func (b StorageBox) Label() string { return b.String(FieldBoxLabel) }

// Site returns the physical storage site of the box.
func (b StorageBox) Site() string { return b.String(FieldBoxSite) }

// Primer is a typed view over a primer-registry record.
type Primer struct {
	Record
}

// AsPrimer wraps a record from the primers collection.
func AsPrimer(rec Record) Primer { return Primer{Record: rec} }

// Name returns the primer name.
func (p Primer) Name() string { return p.String(FieldPrimerName) }

// Sequence returns the primer sequence, 5' to 3'.
func (p Primer) Sequence() string { return p.String(FieldPrimerSequence) }
