package domain

import "errors"

// Sentinel errors surfaced by the store and the ledger engine.
var (
	// ErrRecordNotFound is returned when a key does not exist in the
	// addressed collection.
	ErrRecordNotFound = errors.New("record not found")
	// ErrUnknownCollection is returned for collection names the store does
	// not manage.
	ErrUnknownCollection = errors.New("unknown collection")
	// ErrDuplicateIsolateCode is returned by sample intake when the isolate
	// code is already taken.
	ErrDuplicateIsolateCode = errors.New("duplicate isolate code")
	// ErrFieldLocked is returned when editing a locality-dependent field on
	// a record bound to a catalog locality.
	ErrFieldLocked = errors.New("field locked by locality code")
	// ErrMissingRequiredField is returned by sample intake validation.
	ErrMissingRequiredField = errors.New("missing required field")
	// ErrEmptyRevertSlot is returned when reverting with no stored edit.
	ErrEmptyRevertSlot = errors.New("revert slot is empty")
	// ErrIneligibleCandidate is returned when grouping two records that do
	// not satisfy the same-organism criteria.
	ErrIneligibleCandidate = errors.New("candidate not eligible for group")
)

// Snapshot is one full-collection state delivered to subscribers. Records
// are ordered by key ascending; the slice and its records are owned by the
// receiver.
type Snapshot struct {
	Collection string
	Records    []Record
}

// SnapshotFunc receives collection snapshots. It is called once with the
// current state on subscribe and again after every mutation.
type SnapshotFunc func(Snapshot)

// CancelFunc detaches a subscriber. Safe to call more than once.
type CancelFunc func()

// RecordStore is the authoritative keyed record store the engine runs on.
// All mutations are field-level partial writes; readers observe whole
// collection snapshots.
type RecordStore interface {
	// Subscribe registers fn for a collection. fn is invoked synchronously
	// with the current snapshot before Subscribe returns, then after every
	// mutation of the collection.
	Subscribe(collection string, fn SnapshotFunc) (CancelFunc, error)

	// Put inserts a new record with a store-assigned key and returns it.
	Put(collection string, fields FieldPatch) (Record, error)

	// Patch applies a field-level partial write to the record at key.
	// Fields absent from the patch are left untouched.
	Patch(collection, key string, patch FieldPatch) error

	// Remove deletes the record at key.
	Remove(collection, key string) error

	// List returns the current records of a collection ordered by key.
	List(collection string) ([]Record, error)
}
