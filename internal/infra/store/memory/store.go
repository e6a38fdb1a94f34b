// Package memory implements the authoritative in-memory record store. It
// is the engine behind the durable sqlite and postgres stores, which wrap
// it and persist its snapshots.
package memory

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"isolateledger/pkg/domain"
)

// Store is a keyed record store with snapshot fan-out. Every mutation
// delivers the mutated collection's full contents to all of its
// subscribers; subscribers also receive the current state synchronously on
// subscribe.
type Store struct {
	mu          sync.RWMutex
	collections map[string]map[string]domain.Record
	subs        map[string]map[int]domain.SnapshotFunc
	nextSub     int
	newKey      func() string
	afterChange func(collection string)
}

var _ domain.RecordStore = (*Store)(nil)

// New returns an empty store managing the three ledger collections.
func New() *Store {
	s := &Store{
		collections: make(map[string]map[string]domain.Record),
		subs:        make(map[string]map[int]domain.SnapshotFunc),
		newKey:      newKey,
	}
	for _, name := range []string{domain.CollectionExtractions, domain.CollectionStorage, domain.CollectionPrimers} {
		s.collections[name] = make(map[string]domain.Record)
		s.subs[name] = make(map[int]domain.SnapshotFunc)
	}
	return s
}

// newKey issues time-ordered keys so that listing by key preserves
// insertion order.
func newKey() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// Subscribe registers fn for a collection, delivers the current snapshot
// synchronously, and returns a cancel func.
func (s *Store) Subscribe(collection string, fn domain.SnapshotFunc) (domain.CancelFunc, error) {
	s.mu.Lock()
	subs, ok := s.subs[collection]
	if !ok {
		s.mu.Unlock()
		return nil, fmt.Errorf("subscribe %s: %w", collection, domain.ErrUnknownCollection)
	}
	id := s.nextSub
	s.nextSub++
	subs[id] = fn
	snap := s.snapshotLocked(collection)
	s.mu.Unlock()

	fn(snap)
	cancel := func() {
		s.mu.Lock()
		delete(s.subs[collection], id)
		s.mu.Unlock()
	}
	return cancel, nil
}

// Put inserts a record with a store-assigned key.
func (s *Store) Put(collection string, fields domain.FieldPatch) (domain.Record, error) {
	s.mu.Lock()
	records, ok := s.collections[collection]
	if !ok {
		s.mu.Unlock()
		return domain.Record{}, fmt.Errorf("put into %s: %w", collection, domain.ErrUnknownCollection)
	}
	rec := domain.Record{Key: s.newKey(), Fields: make(map[string]any, len(fields))}
	for name, value := range fields {
		rec.Fields[name] = normalizeValue(name, value)
	}
	records[rec.Key] = rec
	s.mu.Unlock()

	s.notify(collection)
	return rec.Clone(), nil
}

// Patch applies a field-level partial write to one record. Unmentioned
// fields are untouched.
func (s *Store) Patch(collection, key string, patch domain.FieldPatch) error {
	s.mu.Lock()
	records, ok := s.collections[collection]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("patch %s: %w", collection, domain.ErrUnknownCollection)
	}
	rec, ok := records[key]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("patch %s/%s: %w", collection, key, domain.ErrRecordNotFound)
	}
	rec = rec.Clone()
	for name, value := range patch {
		rec.Fields[name] = normalizeValue(name, value)
	}
	records[key] = rec
	s.mu.Unlock()

	s.notify(collection)
	return nil
}

// Remove deletes one record by key.
func (s *Store) Remove(collection, key string) error {
	s.mu.Lock()
	records, ok := s.collections[collection]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("remove from %s: %w", collection, domain.ErrUnknownCollection)
	}
	if _, ok := records[key]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("remove %s/%s: %w", collection, key, domain.ErrRecordNotFound)
	}
	delete(records, key)
	s.mu.Unlock()

	s.notify(collection)
	return nil
}

// List returns the collection's records ordered by key ascending.
func (s *Store) List(collection string) ([]domain.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.collections[collection]; !ok {
		return nil, fmt.Errorf("list %s: %w", collection, domain.ErrUnknownCollection)
	}
	return s.listLocked(collection), nil
}

// Snapshot clones the full store state, keyed by collection. Used by the
// durable wrappers to persist after each mutation.
func (s *Store) Snapshot() map[string][]domain.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string][]domain.Record, len(s.collections))
	for name := range s.collections {
		out[name] = s.listLocked(name)
	}
	return out
}

// Restore replaces the store contents wholesale, without notifying
// subscribers. Used once at open time by the durable wrappers.
func (s *Store) Restore(state map[string][]domain.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, records := range state {
		target, ok := s.collections[name]
		if !ok {
			return fmt.Errorf("restore %s: %w", name, domain.ErrUnknownCollection)
		}
		for key := range target {
			delete(target, key)
		}
		for _, rec := range records {
			target[rec.Key] = rec.Clone()
		}
	}
	return nil
}

// OnChange installs a hook invoked after every successful mutation, before
// subscriber fan-out. The durable wrappers persist from it.
func (s *Store) OnChange(fn func(collection string)) {
	s.mu.Lock()
	s.afterChange = fn
	s.mu.Unlock()
}

func (s *Store) notify(collection string) {
	s.mu.RLock()
	hook := s.afterChange
	snap := s.snapshotLocked(collection)
	fns := make([]domain.SnapshotFunc, 0, len(s.subs[collection]))
	for _, fn := range s.subs[collection] {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	if hook != nil {
		hook(collection)
	}
	for _, fn := range fns {
		fn(snap)
	}
}

func (s *Store) snapshotLocked(collection string) domain.Snapshot {
	return domain.Snapshot{Collection: collection, Records: s.listLocked(collection)}
}

func (s *Store) listLocked(collection string) []domain.Record {
	records := s.collections[collection]
	out := make([]domain.Record, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// normalizeValue canonicalizes group-field writes so readers always see a
// []string, whatever shape the writer used.
func normalizeValue(name string, value any) any {
	if name != domain.FieldIsolateCodeGroup {
		return value
	}
	group := domain.NormalizeGroup(value)
	if group == nil {
		return []string{}
	}
	return group
}
